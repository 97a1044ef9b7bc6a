// Package cli wires the loghtml command tree: render, send, serve and version.
package cli
