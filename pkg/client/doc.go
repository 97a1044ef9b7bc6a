// Package client talks to a running loghtml preview server.
package client
