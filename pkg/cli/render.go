package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/telekom/loghtml/pkg/client"
)

func NewRenderCommand() *cobra.Command {
	var (
		server   string
		insecure bool
		outFile  string
	)

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render log records as an HTML document",
		Long: "Reads a JSON array, a single object or newline-delimited JSON records from a file or stdin\n" +
			"and writes the HTML document to stdout. With --server the document is rendered remotely.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			records, err := rt.readRecords(args)
			if err != nil {
				return err
			}

			var html string
			if server != "" {
				c, err := client.New(client.WithServer(server), client.WithTLSConfig("", insecure))
				if err != nil {
					return err
				}
				if html, err = c.Render(cmd.Context(), records); err != nil {
					return err
				}
			} else {
				html = newFormatter(rt.cfg).FormatBatch(records)
			}

			var w io.Writer = rt.Writer()
			if outFile != "" {
				f, err := os.Create(outFile)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer func() {
					_ = f.Close()
				}()
				w = f
			}
			if _, err := io.WriteString(w, html); err != nil {
				return fmt.Errorf("failed to write document: %w", err)
			}
			rt.log.Sugar().Debugw("Rendered records", "records", len(records), "remote", server != "")
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "Render through a running preview server instead of locally")
	cmd.Flags().BoolVar(&insecure, "insecure-skip-tls-verify", false, "Skip TLS verification of the preview server")
	cmd.Flags().StringVarP(&outFile, "out", "O", "", "Write the document to a file instead of stdout")

	return cmd
}
