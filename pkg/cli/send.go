package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/gomail.v2"

	"github.com/telekom/loghtml/pkg/mail"
	"github.com/telekom/loghtml/pkg/record"
)

type dryRunDialer struct{}

func (dryRunDialer) DialAndSend(...*gomail.Message) error {
	return errors.New("dry run does not deliver mail")
}

func NewSendCommand() *cobra.Command {
	var (
		dryRun  bool
		to      []string
		subject string
	)

	cmd := &cobra.Command{
		Use:   "send [file]",
		Short: "Mail log records as an HTML document",
		Long: "Reads records like render does and delivers those at or above the configured level\n" +
			"in a single mail through the configured SMTP server.",
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

			cfg := rt.cfg
			if len(to) > 0 {
				cfg.Mail.Recipients = to
			}
			if subject != "" {
				cfg.Mail.Subject = subject
			}
			log := rt.log.Sugar().Named("mail")

			if dryRun {
				sender := mail.NewSenderWithDialer(dryRunDialer{}, cfg.Mail.SMTP.Host, cfg.Mail.SMTP.Port, log)
				h, err := mail.NewHandlerForSender(cfg, sender, log)
				if err != nil {
					return err
				}
				accepted := make([]record.Record, 0, len(records))
				for _, r := range records {
					if h.IsHandling(r.Level) {
						accepted = append(accepted, r)
					}
				}
				if len(accepted) == 0 {
					log.Infow("No records at or above the mail level", "level", h.MinLevel().Name())
					return nil
				}
				msg, err := h.Compose(accepted)
				if err != nil {
					return err
				}
				if _, err := msg.WriteTo(rt.Writer()); err != nil {
					return fmt.Errorf("failed to write message: %w", err)
				}
				return nil
			}

			if err := cfg.ValidateMail(); err != nil {
				return err
			}
			stopTracing, err := rt.startTracing(cmd.Context())
			if err != nil {
				return err
			}
			defer stopTracing()

			sender, err := rt.newSender(cfg.Mail.SMTP, log)
			if err != nil {
				return err
			}
			h, err := mail.NewHandlerForSender(cfg, sender, log)
			if err != nil {
				return err
			}
			if err := h.HandleBatch(cmd.Context(), records); err != nil {
				return err
			}
			log.Infow("Processed records", "records", len(records), "recipients", len(cfg.Mail.Recipients))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the composed message instead of sending it")
	cmd.Flags().StringSliceVar(&to, "to", nil, "Override the configured recipients")
	cmd.Flags().StringVar(&subject, "subject", "", "Override the configured subject template")

	return cmd
}
