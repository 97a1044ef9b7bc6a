package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/telekom/loghtml/pkg/api"
	"github.com/telekom/loghtml/pkg/mail"
	"github.com/telekom/loghtml/pkg/zaplog"
)

func NewServeCommand() *cobra.Command {
	var (
		listen     string
		mailErrors bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTML preview server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			cfg := rt.cfg
			if listen != "" {
				cfg.Server.ListenAddress = listen
			}

			printConfig(rt.log.Sugar(), rt.configPath, cfg)
			log, err := rt.serverLogger(mailErrors)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			stopTracing, err := rt.startTracing(ctx)
			if err != nil {
				return err
			}
			defer stopTracing()

			srv := api.NewServer(log, cfg, rt.debug, newFormatter(cfg))
			defer srv.Close()
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address, overrides server.listenAddress")
	cmd.Flags().BoolVar(&mailErrors, "mail-errors", false, "Mail server errors to the configured recipients")

	return cmd
}

// serverLogger returns the process logger, optionally teed into a mail
// handler. The handler keeps logging through the plain process logger so a
// failing send cannot feed back into itself.
func (rt *runtimeState) serverLogger(mailErrors bool) (*zap.Logger, error) {
	if !mailErrors {
		return rt.log, nil
	}
	if err := rt.cfg.ValidateMail(); err != nil {
		return nil, err
	}
	log := rt.log.Sugar().Named("mail")
	sender, err := rt.newSender(rt.cfg.Mail.SMTP, log)
	if err != nil {
		return nil, err
	}
	h, err := mail.NewHandlerForSender(rt.cfg, sender, log)
	if err != nil {
		return nil, err
	}
	return rt.log.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, zaplog.NewCore(h))
	})), nil
}
