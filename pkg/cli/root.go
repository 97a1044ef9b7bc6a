package cli

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/telekom/loghtml/pkg/config"
	"github.com/telekom/loghtml/pkg/mail"
)

// ConfigEnv names the environment variable consulted when --config is not set.
const ConfigEnv = "LOGHTML_CONFIG"

type Config struct {
	ConfigPath   string
	OutputWriter io.Writer
	InputReader  io.Reader
	// NewSender overrides SMTP sender construction, mostly for tests.
	NewSender func(config.SMTP, *zap.SugaredLogger) (mail.Sender, error)
}

type runtimeState struct {
	configPath string
	debug      bool
	cfg        config.Config
	log        *zap.Logger
	writer     io.Writer
	errWriter  io.Writer
	reader     io.Reader
	newSender  func(config.SMTP, *zap.SugaredLogger) (mail.Sender, error)
}

type runtimeKey struct{}

func DefaultConfig() Config {
	return Config{
		ConfigPath:   getEnvString(ConfigEnv, ""),
		OutputWriter: os.Stdout,
		InputReader:  os.Stdin,
	}
}

func NewRootCommand(cfg Config) *cobra.Command {
	rt := &runtimeState{
		configPath: cfg.ConfigPath,
		writer:     cfg.OutputWriter,
		reader:     cfg.InputReader,
		newSender:  cfg.NewSender,
	}
	if rt.newSender == nil {
		rt.newSender = mail.NewSender
	}

	root := &cobra.Command{
		Use:           "loghtml",
		Short:         "Render log records as HTML documents and mail them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if rt.writer == nil {
				rt.writer = os.Stdout
			}
			if rt.reader == nil {
				rt.reader = os.Stdin
			}
			if !rt.debug {
				rt.debug = getEnvBool("LOGHTML_DEBUG", false)
			}
			if cmd.Name() == "version" {
				return nil
			}

			rt.errWriter = cmd.ErrOrStderr()
			rt.log = setupLogger(rt.debug, rt.errWriter)
			return rt.loadConfig()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if rt.log != nil {
				_ = rt.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&rt.configPath, "config", rt.configPath, "Path to config file (default ./config.yaml)")
	root.PersistentFlags().BoolVar(&rt.debug, "debug", false, "Enable development logging")

	root.SetContext(context.WithValue(context.Background(), runtimeKey{}, rt))

	root.AddCommand(
		NewRenderCommand(),
		NewSendCommand(),
		NewServeCommand(),
		NewVersionCommand(),
	)

	return root
}

// loadConfig reads the config file. A missing default file falls back to
// built-in defaults so that render and serve work without one.
func (rt *runtimeState) loadConfig() error {
	cfg, err := config.Load(rt.configPath)
	if err != nil {
		if rt.configPath != "" || !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		cfg = config.Config{}
		cfg.Defaults()
		rt.log.Debug("No config file found, using defaults")
	}
	rt.cfg = cfg
	return nil
}

func getRuntime(cmd *cobra.Command) (*runtimeState, error) {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*runtimeState)
	if !ok || rt == nil {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

func (rt *runtimeState) Writer() io.Writer {
	if rt.writer != nil {
		return rt.writer
	}
	return os.Stdout
}
