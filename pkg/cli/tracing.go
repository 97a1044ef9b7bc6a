package cli

import (
	"context"

	"github.com/telekom/loghtml/pkg/telemetry"
	"github.com/telekom/loghtml/pkg/version"
)

// startTracing installs the tracer provider described by the config. The
// returned function flushes pending spans and logs flush errors.
func (rt *runtimeState) startTracing(ctx context.Context) (func(), error) {
	if err := rt.cfg.ValidateTelemetry(); err != nil {
		return nil, err
	}
	_, shutdown, err := telemetry.Init(ctx, telemetry.Options{
		Telemetry:      rt.cfg.Telemetry,
		ServiceVersion: version.Version,
		StdoutWriter:   rt.errWriter,
		Logger:         rt.log.Sugar().Named("telemetry"),
	})
	if err != nil {
		return nil, err
	}
	return func() {
		if err := shutdown(context.Background()); err != nil {
			rt.log.Sugar().Warnw("Failed to flush traces", "error", err)
		}
	}, nil
}
