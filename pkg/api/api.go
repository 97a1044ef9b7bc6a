package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/telekom/loghtml/pkg/apiresponses"
	"github.com/telekom/loghtml/pkg/config"
	"github.com/telekom/loghtml/pkg/formatter"
	"github.com/telekom/loghtml/pkg/metrics"
	"github.com/telekom/loghtml/pkg/ratelimit"
	"github.com/telekom/loghtml/pkg/record"
	"github.com/telekom/loghtml/pkg/system"
	"github.com/telekom/loghtml/pkg/telemetry"
	"github.com/telekom/loghtml/pkg/version"
)

const (
	// maxRequestBytes bounds the size of a render request body.
	maxRequestBytes = 10 << 20
	shutdownTimeout = 10 * time.Second
)

// Server exposes the HTML formatter over HTTP so that templates and colors can
// be previewed without sending mail.
type Server struct {
	gin       *gin.Engine
	config    config.Server
	formatter formatter.Formatter
	limiter   *ratelimit.IPRateLimiter
	log       *zap.SugaredLogger
}

// NewServer builds the preview server. A nil formatter selects the default
// HTML formatter using the configured color thresholds.
func NewServer(log *zap.Logger, cfg config.Config, debug bool, f formatter.Formatter) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if f == nil {
		f = formatter.NewHTMLFormatter(formatter.WithColorTable(formatter.NewColorTable(
			cfg.ColorThresholds.Error,
			cfg.ColorThresholds.Warning,
			cfg.ColorThresholds.Info,
		)))
	}

	engine := gin.New()
	engine.Use(
		ginzap.Ginzap(log, time.RFC3339, true),
		ginzap.RecoveryWithZap(log, true),
	)
	engine.Use(system.RequestLogger(log.Sugar().Named("api")))
	if err := engine.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		log.Sugar().Warnw("Ignoring invalid trusted proxies", "proxies", cfg.Server.TrustedProxies, "error", err)
	}

	if debug {
		engine.Use(
			cors.New(cors.Config{
				AllowOrigins: []string{"http://localhost:5173", "http://127.0.0.1:8080"},
				AllowMethods: []string{"GET", "POST", "OPTIONS"},
				AllowHeaders: []string{"Origin", "Content-Type"},
				MaxAge:       12 * time.Hour,
			}),
		)
	}

	rlCfg := ratelimit.DefaultConfig()
	if cfg.Server.RateLimit > 0 {
		rlCfg.Rate = cfg.Server.RateLimit
	}
	if cfg.Server.RateBurst > 0 {
		rlCfg.Burst = cfg.Server.RateBurst
	}

	s := &Server{
		gin:       engine,
		config:    cfg.Server,
		formatter: f,
		limiter:   ratelimit.New(rlCfg),
		log:       log.Sugar().Named("api"),
	}

	api := engine.Group("api")
	api.GET("health", s.health)
	api.GET("version", s.buildInfo)
	api.POST("render", s.limiter.Middleware(), s.render)
	engine.GET("metrics", gin.WrapH(metrics.MetricsHandler()))

	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.ListenAddress,
		Handler:           s.gin,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("Preview server listening", "address", s.config.ListenAddress)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("Shutting down preview server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Close releases background resources.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) buildInfo(c *gin.Context) {
	c.JSON(http.StatusOK, version.GetBuildInfo())
}

func (s *Server) render(c *gin.Context) {
	_, span := telemetry.Tracer("api").Start(c.Request.Context(), "api.render")
	defer span.End()

	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBytes)
	records, err := record.Decode(body)
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		metrics.APIRenderRequests.WithLabelValues("too_large").Inc()
		span.SetStatus(codes.Error, "request too large")
		apiresponses.RespondRequestTooLarge(c, tooLarge.Limit)
		return
	case err != nil:
		metrics.APIRenderRequests.WithLabelValues("invalid").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid records")
		system.GetReqLogger(c, s.log).Debugw("Rejected render request", "error", err)
		apiresponses.RespondBadRequestWithDetails(c, "invalid log records", err.Error())
		return
	case len(records) == 0:
		metrics.APIRenderRequests.WithLabelValues("invalid").Inc()
		span.SetStatus(codes.Error, "no records")
		apiresponses.RespondBadRequestWithDetails(c, "invalid log records", "request contained no records")
		return
	}

	span.SetAttributes(attribute.Int("loghtml.records", len(records)))
	metrics.APIRenderRequests.WithLabelValues("ok").Inc()
	system.GetReqLogger(c, s.log).Debugw("Rendered records", "records", len(records))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(s.formatter.FormatBatch(records)))
}
