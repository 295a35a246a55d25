// ABOUTME: Optional HTTP status surface for a running client
// ABOUTME: Serves /status, /metrics (Prometheus) and /healthz over Fiber
// Package statusapi serves an optional HTTP surface for a running
// driftsync client: a JSON /status snapshot, a Prometheus
// /metrics endpoint, and a /healthz liveness probe.
package statusapi

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/driftsync-project/driftsync-go/internal/metrics"
	syncpkg "github.com/driftsync-project/driftsync-go/internal/sync"
)

// Server is the optional status HTTP surface. It is not part of the
// clock-sync wire protocol; it exists purely for operators and dashboards.
type Server struct {
	app    *fiber.App
	logger *zap.SugaredLogger
}

// New builds a Server reading live state from core. registry receives the
// metrics.Collector built from core so /metrics and /status agree.
func New(core metrics.Core, logger *zap.SugaredLogger) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(metrics.New(core))

	app := fiber.New(fiber.Config{ServerHeader: "driftsync"})
	app.Use(recover.New())

	app.Get("/healthz", func(c fiber.Ctx) error {
		return c.SendString("ok")
	})

	app.Get("/status", func(c fiber.Ctx) error {
		s := core.Snapshot()
		return c.JSON(fiber.Map{
			"sent":                   s.Statistics.Sent,
			"received":               s.Statistics.Received,
			"rejected":               s.Statistics.Rejected,
			"offset":                 s.Offset,
			"clock_rate":             s.ClockRate,
			"median_round_trip_time": s.MedianRoundTripTime,
			"accuracy":               accuracyJSON(s),
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return &Server{app: app, logger: logger}
}

func accuracyJSON(s syncpkg.Snapshot) fiber.Map {
	if !s.HasAccuracy {
		return nil
	}
	return fiber.Map{
		"min": s.Accuracy.Min,
		"avg": s.Accuracy.Avg,
		"max": s.Accuracy.Max,
	}
}

// Run serves the status API on addr until ctx is canceled, at which point
// it shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutCtx); err != nil {
			s.logger.Warnw("status api shutdown", "error", err)
		}
	}()

	s.logger.Infow("status api listening", "addr", addr)
	return s.app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
}
