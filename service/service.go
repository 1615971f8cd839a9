// Package service exposes the wrapper's healthz and Prometheus metrics
// endpoints while a run is in flight.
package service

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/ethereum/go-ethereum/log"

	"github.com/cardano-community/node-sync-runner/metrics"
)

// Config controls the monitoring endpoints. CI jobs that only want the
// exit status can disable both.
type Config struct {
	HealthzEnabled bool
	HealthzHost    string
	HealthzPort    string

	MetricsEnabled bool
	MetricsHost    string
	MetricsPort    string
}

type Service struct {
	config  Config
	Healthz *HealthzServer
	Metrics *MetricsServer
}

func New(cfg Config) *Service {
	s := &Service{
		config:  cfg,
		Healthz: &HealthzServer{},
		Metrics: &MetricsServer{},
	}
	return s
}

func (s *Service) Start(ctx context.Context) {
	log.Info("service starting")

	if s.config.HealthzEnabled {
		go func() {
			addr := net.JoinHostPort(s.config.HealthzHost, s.config.HealthzPort)
			log.Info("starting healthz server", "addr", addr)
			if err := s.Healthz.Start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("error starting healthz server", "err", err)
				metrics.RecordErrorDetails("error starting healthz server", err)
			}
		}()
	}

	if s.config.MetricsEnabled {
		go func() {
			addr := net.JoinHostPort(s.config.MetricsHost, s.config.MetricsPort)
			log.Info("starting metrics server", "addr", addr)
			if err := s.Metrics.Start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("error starting metrics server", "err", err)
				metrics.RecordErrorDetails("error starting metrics server", err)
			}
		}()
	}

	log.Info("service started")
}

func (s *Service) Shutdown() {
	log.Info("service shutting down")

	if s.config.HealthzEnabled {
		_ = s.Healthz.Shutdown()
		log.Info("healthz stopped")
	}

	if s.config.MetricsEnabled {
		_ = s.Metrics.Shutdown()
		log.Info("metrics stopped")
	}

	log.Info("service stopped")
}
