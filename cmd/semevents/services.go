package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/c360studio/semstreams/natsclient"

	"github.com/c360studio/semevents/config"
	"github.com/c360studio/semevents/graph"
	"github.com/c360studio/semevents/metrics"
	"github.com/c360studio/semevents/pipeline"
	"github.com/c360studio/semevents/storage"
)

// services holds the optional sinks of a run.
type services struct {
	nats      *natsclient.Client
	store     *storage.Store
	publisher *graph.Publisher
	loader    *graph.Neo4jLoader
	logger    *slog.Logger
}

// connectServices connects the sinks enabled in cfg. NATS is only contacted
// when storing or publishing is requested.
func connectServices(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*services, error) {
	svc := &services{logger: logger}

	if cfg.NATS.URL != "" && (cfg.NATS.Store || cfg.NATS.Publish) {
		client, err := connectToNATS(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		svc.nats = client

		js, err := client.JetStream()
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("get jetstream: %w", err)
		}

		if cfg.NATS.Store {
			store, err := storage.NewStore(ctx, js, cfg.Output.Modes)
			if err != nil {
				svc.Close()
				return nil, fmt.Errorf("initialize storage: %w", err)
			}
			svc.store = store
		}

		if cfg.NATS.Publish {
			stream, err := graph.EnsureIngestStream(ctx, js)
			if err != nil {
				svc.Close()
				return nil, err
			}
			logger.Debug("Graph ingest stream ready", "stream", stream)
			svc.publisher = graph.NewPublisher(client, logger)
		}
	}

	if cfg.Neo4j.URI != "" {
		loader, err := graph.NewNeo4jLoader(ctx, graph.Neo4jOptions{
			URI:      cfg.Neo4j.URI,
			User:     cfg.Neo4j.User,
			Password: cfg.Neo4j.Password,
			Database: cfg.Neo4j.Database,
		}, logger)
		if err != nil {
			svc.Close()
			return nil, err
		}
		svc.loader = loader
		logger.Info("Connected to Neo4j", "uri", cfg.Neo4j.URI)
	}

	return svc, nil
}

// options returns the runner options for the connected sinks.
func (s *services) options(logger *slog.Logger, m *metrics.Metrics) []pipeline.Option {
	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(m),
	}
	if s.store != nil {
		opts = append(opts, pipeline.WithStore(s.store))
	}
	if s.publisher != nil {
		opts = append(opts, pipeline.WithPublisher(s.publisher))
	}
	if s.loader != nil {
		opts = append(opts, pipeline.WithLoader(s.loader))
	}
	return opts
}

// Close releases every connection.
func (s *services) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.loader != nil {
		if err := s.loader.Close(ctx); err != nil {
			s.logger.Warn("Failed to close Neo4j driver", "error", err)
		}
	}
	if s.nats != nil {
		if err := s.nats.Close(ctx); err != nil {
			s.logger.Warn("Failed to close NATS connection", "error", err)
		}
	}
}

func connectToNATS(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*natsclient.Client, error) {
	natsURL := cfg.NATS.URL
	logger.Info("Connecting to NATS", "url", natsURL)

	client, err := natsclient.NewClient(natsURL,
		natsclient.WithName(appName),
		natsclient.WithMaxReconnects(-1),
		natsclient.WithReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	if err := client.Connect(ctx); err != nil {
		return nil, wrapNATSError(err, natsURL)
	}

	connCtx, cancel := context.WithTimeout(ctx, cfg.NATS.Timeout)
	defer cancel()

	if err := client.WaitForConnection(connCtx); err != nil {
		return nil, wrapNATSError(err, natsURL)
	}

	logger.Info("Connected to NATS", "url", natsURL)
	return client, nil
}

// wrapNATSError provides helpful guidance when NATS connection fails.
func wrapNATSError(err error, url string) error {
	errStr := err.Error()

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no servers available") ||
		strings.Contains(errStr, "timeout") {
		return fmt.Errorf(`NATS connection failed: %w

NATS is not running at %s.

To start NATS:
  docker run -p 4222:4222 nats -js

Or set %s to point to your NATS server.`, err, url, config.EnvNATSURL)
	}

	return fmt.Errorf("NATS connection failed: %w", err)
}
