package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"eventgate/internal/config"
	"eventgate/internal/gate"
	"eventgate/internal/httpapi"
	"eventgate/internal/jobs"
	"eventgate/internal/journal"
	"eventgate/internal/logging"
	"eventgate/internal/queue"
	"eventgate/internal/registry"
	"eventgate/internal/service"
	"eventgate/internal/sink"
	"eventgate/pkg/types"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Local runs pick up a .env next to the binary's working directory.
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
	}
	cfg, err := loadConfig(os.Args[1:], os.LookupEnv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(2)
	}
	log := logging.New(os.Stderr, logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("eventgated exited")
		os.Exit(1)
	}
}

// loadConfig merges, in increasing precedence: config file, EVENTGATE_* env,
// explicitly set flags. Defaults fill whatever is left.
func loadConfig(args []string, lookup func(string) (string, bool)) (config.Config, error) {
	fs := flag.NewFlagSet("eventgated", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Config file (.yaml/.yml/.json/.toml)")
	addr := fs.String("addr", "", "HTTP listen address, e.g. :8080")
	logLevel := fs.String("log-level", "", "Log level: trace|debug|info|warn|error|off")
	logFormat := fs.String("log-format", "", "Log format: json|console")
	eventTypes := fs.String("event-types", "", "Event type descriptor file or directory")
	journalPath := fs.String("journal", "", "SQLite dispatch journal path (empty disables)")
	backend := fs.String("queue-backend", "", "Queue backend: memory|kafka")
	strict := fs.Bool("strict-event-classes", false, "Fail gate jobs whose event class is not registered")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	path := *cfgPath
	if path == "" {
		if v, ok := lookup(config.EnvPrefix + "CONFIG"); ok {
			path = v
		}
	}
	var cfg config.Config
	if path != "" {
		c, err := config.Load(path)
		if err != nil {
			return cfg, fmt.Errorf("load %s: %w", path, err)
		}
		cfg = c
	}
	cfg, err := cfg.ApplyEnv(lookup)
	if err != nil {
		return cfg, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-format":
			cfg.LogFormat = *logFormat
		case "event-types":
			cfg.EventTypesPath = *eventTypes
		case "journal":
			cfg.JournalPath = *journalPath
		case "queue-backend":
			cfg.Queue.Backend = *backend
		case "strict-event-classes":
			cfg.StrictEventClasses = *strict
		}
	})
	cfg = cfg.WithDefaults()
	return cfg, cfg.Validate()
}

func queueConfig(c config.QueueConfig) queue.Config {
	return queue.Config{
		MaxDepth:     c.MaxDepth,
		MaxWait:      time.Duration(c.MaxWaitMS) * time.Millisecond,
		Workers:      c.Workers,
		MaxAttempts:  c.MaxAttempts,
		RetryBackoff: time.Duration(c.RetryBackoffMS) * time.Millisecond,
	}
}

// run wires the daemon and blocks until ctx is canceled.
func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	reg, err := registry.Load(cfg.EventTypesPath)
	if err != nil {
		return fmt.Errorf("load event types: %w", err)
	}
	log.Info().Int("event_types", reg.Len()).Str("path", cfg.EventTypesPath).Msg("event type registry loaded")

	svcCfg := service.Config{Backend: cfg.Queue.Backend, EventTypes: reg, Logger: log}
	gateCfg := gate.Config{EventTypes: reg, Logger: log, Strict: cfg.StrictEventClasses}

	if cfg.JournalPath != "" {
		j, err := journal.Open(ctx, cfg.JournalPath)
		if err != nil {
			return err
		}
		defer j.Close()
		gateCfg.Journal = j
		svcCfg.Journal = j
		log.Info().Str("path", j.Path()).Msg("dispatch journal enabled")
	}

	qcfg := queueConfig(cfg.Queue)
	var shutdownQueue func(context.Context) error
	switch cfg.Queue.Backend {
	case config.BackendKafka:
		kc := queue.KafkaConfig{Brokers: cfg.Kafka.Brokers, TopicPrefix: cfg.Kafka.TopicPrefix, GroupID: cfg.Kafka.GroupID}
		producer := queue.NewKafkaProducer(kc)
		gateCfg.Enqueuer = producer
		g := gate.New(gateCfg)
		consumer := queue.NewKafkaConsumer(kc, jobs.QueueEvents, g.HandleJob, qcfg, log)
		consumerDone := make(chan error, 1)
		cctx, cancelConsumer := context.WithCancel(ctx)
		go func() { consumerDone <- consumer.Run(cctx) }()

		svcCfg.Enqueuer = producer
		svcCfg.Queues = func() []types.QueueStatus { return []types.QueueStatus{consumer.Stats()} }
		svcCfg.Ready = consumer.Ready
		shutdownQueue = func(ctx context.Context) error {
			cancelConsumer()
			var runErr error
			select {
			case runErr = <-consumerDone:
			case <-ctx.Done():
				runErr = ctx.Err()
			}
			return errors.Join(runErr, consumer.Close(), producer.Close())
		}
		log.Info().Strs("brokers", kc.Brokers).Str("topic", kc.Topic(jobs.QueueEvents)).Msg("kafka backend started")
	default:
		broker := queue.NewBroker(qcfg, log)
		gateCfg.Enqueuer = broker
		g := gate.New(gateCfg)
		broker.Handle(jobs.KindEventPublisher, g.HandleJob)
		sink.New(log).Register(broker)
		// Stop drains the broker, so its workers must outlive the signal context.
		broker.Start(context.Background())

		svcCfg.Enqueuer = broker
		svcCfg.Queues = broker.Stats
		svcCfg.Ready = broker.Ready
		shutdownQueue = broker.Stop
	}

	svc := service.New(svcCfg)
	httpapi.SetLogger(log)
	httpapi.SetBaseContext(ctx)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetJWTSecret(cfg.JWTSecret)
	httpapi.SetCORSOptions(cfg.CORS.Enabled, cfg.CORS.AllowedOrigins, nil, nil)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("backend", cfg.Queue.Backend).Bool("auth", cfg.JWTSecret != "").Msg("eventgated listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		runErr = fmt.Errorf("http server: %w", err)
	}

	// Graceful shutdown: stop accepting requests, then drain the queue.
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	if err := shutdownQueue(sctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Msg("queue shutdown error")
	}
	log.Info().Msg("eventgated stopped")
	return runErr
}
