package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kickoffhq/clubpush/internal/auth"
	config "github.com/kickoffhq/clubpush/internal/config/api"
	"github.com/kickoffhq/clubpush/internal/obs"
	kafkaRepo "github.com/kickoffhq/clubpush/internal/repository/kafka"
	pg "github.com/kickoffhq/clubpush/internal/repository/postgres"
	"github.com/kickoffhq/clubpush/internal/services/api"
	attsvc "github.com/kickoffhq/clubpush/internal/services/attendance"
	"github.com/kickoffhq/clubpush/internal/services/scheduler/repo"
)

func main() {
	cfgPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to yaml config")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	l, err := obs.NewLogger(*cfg.Log.AsLoggerConfig(&cfg.App))
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()
	l.Info("starting api", zap.String("http_addr", cfg.Server.HTTPAddr))

	otelCloser, err := obs.SetupOTel(ctx, cfg.OTEL.AsOTELConfig())
	if err != nil {
		l.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	db, err := pg.New(ctx, cfg.DB)
	if err != nil {
		l.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	prod := kafkaRepo.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer func() { _ = prod.Close() }()
	publisher := kafkaRepo.NewDispatchEventsKafka(prod)

	uc := api.NewUC(
		pg.NewMemberRepo(db),
		pg.NewSubscriptionRepo(db),
		pg.NewPreferenceRepo(db),
		pg.NewHistoryRepo(db),
		repo.NewEvents(publisher, l),
		l,
	)
	attUC := attsvc.NewUC(
		pg.NewAttendanceRepo(db),
		attsvc.NewGenAIClient(cfg.Summarizer),
		l,
	)

	srv := &api.Server{
		UC:         uc,
		Attendance: attUC,
		Auth:       auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL),
		VAPIDKey:   cfg.VAPIDKey,
		Log:        l,
	}

	httpSrv := &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, func(ctx context.Context) error {
		hctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		return db.Pool.Ping(hctx)
	}, l)

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	l.Info("api started")

	select {
	case <-ctx.Done():
	case err = <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("http server error", zap.Error(err))
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	_ = httpSrv.Shutdown(shCtx)
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
