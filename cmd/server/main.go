// Command server runs the doneby verification platform API.
//
// Postgres, Redis and Kafka are all optional: when their configuration is
// absent the process falls back to in-memory stores, which keeps local
// development a single binary with no dependencies.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/girishmungarach/doneby-platform-sub001/internal/activity"
	"github.com/girishmungarach/doneby-platform-sub001/internal/activity/relay"
	"github.com/girishmungarach/doneby-platform-sub001/internal/auth"
	"github.com/girishmungarach/doneby-platform-sub001/internal/job"
	jobHandler "github.com/girishmungarach/doneby-platform-sub001/internal/job/handler"
	"github.com/girishmungarach/doneby-platform-sub001/internal/notification"
	notificationHandler "github.com/girishmungarach/doneby-platform-sub001/internal/notification/handler"
	notificationMetrics "github.com/girishmungarach/doneby-platform-sub001/internal/notification/metrics"
	"github.com/girishmungarach/doneby-platform-sub001/internal/platform/config"
	"github.com/girishmungarach/doneby-platform-sub001/internal/platform/httpserver"
	"github.com/girishmungarach/doneby-platform-sub001/internal/platform/logger"
	"github.com/girishmungarach/doneby-platform-sub001/internal/platform/redis"
	"github.com/girishmungarach/doneby-platform-sub001/internal/profile"
	profileHandler "github.com/girishmungarach/doneby-platform-sub001/internal/profile/handler"
	"github.com/girishmungarach/doneby-platform-sub001/internal/timeline"
	timelineHandler "github.com/girishmungarach/doneby-platform-sub001/internal/timeline/handler"
	httptransport "github.com/girishmungarach/doneby-platform-sub001/internal/transport/http"
	"github.com/girishmungarach/doneby-platform-sub001/internal/verification"
	verificationHandler "github.com/girishmungarach/doneby-platform-sub001/internal/verification/handler"
	verificationMetrics "github.com/girishmungarach/doneby-platform-sub001/internal/verification/metrics"
)

const exportBuffer = 256

func main() {
	cfg := config.FromEnv()
	log := logger.New(logger.ParseLevel(cfg.LogLevel))

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if cfg.PostgresDSN != "" {
		var err error
		db, err = sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
	}

	// Stores: Postgres when configured, in-memory otherwise.
	var (
		activityStore     activity.Store
		notificationStore notification.Store
		verificationStore verification.Store
		timelineStore     timeline.Store
		profileStore      profile.Store
		jobStore          job.Store
	)
	if db != nil {
		activityStore = activity.NewPostgresStore(db)
		notificationStore = notification.NewPostgresStore(db)
		verificationStore = verification.NewPostgresStore(db)
		timelineStore = timeline.NewPostgresStore(db)
		profileStore = profile.NewPostgresStore(db)
		jobStore = job.NewPostgresStore(db)
		log.Info("using postgres storage")
	} else {
		activityStore = activity.NewInMemoryStore()
		notificationStore = notification.NewInMemoryStore()
		verificationStore = verification.NewInMemoryStore()
		timelineStore = timeline.NewInMemoryStore()
		profileStore = profile.NewInMemoryStore()
		jobStore = job.NewInMemoryStore()
		log.Warn("no postgres DSN configured, using in-memory storage")
	}

	// Notification feed: Redis pub/sub when configured.
	var feed notification.Feed = notification.NewInMemoryFeed()
	redisClient, err := redis.New(cfg.Redis())
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		feed = notification.NewRedisFeed(redisClient, log)
		log.Info("using redis notification feed")
	}

	// Activity export: relay to Kafka when brokers are configured.
	recorderOpts := []activity.Option{activity.WithLogger(log)}
	var activityRelay *relay.Relay
	if len(cfg.KafkaBrokers) > 0 {
		export := make(chan activity.Activity, exportBuffer)
		activityRelay, err = relay.New(cfg.KafkaBrokers, cfg.KafkaTopic, export, log)
		if err != nil {
			return err
		}
		defer activityRelay.Close()
		recorderOpts = append(recorderOpts, activity.WithExport(export))
		log.Info("exporting activities to kafka", "topic", cfg.KafkaTopic)
	}

	tokens := auth.NewTokenService(cfg.JWTSigningKey, "doneby")
	recorder := activity.NewRecorder(activityStore, recorderOpts...)

	dispatcher := notification.NewDispatcher(notificationStore,
		notification.WithFeed(feed),
		notification.WithLogger(log),
		notification.WithMetrics(notificationMetrics.New()),
	)

	timelineSvc, err := timeline.New(timelineStore, timeline.WithLogger(log))
	if err != nil {
		return err
	}

	verificationSvc, err := verification.New(verificationStore, recorder,
		verification.WithNotifier(dispatcher),
		verification.WithTimeline(timelineSvc),
		verification.WithLogger(log),
		verification.WithMetrics(verificationMetrics.New()),
	)
	if err != nil {
		return err
	}

	profileSvc, err := profile.New(profileStore, tokens, profile.WithLogger(log))
	if err != nil {
		return err
	}

	jobSvc, err := job.New(jobStore, job.WithLogger(log))
	if err != nil {
		return err
	}

	profiles := profileHandler.New(profileSvc, log)
	router := httptransport.NewRouter(httptransport.Deps{
		Tokens: tokens,
		Logger: log,
		Public: []httptransport.PublicRegistrar{profiles},
		Secured: []httptransport.Registrar{
			profiles,
			timelineHandler.New(timelineSvc, log),
			verificationHandler.New(verificationSvc, log),
			notificationHandler.New(dispatcher, log),
			jobHandler.New(jobSvc, log),
		},
	})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting doneby server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if activityRelay != nil {
		g.Go(func() error {
			if err := activityRelay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
