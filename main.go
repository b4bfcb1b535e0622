package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"marketplace/auth"
	"marketplace/config"
	"marketplace/events"
	"marketplace/handlers"
	"marketplace/middleware"
	"marketplace/realtime"
	"marketplace/recommend"
	"marketplace/routes"
	"marketplace/services"
	"marketplace/store"
)

const (
	shutdownTimeout = 10 * time.Second
	modelTimeout    = 60 * time.Second
)

func main() {
	app := &cli.App{
		Name:  "marketplace",
		Usage: "Marketplace ordering API with realtime order events",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP and websocket server",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "create or update the database schema and exit",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "driver", Value: "sqlite", EnvVars: []string{"DB_DRIVER"}},
					&cli.StringFlag{Name: "dsn", Value: config.DefaultSQLiteDSN, EnvVars: []string{"DB_DSN"}},
				},
				Action: migrate,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("marketplace stopped")
	}
}

func migrate(c *cli.Context) error {
	db, err := config.OpenDB(c.String("driver"), c.String("dsn"))
	if err != nil {
		return err
	}
	if err := config.Migrate(db); err != nil {
		return err
	}
	log.WithField("driver", c.String("driver")).Info("schema is up to date")
	return nil
}

func serve(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.ConfigureLogging()
	gin.SetMode(cfg.GinMode)

	db, err := config.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	if err := config.Migrate(db); err != nil {
		return err
	}
	st := store.New(db)

	hub := realtime.NewHub()
	publisher := events.Publisher(hub)
	if cfg.AMQPURL != "" {
		mirror, err := events.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return err
		}
		defer mirror.Close()
		publisher = events.Fanout{hub, mirror}
		log.WithField("exchange", cfg.AMQPExchange).Info("mirroring order events to AMQP")
	}

	model, err := newModel(c.Context, cfg)
	if err != nil {
		return err
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	h := handlers.New(handlers.Options{
		Accounts:     services.NewAccounts(st, tokens),
		Catalog:      services.NewCatalog(st, cfg.PageSize),
		Orders:       services.NewOrders(st, publisher, cfg.PageSize),
		Recommender:  recommend.NewService(st, model),
		Hub:          hub,
		Tokens:       tokens,
		CookieSecure: cfg.CookieSecure,
		CORSOrigin:   cfg.CORSOrigin,
	})

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.CORS(cfg.CORSOrigin))
	routes.SetupRoutes(router, h, tokens)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	select {
	case err := <-errCh:
		return errors.Wrap(err, "serving http")
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newModel(ctx context.Context, cfg *config.Config) (recommend.Model, error) {
	client := &http.Client{Timeout: modelTimeout}
	if cfg.Model == "gemini" {
		gemini, err := recommend.NewGemini(ctx, client, "", cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return gemini, nil
	}
	ollama, err := recommend.NewOllama(client, cfg.OllamaHost, cfg.OllamaModel)
	if err != nil {
		return nil, err
	}
	return ollama, nil
}
