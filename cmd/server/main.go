package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/diewo77/go-retail/auth"
	"github.com/diewo77/go-retail/internal/catalog"
	"github.com/diewo77/go-retail/internal/clients"
	"github.com/diewo77/go-retail/internal/config"
	"github.com/diewo77/go-retail/internal/db"
	"github.com/diewo77/go-retail/internal/events"
	"github.com/diewo77/go-retail/internal/handlers"
	"github.com/diewo77/go-retail/internal/invoices"
	"github.com/diewo77/go-retail/internal/models"
	"github.com/diewo77/go-retail/internal/orders"
	"github.com/diewo77/go-retail/internal/pdf"
	"github.com/diewo77/go-retail/internal/policy"
	"github.com/diewo77/go-retail/internal/reporting"
	"github.com/diewo77/go-retail/internal/storage"
	"github.com/diewo77/go-retail/internal/telemetry"
)

const (
	shutdownTimeout = 10 * time.Second
	profileCacheTTL = 5 * time.Minute
)

func main() {
	app := &cli.App{
		Name:  "retail",
		Usage: "multi-store retail backend: catalog, clients, orders and invoices",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "dotenv file loaded before reading the environment"},
		},
		Before: func(c *cli.Context) error {
			if err := godotenv.Load(c.String("env-file")); err != nil && c.IsSet("env-file") {
				return errors.Wrapf(err, "load %s", c.String("env-file"))
			}
			return nil
		},
		Action: serve,
		Commands: []*cli.Command{
			{Name: "serve", Usage: "run the HTTP API", Action: serve},
			{Name: "migrate", Usage: "apply the database schema and exit", Action: migrate},
			{Name: "seed", Usage: "insert reference data and exit", Action: seed},
			{
				Name:  "token",
				Usage: "print the bearer token of a staff user",
				Flags: []cli.Flag{&cli.StringFlag{Name: "username", Required: true}},
				Action: token,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and opens the database.
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := telemetry.NewLogger(cfg.App.Dev)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "create logger")
	}
	gdb, err := db.Open(cfg.Database, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, gdb, nil
}

func migrate(_ *cli.Context) error {
	cfg, log, gdb, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	if err := db.Migrate(gdb, cfg, log); err != nil {
		return err
	}
	log.Info("migrations completed")
	return nil
}

func seed(_ *cli.Context) error {
	cfg, log, gdb, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	if err := db.Migrate(gdb, cfg, log); err != nil {
		return err
	}
	if err := db.Seed(gdb); err != nil {
		return err
	}
	log.Info("seeding completed")
	return nil
}

func token(c *cli.Context) error {
	cfg, log, gdb, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	var user models.User
	if err := gdb.WithContext(c.Context).Where("username = ?", c.String("username")).First(&user).Error; err != nil {
		return errors.Wrapf(err, "find user %q", c.String("username"))
	}
	fmt.Fprintln(c.App.Writer, auth.NewSigner(cfg.App.SessionSecret).Token(user.ID))
	return nil
}

func serve(c *cli.Context) error {
	cfg, log, gdb, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	shutdownLogging, err := telemetry.SetupLogging(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(tctx); err != nil {
			log.Warn("tracing shutdown", zap.Error(err))
		}
		if err := shutdownLogging(tctx); err != nil {
			log.Warn("log export shutdown", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Endpoint != "" {
		log = telemetry.BridgeLogger(log)
	}

	if err := db.Migrate(gdb, cfg, log); err != nil {
		return err
	}
	if err := db.Seed(gdb); err != nil {
		return err
	}

	publisher, err := newPublisher(cfg.Kafka, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	svc, err := newServices(cfg, gdb, publisher, log)
	if err != nil {
		return err
	}
	app := NewApp(gdb, auth.NewSigner(cfg.App.SessionSecret), policy.NewGate(gdb, profileCacheTTL), svc, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", zap.String("addr", srv.Addr), zap.Bool("dev", cfg.App.Dev), zap.String("db", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped gracefully")
	return nil
}

func newPublisher(cfg config.KafkaConfig, log *zap.Logger) (events.Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return events.NewLogPublisher(log), nil
	}
	return events.NewKafkaPublisher(cfg.Brokers, cfg.OrderTopic, log)
}

// newServices wires the components behind the HTTP handlers.
func newServices(cfg *config.Config, gdb *gorm.DB, publisher events.Publisher, log *zap.Logger) (Services, error) {
	store, err := storage.NewFileStore(cfg.App.ArtifactDir)
	if err != nil {
		return Services{}, err
	}
	reports, err := reporting.NewService(gdb)
	if err != nil {
		return Services{}, err
	}
	cat := catalog.NewService(gdb, cfg.App.AllowNegativeStock)
	reg := clients.NewRegistry(gdb)
	gen := invoices.NewGenerator(gdb, store, pdf.NewRenderer(), cfg.Invoice.Lang, log)
	engine := orders.NewEngine(gdb, cat, reg, gen, publisher, log)

	return Services{
		Products:  handlers.NewProductHandler(cat, log),
		Clients:   handlers.NewClientHandler(reg, log),
		Orders:    handlers.NewOrderHandler(engine, log),
		Invoices:  handlers.NewInvoiceHandler(gen, log),
		Dashboard: handlers.NewDashboardHandler(reports, log),
	}, nil
}
