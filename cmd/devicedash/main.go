// devicedash - IoT device administration dashboard
//
// This is the main entry point for devicedash. It serves a web dashboard
// that manages devices and MQTT messages through a remote backend:
//   - Device list with register, edit, delete, and ON/OFF commands
//   - MQTT publish form with a live message feed
//   - Toast notifications for every failed backend call
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/devicedash/internal/api"
	"github.com/nerrad567/devicedash/internal/audit"
	"github.com/nerrad567/devicedash/internal/feed"
	"github.com/nerrad567/devicedash/internal/gateway"
	"github.com/nerrad567/devicedash/internal/i18n"
	"github.com/nerrad567/devicedash/internal/infrastructure/config"
	"github.com/nerrad567/devicedash/internal/infrastructure/database"
	"github.com/nerrad567/devicedash/internal/infrastructure/influxdb"
	"github.com/nerrad567/devicedash/internal/infrastructure/logging"
	"github.com/nerrad567/devicedash/internal/infrastructure/mqtt"
	"github.com/nerrad567/devicedash/internal/notify"
	"github.com/nerrad567/devicedash/internal/routes"
	"github.com/nerrad567/devicedash/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

const (
	// Default configuration file path
	defaultConfigPath = "configs/config.yaml"

	// configPathEnv overrides defaultConfigPath.
	configPathEnv = "DEVICEDASH_CONFIG"
)

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting devicedash",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	lang, ok := i18n.Parse(cfg.Site.Language)
	if !ok {
		log.Warn("unknown site language, using default", "language", cfg.Site.Language, "default", lang.String())
	}

	// Open database
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	health := map[string]api.HealthChecker{"database": db}

	// The hub is shared by the notification center, the feed, and the server.
	hub := api.NewHub(cfg.WebSocket, log)
	center := notify.NewCenter(
		notify.WithPublisher(hub),
		notify.WithDuration(cfg.NotificationDuration()),
		notify.WithLogger(log),
	)

	gw, err := gateway.New(cfg.Backend.BaseURL,
		gateway.WithNotifier(center),
		gateway.WithLogger(log),
		gateway.WithLanguage(lang),
		gateway.WithNotifyDuration(cfg.NotificationDuration()),
	)
	if err != nil {
		return fmt.Errorf("creating backend gateway: %w", err)
	}
	log.Info("backend gateway ready", "base_url", gw.BaseURL())

	table, err := routes.New(routes.DefaultConfig(cfg.Site.TitlePrefix))
	if err != nil {
		return fmt.Errorf("building route table: %w", err)
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		health["influxdb"] = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	// Connect to MQTT broker and start the live feed (optional)
	var liveFeed *feed.Service
	if cfg.MQTT.Enabled {
		mqttClient, feedSvc, startErr := startFeed(cfg, db, hub, influxClient, log)
		if startErr != nil {
			return startErr
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		liveFeed = feedSvc
		health["mqtt"] = mqttClient
	} else {
		log.Info("MQTT disabled, live feed off")
	}

	srv, err := api.New(api.Deps{
		Config:      cfg.API,
		WS:          cfg.WebSocket,
		Logger:      log,
		Gateway:     gw,
		Routes:      table,
		Notifier:    center,
		Audit:       audit.NewSQLiteRepository(db.DB),
		DB:          db.DB,
		Feed:        liveFeed,
		Health:      health,
		Language:    lang,
		ExternalHub: hub,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	if err := srv.Start(gctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}

	log.Info("initialisation complete, waiting for shutdown signal",
		"address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
	)

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, cleaning up")
		return srv.Close()
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("devicedash stopped")
	return nil
}

// startFeed connects to the broker and subscribes the live feed to the
// configured topics.
func startFeed(cfg *config.Config, db *database.DB, hub *api.Hub, influxClient *influxdb.Client, log *logging.Logger) (*mqtt.Client, *feed.Service, error) {
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", mqtt.BrokerURL(cfg.MQTT),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	opts := []feed.Option{
		feed.WithPublisher(hub),
		feed.WithLogger(log),
	}
	// A nil *influxdb.Client must not become a non-nil Telemetry.
	if influxClient != nil {
		opts = append(opts, feed.WithTelemetry(influxClient))
	}
	svc := feed.New(feed.NewSQLiteStore(db.DB, cfg.Feed.RetainMessages), opts...)

	if err := svc.Start(mqttClient, cfg.Feed.Topics, byte(cfg.MQTT.QoS)); err != nil { //nolint:gosec // QoS validated to 0-2 by config
		mqttClient.Close() //nolint:errcheck // already failing
		return nil, nil, fmt.Errorf("starting live feed: %w", err)
	}

	return mqttClient, svc, nil
}

// getConfigPath returns the configuration file path.
// Checks DEVICEDASH_CONFIG environment variable first, then uses default.
func getConfigPath() string {
	if path := os.Getenv(configPathEnv); path != "" {
		return path
	}
	return defaultConfigPath
}
