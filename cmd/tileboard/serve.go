package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	_ "github.com/nerrad567/tileboard/migrations"

	"github.com/nerrad567/tileboard/internal/api"
	"github.com/nerrad567/tileboard/internal/backend"
	"github.com/nerrad567/tileboard/internal/command"
	"github.com/nerrad567/tileboard/internal/core"
	"github.com/nerrad567/tileboard/internal/dashboard"
	"github.com/nerrad567/tileboard/internal/demo"
	"github.com/nerrad567/tileboard/internal/history"
	"github.com/nerrad567/tileboard/internal/infrastructure/config"
	"github.com/nerrad567/tileboard/internal/infrastructure/database"
	"github.com/nerrad567/tileboard/internal/infrastructure/influxdb"
	"github.com/nerrad567/tileboard/internal/infrastructure/logging"
	"github.com/nerrad567/tileboard/internal/infrastructure/mqtt"
	"github.com/nerrad567/tileboard/internal/state"
	"github.com/nerrad567/tileboard/internal/subscription"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), *configPath)
		},
	}
}

// run is the actual application logic, separated from main for testability.
// It returns nil on clean shutdown once ctx is cancelled.
func run(ctx context.Context, configPath string) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting tileboard",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"demo", cfg.Dashboard.Demo,
		"auth", cfg.AuthEnabled(),
	)

	generator := demo.NewGenerator()
	syncCore := core.New(core.Config{
		Demo:      cfg.Dashboard.Demo,
		QueueSize: cfg.Dashboard.UpdateQueueSize,
	}, state.NewStore(), subscription.NewRegistry(), generator)
	syncCore.SetLogger(log.Component("core"))

	// Value history (optional)
	var (
		db      *database.DB
		repo    history.Repository
		journal *history.Writer
	)
	if cfg.History.Enabled {
		db, err = database.Open(database.FromConfig(cfg.Database))
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

		if migrateErr := db.Migrate(ctx); migrateErr != nil {
			return fmt.Errorf("running migrations: %w", migrateErr)
		}

		sqliteRepo := history.NewSQLiteRepository(db.DB)
		repo = sqliteRepo
		journal = history.NewWriter(sqliteRepo, history.WriterConfig{
			BufferSize: cfg.History.BufferSize,
			Retention:  cfg.GetHistoryRetention(),
		})
		journal.SetLogger(log.Component("history"))
		journal.SetCheckpointer(db)
		syncCore.AddObserver(journal)

		// The writer drains on cancel; it must finish before the database closes.
		journalCtx, stopJournal := context.WithCancel(ctx)
		journalDone := make(chan struct{})
		go func() {
			defer close(journalDone)
			journal.Run(journalCtx)
		}()
		defer func() {
			stopJournal()
			<-journalDone
		}()
		log.Info("value history enabled", "retention", cfg.GetHistoryRetention())
	} else {
		log.Info("value history disabled")
	}

	// InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB, cfg.Site.ID)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		syncCore.AddObserver(influxClient)
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Command path: loop back in demo mode, MQTT otherwise
	var (
		commands   *command.Dispatcher
		mqttClient *mqtt.Client
		bus        *backend.Backend
	)
	if cfg.Dashboard.Demo {
		commands = command.NewDemo(syncCore, generator)
		log.Info("demo mode, no backend connection")
	} else {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log.Component("mqtt"))
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
			"prefix", cfg.MQTT.TopicPrefix,
		)

		bus = backend.New(mqttClient, syncCore, byte(cfg.MQTT.QoS)) //nolint:gosec // validated 0-2
		bus.SetLogger(log.Component("backend"))
		commands = command.NewLive(syncCore, bus)
	}
	commands.SetLogger(log.Component("command"))

	pages := dashboard.NewService(cfg.Dashboard.PagesFile, cfg.Dashboard.StartPage, syncCore)
	pages.SetLogger(log.Component("dashboard"))
	if loadErr := pages.Load(); loadErr != nil {
		return fmt.Errorf("loading pages: %w", loadErr)
	}
	syncCore.SetReloadHook(pages.Reopen)

	srv, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Security: cfg.Security,
		Logger:   log.Component("api"),
		Core:     syncCore,
		Pages:    pages,
		Commands: commands,
		Version:  version,
		History:  repo,
		Journal:  journal,
		Backend:  bus,
		DB:       db,
		InfluxDB: influxClient,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	syncCore.SetSink(srv.Hub())

	// The push queue must drain before the backend subscribes, since the
	// retained snapshot arrives as a burst of pushes.
	go func() {
		if runErr := syncCore.Run(ctx); runErr != nil {
			log.Error("core stopped", "error", runErr)
		}
	}()

	if bus != nil {
		if startErr := bus.Start(); startErr != nil {
			return fmt.Errorf("starting backend: %w", startErr)
		}
	} else {
		syncCore.SetConnected(true)
	}

	if openErr := pages.OpenStart(); openErr != nil {
		return fmt.Errorf("opening start page: %w", openErr)
	}

	if cfg.Dashboard.WatchPagesFile {
		go func() {
			if watchErr := pages.Watch(ctx); watchErr != nil {
				log.Warn("page file watcher stopped", "error", watchErr)
			}
		}()
	}

	if startErr := srv.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := srv.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if checkErr := healthCheck(ctx, db, mqttClient, influxClient); checkErr != nil {
		return fmt.Errorf("health check failed: %w", checkErr)
	}
	log.Info("initialisation complete, waiting for shutdown signal", "page", pages.Current())

	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Deferred closes run in reverse: API server, MQTT, InfluxDB, history
	// writer, database.
	return nil
}

// healthCheck verifies the configured infrastructure connections. Any of
// them may be nil when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if db != nil {
		if err := db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}
