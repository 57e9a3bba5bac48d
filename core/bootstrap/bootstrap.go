package bootstrap

import (
	"fmt"

	coreconfig "github.com/shomybay/marketbot/core/config"
	coredatabase "github.com/shomybay/marketbot/core/database"
	"github.com/shomybay/marketbot/core/logger"
	"github.com/shomybay/marketbot/market/store"
)

// Options control the bootstrap pipeline.
type Options struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error
	Migrate    func(coredatabase.Config) error
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	Store store.Store
}

// DatabaseConfig converts the application database section into connection settings.
func DatabaseConfig(cfg *coreconfig.Config) coredatabase.Config {
	if cfg == nil {
		return coredatabase.Config{}
	}
	return coredatabase.Config{
		Host:           cfg.Database.Host,
		Port:           cfg.Database.Port,
		User:           cfg.Database.User,
		Password:       cfg.Database.Password,
		Name:           cfg.Database.Name,
		SSLMode:        cfg.Database.SSLMode,
		MaxConnections: cfg.Database.MaxConnections,
	}
}

// Run initializes the logger and builds the configured storage backend.
// For the postgres driver it connects and applies migrations first.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	switch opts.Config.Database.Driver {
	case coreconfig.StorePostgres:
		dbCfg := DatabaseConfig(opts.Config)

		migrate := opts.Migrate
		if migrate == nil {
			migrate = coredatabase.RunMigrations
		}
		if err := migrate(dbCfg); err != nil {
			return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
		}

		db, err := coredatabase.Connect(dbCfg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
		}
		st, err := store.NewPostgres(db)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("bootstrap: store initialization failed: %w", err)
		}
		return &Result{Store: st}, nil
	default:
		return &Result{Store: store.NewMemory()}, nil
	}
}
