package commands

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-tracker/internal/config"
	"github.com/jakechorley/volunteer-tracker/pkg/accesscontrol"
	"github.com/jakechorley/volunteer-tracker/pkg/cache"
	"github.com/jakechorley/volunteer-tracker/pkg/clients/identity"
	"github.com/jakechorley/volunteer-tracker/pkg/clients/sheetsclient"
	"github.com/jakechorley/volunteer-tracker/pkg/core/services"
	"github.com/jakechorley/volunteer-tracker/pkg/db"
	"github.com/jakechorley/volunteer-tracker/pkg/postgres"
	"github.com/jakechorley/volunteer-tracker/pkg/sheetsdb"
	"github.com/jakechorley/volunteer-tracker/pkg/tablestore"
	"github.com/jakechorley/volunteer-tracker/pkg/tablestore/memstore"
	"github.com/jakechorley/volunteer-tracker/pkg/tablestore/xlsxstore"
	"github.com/jakechorley/volunteer-tracker/pkg/utils"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Env           string
	Cfg           *config.Config
	Store         tablestore.Store
	Users         db.UserStore
	Cache         *cache.MemoryCache
	VolunteerData *services.VolunteerDataService
	Access        *accesscontrol.Service
	Logger        *zap.Logger
	Ctx           context.Context

	closers []func()
}

// Init loads configuration and builds the storage backends and services
func (app *AppContext) Init() error {
	var err error

	app.Logger.Info("Loading configuration", zap.String("environment", app.Env))
	app.Cfg, err = config.LoadWithEnv(app.Env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully", zap.String("backend", app.Cfg.Backend))

	app.Store, err = app.openStore()
	if err != nil {
		return err
	}

	app.Users, err = app.openUserDirectory()
	if err != nil {
		return err
	}

	verifier, err := app.newVerifier()
	if err != nil {
		return err
	}

	app.Cache = cache.NewMemoryCache(cache.WithMaxValueBytes(app.Cfg.Cache.MaxValueBytes))
	app.VolunteerData = services.NewVolunteerDataService(app.Store, app.Cache, app.Logger, services.VolunteerDataOptions{
		MasterAttendanceTable:  app.Cfg.MasterAttendanceTable,
		MasterSupervisionTable: app.Cfg.MasterSupervisionTable,
	})
	app.Access = accesscontrol.NewService(app.Users, verifier, app.Logger)

	app.Logger.Info("Application initialized")
	return nil
}

// Close releases connections opened by Init
func (app *AppContext) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		app.closers[i]()
	}
	app.closers = nil
}

func (app *AppContext) openStore() (tablestore.Store, error) {
	switch app.Cfg.Backend {
	case config.BackendMemory:
		app.Logger.Warn("Using in-memory storage; data is lost on exit")
		return memstore.New(), nil

	case config.BackendXLSX:
		app.Logger.Info("Opening workbook", zap.String("path", app.Cfg.WorkbookPath))
		return xlsxstore.New(app.Cfg.WorkbookPath, app.Logger), nil

	case config.BackendSheets:
		app.Logger.Info("Initializing sheets client", zap.String("credentials", app.Cfg.Credentials))
		ts, err := utils.TokenSource(app.Ctx, app.Cfg, app.Env, app.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to get Google credentials: %w", err)
		}
		client, err := sheetsclient.NewClient(app.Ctx, ts)
		if err != nil {
			return nil, fmt.Errorf("failed to create sheets client: %w", err)
		}
		app.Logger.Debug("Sheets client initialized successfully",
			zap.String("spreadsheet_id", app.Cfg.SpreadsheetID))
		return sheetsdb.New(client, app.Cfg.SpreadsheetID, app.Logger), nil
	}

	return nil, fmt.Errorf("unknown backend: %s", app.Cfg.Backend)
}

func (app *AppContext) openUserDirectory() (db.UserStore, error) {
	if app.Cfg.UserDirectory != config.DirectoryPostgres {
		return db.NewDB(app.Store), nil
	}

	app.Logger.Info("Connecting to user directory database")
	pg, err := postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL, app.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.closers = append(app.closers, pg.Close)

	if err := pg.RunMigrations(app.Ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	app.Logger.Debug("Database migrations applied")
	return pg, nil
}

func (app *AppContext) newVerifier() (accesscontrol.IdentityVerifier, error) {
	id := app.Cfg.Identity
	if id.Verifier == config.VerifierIDToken {
		v, err := identity.NewIDTokenVerifier(app.Ctx, id.Audience)
		if err != nil {
			return nil, fmt.Errorf("failed to create ID token verifier: %w", err)
		}
		return v, nil
	}
	return identity.NewTokenInfoVerifier(&http.Client{Timeout: 10 * time.Second}, id.TokenInfoURL, id.Audience), nil
}
