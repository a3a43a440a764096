package app

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/turnkeeper/internal/config"
	"github.com/rpggio/turnkeeper/internal/domain/activity"
	"github.com/rpggio/turnkeeper/internal/domain/backup"
	"github.com/rpggio/turnkeeper/internal/domain/queue"
	"github.com/rpggio/turnkeeper/internal/domain/roster"
	"github.com/rpggio/turnkeeper/internal/domain/rule"
	"github.com/rpggio/turnkeeper/internal/domain/session"
	"github.com/rpggio/turnkeeper/internal/domain/turn"
	"github.com/rpggio/turnkeeper/internal/mcp"
	"github.com/rpggio/turnkeeper/internal/scheduler"
	"github.com/rpggio/turnkeeper/internal/sqlite"
	"github.com/rs/zerolog"
)

// Options carries the collaborators tests swap out.
type Options struct {
	Clock    clockwork.Clock
	Shuffler queue.Shuffler
	Version  string
}

// App is a fully wired turnkeeper instance.
type App struct {
	DB         *sqlite.DB
	DeviceID   string
	Controller *turn.Controller
	Recorder   *turn.Recorder
	Scheduler  *scheduler.Scheduler
	Server     *sdkmcp.Server
}

// New opens storage, restores this device's rotation and builds the MCP
// server. Close releases the database.
func New(ctx context.Context, cfg config.Config, logger zerolog.Logger, opts Options) (*App, error) {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	reshuffleMode, err := queue.ParseReshuffleMode(cfg.Queue.ReshuffleMode)
	if err != nil {
		return nil, err
	}

	db, err := sqlite.New(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	a, err := wire(ctx, db, cfg, reshuffleMode, logger, opts)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

func wire(ctx context.Context, db *sqlite.DB, cfg config.Config, reshuffleMode queue.ReshuffleMode, logger zerolog.Logger, opts Options) (*App, error) {
	rosterRepo := sqlite.NewRosterRepository(db)
	ruleRepo := sqlite.NewRuleRepository(db)
	sessionRepo := sqlite.NewSessionRepository(db)
	activityRepo := sqlite.NewActivityRepository(db)
	backupRepo := sqlite.NewBackupRepository(db)

	var sessionOpts []session.Option
	if cfg.Sessions.TTL > 0 {
		sessionOpts = append(sessionOpts, session.WithTTL(cfg.Sessions.TTL))
	}

	rosterSvc := roster.NewService(rosterRepo, logger)
	ruleSvc := rule.NewService(ruleRepo, logger)
	sessionSvc := session.NewService(sessionRepo, opts.Clock, logger, sessionOpts...)
	activitySvc := activity.NewService(activityRepo, opts.Clock, logger)

	deviceID, err := sessionSvc.EnsureDeviceID(ctx, cfg.Device.ID)
	if err != nil {
		return nil, err
	}
	deviceName := rosterSvc.DeviceName(ctx, cfg.Device.SelectedDeviceID, deviceID)

	backupSvc := backup.NewService(rosterSvc, ruleSvc, backupRepo, activitySvc, opts.Clock, deviceID, logger)

	recorder := turn.NewRecorder(turn.DefaultRecorderSize)
	controller := turn.NewController(turn.Config{
		DeviceID:      deviceID,
		DeviceName:    deviceName,
		Roster:        rosterSvc,
		Rules:         ruleSvc,
		Sessions:      sessionSvc,
		Activity:      activitySvc,
		Engine:        rule.NewEngine(logger),
		Events:        recorder,
		Shuffler:      opts.Shuffler,
		ReshuffleMode: reshuffleMode,
		Clock:         opts.Clock,
		Logger:        logger,
	})
	if err := controller.Restore(ctx); err != nil {
		return nil, fmt.Errorf("restoring rotation: %w", err)
	}

	handler := mcp.NewHandler(mcp.Services{
		Roster:   rosterSvc,
		Rules:    ruleSvc,
		Turn:     controller,
		Events:   recorder,
		Activity: activitySvc,
		Backup:   backupSvc,
		Logger:   logger,
	})
	server := mcp.NewServer(mcp.Config{
		Handler: handler,
		Logger:  logger,
		Version: opts.Version,
	})

	logger.Info().Str("device_id", deviceID).Str("device_name", deviceName).Msg("device ready")

	return &App{
		DB:         db,
		DeviceID:   deviceID,
		Controller: controller,
		Recorder:   recorder,
		Scheduler:  scheduler.New(opts.Clock, cfg.Timer.TickInterval, controller, logger),
		Server:     server,
	}, nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.DB.Close()
}
