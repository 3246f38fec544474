package initialize

import (
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"mirage/backend/app/controllers"
	"mirage/backend/app/db"
	jwtutil "mirage/backend/app/jwt"
	"mirage/backend/app/middleware"
	"mirage/backend/app/models"
	"mirage/backend/app/queue"
	"mirage/backend/app/repo"
	"mirage/backend/app/services"
	"mirage/backend/config"
	"mirage/backend/global"
	"mirage/backend/router"
)

type App struct {
	Cfg        config.Config
	DB         *gorm.DB
	Router     http.Handler
	Queue      *queue.Queue
	Sync       *services.SyncService
	Dispatcher *services.Dispatcher
	Machines   *services.MachineService
	Updates    *services.UpdateService
	Users      *services.UserService
}

func Build(configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	global.Config = *cfg

	gdb, err := db.Connect(db.Config{Host: cfg.DB.Host, Port: cfg.DB.Port, User: cfg.DB.User, Password: cfg.DB.Pass, DBName: cfg.DB.Name})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	global.Mdb = gdb

	if err := Migrate(gdb); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if cfg.Redis.Addr != "" {
		global.Rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	}

	return BuildWith(cfg, gdb, global.Rdb)
}

// Migrate creates or updates the schema for every tracked entity.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Machine{},
		&models.MachineHistory{},
		&models.HistoryTimeline{},
		&models.HistoryHealth{},
		&models.HistoryTrackable{},
		&models.Webhook{},
		&models.MachineUpdate{},
		&models.Survey{},
		&models.SurveyInterface{},
		&models.SurveyLocalUser{},
		&models.SurveyDrive{},
		&models.SurveyProcess{},
		&models.SurveyPort{},
	)
}

// BuildWith wires the application from already-opened handles. Tests use it
// with an in-memory database.
func BuildWith(cfg *config.Config, gdb *gorm.DB, rdb *redis.Client) (*App, error) {
	// Repos
	userRepo := repo.NewUserRepository(gdb)
	machineRepo := repo.NewMachineRepository(gdb)
	historyRepo := repo.NewHistoryRepository(gdb)
	webhookRepo := repo.NewWebhookRepository(gdb)
	surveyRepo := repo.NewSurveyRepository(gdb)
	updateRepo := repo.NewUpdateRepository(gdb)

	// Services
	userSvc := services.NewUserService(userRepo)
	if err := userSvc.EnsureAdmin("admin", "admin123"); err != nil {
		// non-critical
	}
	machineSvc := services.NewMachineService(machineRepo, historyRepo, cfg.Machines.MatchBy, global.Logger)
	updateSvc := services.NewUpdateService(updateRepo)
	presenceSvc := services.NewPresenceService(rdb, cfg.Machines.OfflineAfter(), global.Logger)
	dispatcher := services.NewDispatcher(global.Logger)

	q := queue.New()
	syncSvc := services.NewSyncService(
		q, machineSvc, machineRepo, historyRepo, webhookRepo, surveyRepo,
		dispatcher, presenceSvc, cfg.Queue.SyncDelay(), global.Logger,
	)

	// Controllers
	signer := &jwtutil.Signer{Secret: []byte(cfg.JWT.Secret), Issuer: cfg.JWT.Issuer, ExpMin: cfg.JWT.ExpMin}
	authCtrl := controllers.NewAuthController(userSvc, signer)
	adminCtrl := controllers.NewAdminController(userSvc)
	resultsCtrl := controllers.NewResultsController(q, global.Logger)
	updatesCtrl := controllers.NewUpdatesController(q, updateSvc, global.Logger)
	surveyCtrl := controllers.NewSurveyController(q, surveyRepo)
	machinesCtrl := controllers.NewMachinesController(machineSvc, historyRepo, presenceSvc)
	webhooksCtrl := controllers.NewWebhooksController(webhookRepo, historyRepo, q, dispatcher)
	mw := &middleware.Auth{Signer: signer}

	h := router.NewRouter(authCtrl, adminCtrl, resultsCtrl, updatesCtrl, surveyCtrl, machinesCtrl, webhooksCtrl, mw)
	h = middleware.Logging(h)

	return &App{
		Cfg:        *cfg,
		DB:         gdb,
		Router:     h,
		Queue:      q,
		Sync:       syncSvc,
		Dispatcher: dispatcher,
		Machines:   machineSvc,
		Updates:    updateSvc,
		Users:      userSvc,
	}, nil
}
