package main

import (
	"database/sql"
	"log"
	"time"

	"firebase.google.com/go/messaging"
	"github.com/redis/go-redis/v9"

	"finvoiceBack/internal/config"
	"finvoiceBack/internal/handlers"
	"finvoiceBack/internal/repositories"
	"finvoiceBack/internal/services"
	"finvoiceBack/utils"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger
	db       *sql.DB

	jwtSecret string

	userRepo        *repositories.UserRepository
	proposalService *services.ProposalService

	userHandler       *handlers.UserHandler
	proposalHandler   *handlers.ProposalHandler
	investmentHandler *handlers.InvestmentHandler
	invoiceHandler    *handlers.InvoiceHandler
	fcmHandler        *handlers.FCMHandler

	eventHub *eventHub
}

func initializeApp(db *sql.DB, rdb *redis.Client, fcmClient *messaging.Client, cfg config.Config, errorLog, infoLog *log.Logger) *application {
	// Repositories
	userRepo := repositories.UserRepository{DB: db}
	proposalRepo := repositories.ProposalRepository{DB: db}
	invoiceRepo := repositories.InvoiceRepository{DB: db}
	investorRepo := repositories.InvestorRepository{DB: db}
	investmentRepo := repositories.InvestmentRepository{DB: db}

	// Services
	notifier := &services.NotificationService{
		RDB:      rdb,
		FCM:      fcmClient,
		DB:       db,
		ErrorLog: errorLog,
	}

	tokenManager, err := utils.NewManager(cfg.JWT.Secret)
	if err != nil {
		errorLog.Fatalf("jwt: %v", err)
	}

	userService := &services.UserService{
		UserRepo:     &userRepo,
		TokenManager: tokenManager,
		JWTSecret:    cfg.JWT.Secret,
		AccessTTL:    time.Duration(cfg.JWT.AccessTTLMin) * time.Minute,
		RefreshTTL:   time.Duration(cfg.JWT.RefreshTTLHours) * time.Hour,
	}
	proposalService := &services.ProposalService{
		ProposalRepo:   &proposalRepo,
		InvoiceRepo:    &invoiceRepo,
		InvestorRepo:   &investorRepo,
		InvestmentRepo: &investmentRepo,
		UserRepo:       &userRepo,
		Notifier:       notifier,
		ResponseWindow: time.Duration(cfg.Proposals.ResponseWindowHours) * time.Hour,
	}
	investmentService := &services.InvestmentService{
		InvestmentRepo: &investmentRepo,
		InvestorRepo:   &investorRepo,
		InvoiceRepo:    &invoiceRepo,
		UserRepo:       &userRepo,
		Notifier:       notifier,
	}
	invoiceService := &services.InvoiceService{
		InvoiceRepo: &invoiceRepo,
		UserRepo:    &userRepo,
		Documents: &utils.DocumentStore{
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
		},
	}

	// Handlers
	userHandler := &handlers.UserHandler{Service: userService}
	proposalHandler := &handlers.ProposalHandler{Service: proposalService}
	investmentHandler := &handlers.InvestmentHandler{Service: investmentService}
	invoiceHandler := &handlers.InvoiceHandler{Service: invoiceService}
	fcmHandler := &handlers.FCMHandler{DB: db}

	return &application{
		errorLog:          errorLog,
		infoLog:           infoLog,
		db:                db,
		jwtSecret:         cfg.JWT.Secret,
		userRepo:          &userRepo,
		proposalService:   proposalService,
		userHandler:       userHandler,
		proposalHandler:   proposalHandler,
		investmentHandler: investmentHandler,
		invoiceHandler:    invoiceHandler,
		fcmHandler:        fcmHandler,
	}
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	db.SetMaxIdleConns(35)
	return db, nil
}
