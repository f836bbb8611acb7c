package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/belasaude/clinic-service/internal/config"
	"github.com/belasaude/clinic-service/internal/handler"
	"github.com/belasaude/clinic-service/internal/jobs"
	"github.com/belasaude/clinic-service/internal/middleware"
	"github.com/belasaude/clinic-service/internal/repository"
	"github.com/belasaude/clinic-service/internal/service"
	"github.com/belasaude/clinic-service/internal/utils/email"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration, .env first when present
	_ = godotenv.Load()
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	svc := service.NewService(repo, logger, cfg)
	h := handler.NewHandler(svc, logger)
	sender := email.NewSender(cfg, logger)

	// Installment reminders
	if cfg.RemindersOn {
		c := cron.New()
		reminders := jobs.NewReminders(svc, sender, logger, cfg)
		if err := reminders.Start(c); err != nil {
			logger.Fatalf("Failed to schedule reminders: %v", err)
		}
		c.Start()
		defer c.Stop()
		logger.Infof("Reminder job scheduled: %s", cfg.ReminderCron)
	}

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))

	authRouter.HandleFunc("/patients", h.CreatePatient).Methods("POST")
	authRouter.HandleFunc("/patients", h.ListPatients).Methods("GET")
	authRouter.HandleFunc("/patients/{id}", h.GetPatient).Methods("GET")
	authRouter.HandleFunc("/patients/{id}", h.UpdatePatient).Methods("PUT")
	authRouter.HandleFunc("/patients/{id}", h.DeletePatient).Methods("DELETE")
	authRouter.HandleFunc("/patients/{id}/history", h.PatientHistory).Methods("GET")

	authRouter.HandleFunc("/appointments", h.CreateAppointment).Methods("POST")
	authRouter.HandleFunc("/appointments", h.ListAppointments).Methods("GET")
	authRouter.HandleFunc("/appointments/{id}", h.GetAppointment).Methods("GET")
	authRouter.HandleFunc("/appointments/{id}", h.UpdateAppointment).Methods("PUT")
	authRouter.HandleFunc("/appointments/{id}", h.DeleteAppointment).Methods("DELETE")

	authRouter.HandleFunc("/installments/upcoming", h.UpcomingInstallments).Methods("GET")
	authRouter.HandleFunc("/installments/{id}/pay", h.PayInstallment).Methods("POST")

	authRouter.HandleFunc("/cashflow", h.CreateCashFlowEntry).Methods("POST")
	authRouter.HandleFunc("/cashflow", h.ListCashFlow).Methods("GET")
	authRouter.HandleFunc("/cashflow/summary", h.CashFlowSummary).Methods("GET")
	authRouter.HandleFunc("/cashflow/export", h.ExportCashFlow).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
