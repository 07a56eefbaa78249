package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/medrex/hospital-flow/internal/admissions"
	"github.com/medrex/hospital-flow/internal/discharge"
	"github.com/medrex/hospital-flow/internal/gateway"
	"github.com/medrex/hospital-flow/internal/insurance"
	"github.com/medrex/hospital-flow/internal/rooms"
	"github.com/medrex/hospital-flow/internal/transfers"
	"github.com/medrex/hospital-flow/pkg/config"
	"github.com/medrex/hospital-flow/pkg/database"
	"github.com/medrex/hospital-flow/pkg/logger"
	"github.com/medrex/hospital-flow/pkg/monitoring"
)

const (
	serviceName    = "hospital-flow"
	serviceVersion = "1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.WithComponent("main").Info("Starting hospital admission service")

	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.CreateSchema(ctx); err != nil {
		log.WithError(err).Fatal("Failed to create database schema")
	}

	metrics := monitoring.NewMetricsCollector(serviceName)

	var tracing *monitoring.TracingManager
	if cfg.Monitoring.TracingEnabled {
		tracing, err = monitoring.NewTracingManager(&monitoring.TracingConfig{
			ServiceName:    serviceName,
			ServiceVersion: serviceVersion,
			JaegerEndpoint: cfg.Monitoring.JaegerEndpoint,
			Environment:    "production",
			SamplingRate:   cfg.Monitoring.SamplingRate,
		})
		if err != nil {
			log.WithError(err).Fatal("Failed to initialize tracing")
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(shutdownCtx); err != nil {
				log.WithError(err).Warn("Failed to shut down tracing")
			}
		}()
	}

	policy, err := discharge.LoadPolicy(cfg.Discharge.PolicyFile)
	if err != nil {
		log.WithError(err).Fatal("Failed to load discharge policy")
	}

	// Repositories
	roomRepo := rooms.NewRepository(db, log)
	admissionRepo := admissions.NewRepository(db, log)
	transferRepo := transfers.NewRepository(db, log)

	// Services
	roomService := rooms.New(roomRepo, log, metrics)
	registryClient := insurance.NewRegistryClient(&cfg.Insurance, log)
	insuranceService := insurance.New(registryClient, time.Duration(cfg.Insurance.TimeoutSeconds)*time.Second, log, metrics)
	readinessService := discharge.New(admissionRepo, policy, log, metrics)
	admissionService := admissions.New(admissionRepo, roomService, insuranceService, readinessService, log, metrics)
	transferService := transfers.New(transferRepo, admissionRepo, log, metrics)

	// HTTP surface
	router := mux.NewRouter()

	healthManager := monitoring.NewHealthManager(serviceName, serviceVersion)
	healthManager.RegisterChecker("database", monitoring.NewDatabaseHealthChecker(db.DB))
	if cfg.Insurance.ProviderURL != "" {
		healthManager.RegisterChecker("insurance_registry",
			monitoring.NewProviderHealthChecker(cfg.Insurance.ProviderURL, 5*time.Second))
	}
	router.HandleFunc(cfg.Monitoring.HealthPath, healthManager.HTTPHandler()).Methods("GET")
	if cfg.Monitoring.Enabled {
		router.Handle(cfg.Monitoring.MetricsPath, metrics.Handler()).Methods("GET")
	}

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	rooms.NewHandler(roomService, log).RegisterRoutes(apiRouter)
	admissions.NewHandler(admissionService, log).RegisterRoutes(apiRouter)
	discharge.NewHandler(readinessService, log).RegisterRoutes(apiRouter)
	transfers.NewHandler(transferService, log).RegisterRoutes(apiRouter)

	validator := gateway.NewTokenValidator(cfg.JWT.SecretKey, cfg.JWT.Issuer)
	authMiddleware := gateway.NewAuthMiddleware(validator, log)
	apiRouter.Use(authMiddleware.Handler)

	monitoringMiddleware := monitoring.NewMonitoringMiddleware(metrics, tracing, log)
	router.Use(monitoringMiddleware.HTTPMiddleware)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.WithComponent("main").Infof("HTTP server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.WithComponent("main").Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Forced shutdown")
	}

	log.WithComponent("main").Info("Server stopped")
}
