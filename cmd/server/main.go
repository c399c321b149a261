package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/gin-gonic/gin"

	"github.com/worksheetlab/worksheet-service/internal/config"
	"github.com/worksheetlab/worksheet-service/internal/evaluator"
	"github.com/worksheetlab/worksheet-service/internal/handlers"
	"github.com/worksheetlab/worksheet-service/internal/ingest"
	"github.com/worksheetlab/worksheet-service/internal/services"
	"github.com/worksheetlab/worksheet-service/internal/utils"
)

const version = "1.0.0"

func main() {
	printStartUpBanner()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := utils.NewDefaultLogger()
	if cfg.Server.Environment == "development" {
		logger = utils.NewDevelopmentLogger()
	}
	slogLogger := utils.ToSlogLogger(logger)

	sessionStore, err := cfg.Store.CreateSessionStore(slogLogger)
	if err != nil {
		log.Fatalf("failed to create session store: %v", err)
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogLogger)
	if err != nil {
		log.Fatalf("failed to create event publisher: %v", err)
	}

	imageTransport := ingest.NewImageTransport(cfg.Parser.ImageEndpoint(), nil)
	pdfTransport := ingest.NewPDFTransport(cfg.Parser.PDFEndpoints, cfg.Parser.PDFTimeout, nil)
	adapter := ingest.NewAdapter(imageTransport, pdfTransport, utils.NewQuestionValidator(), logger)

	validator := utils.NewValidator()

	sessionService := services.NewSessionService(
		sessionStore, adapter, evaluator.New(), publisher, slogLogger, validator)
	reportService := services.NewReportService(sessionStore, publisher, slogLogger)
	serviceManager := services.NewServiceManager(sessionService, reportService)

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(serviceManager, validator, logger)
	handlerManager.SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Worksheet service listening",
			"addr", srv.Addr,
			"environment", cfg.Server.Environment,
			"store_backend", cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}

	if err := publisher.Close(); err != nil {
		logger.Error("Failed to close event publisher", "error", err)
	}
	if err := sessionStore.Close(); err != nil {
		logger.Error("Failed to close session store", "error", err)
	}

	logger.Info("Server stopped")
}

func printStartUpBanner() {
	myFigure := figure.NewFigure("WORKSHEET", "", true)
	myFigure.Print()

	fmt.Println("======================================================")
	fmt.Printf("Worksheet Session Service (v%s)\n\n", version)
}
