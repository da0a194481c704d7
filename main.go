package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kickpredict/internal/api"
	"kickpredict/internal/config"
	"kickpredict/internal/container"
	"kickpredict/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Close()

	if err := appContainer.InitStore(ctx); err != nil {
		log.Fatalf("Failed to open artifact store: %v", err)
	}

	// Serving without a trained model is pointless; run `kickpredict train` first
	predictor, err := appContainer.Predictor(ctx)
	if err != nil {
		log.Fatalf("Failed to load model artifacts: %v", err)
	}

	logger := appContainer.Logger
	gin.SetMode(appConfig.Server.GinMode)

	uiApp, err := ui.NewApp(ui.Config{Port: appConfig.Server.UIPort}, predictor, appContainer.Store)
	if err != nil {
		log.Fatalf("Failed to initialize UI: %v", err)
	}

	apiServer := &http.Server{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           api.NewRouter(predictor, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start pprof server for performance profiling
	if appConfig.Profiling.Enabled {
		go func() {
			logger.Info("Profiling server starting on :%s", appConfig.Profiling.Port)
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
				logger.Warn("pprof server failed: %v", err)
			}
		}()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting API server on %s", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return apiServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return uiApp.Start(gctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped: %v", err)
		os.Exit(1)
	}
	logger.Info("Shutdown complete")
}
