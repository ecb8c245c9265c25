package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flareshield/internal/api"
	"flareshield/internal/config"
	"flareshield/internal/container"
	"flareshield/internal/ops"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}

	if path := config.PresetFile(); path != "" {
		watchCtx, stopWatch := context.WithCancel(context.Background())
		defer stopWatch()
		err := config.WatchPreset(watchCtx, path, config.EnvBase(), func(c *config.Config) {
			appContainer.Handler.SetDefaults(c.SessionOptions())
		})
		if err != nil {
			log.Printf("[Config] preset watch disabled: %v", err)
		}
	}

	server := &http.Server{
		Addr:    ":" + appConfig.Server.Port,
		Handler: api.NewRouter(appContainer.Handler, appContainer.SSEHub),
	}

	var opsServer *http.Server
	if appConfig.Ops.Enabled {
		opsServer = ops.NewServer(":" + appConfig.Ops.Port)
		go func() {
			log.Printf("[Ops] metrics and pprof listening on :%s", appConfig.Ops.Port)
			if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("[Ops] server failed: %v", err)
			}
		}()
	}

	go func() {
		log.Printf("Starting FlareShield server on port %s", appConfig.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// runs first, so SSE streams see their stopped events before the listener closes
	if err := appContainer.Shutdown(ctx); err != nil {
		log.Printf("Container shutdown: %v", err)
	}
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	if opsServer != nil {
		if err := opsServer.Shutdown(ctx); err != nil {
			log.Printf("[Ops] shutdown: %v", err)
		}
	}
}
