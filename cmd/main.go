package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"descstats/api"
	"descstats/internal/config"
	"descstats/internal/ingest"
	"descstats/internal/present"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	gin.SetMode(cfg.Server.GinMode)
	handler := api.NewHandler(handlerOptions(cfg))
	srv := &http.Server{
		Addr:    net.JoinHostPort("", cfg.Server.Port),
		Handler: api.NewRouter(handler),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Descriptive statistics service starting on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("Server stopped with error: ", err)
	}
}

func handlerOptions(cfg *config.Config) api.Options {
	return api.Options{
		Ingest: ingest.Options{
			HasHeader:   cfg.Ingest.HasHeader,
			Sheet:       cfg.Ingest.Sheet,
			PreviewRows: cfg.Ingest.PreviewRows,
		},
		Display: present.Options{
			ChartColumns: cfg.Display.ChartColumns,
			BarWidth:     cfg.Display.BarWidth,
			Precision:    cfg.Display.Precision,
		},
		MaxTextBytes:   cfg.Limits.MaxTextBytes,
		MaxUploadBytes: cfg.Limits.MaxUploadBytes,
	}
}
