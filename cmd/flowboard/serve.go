package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/soochol/flowboard/internal/api"
	"github.com/soochol/flowboard/internal/canvas"
	"github.com/soochol/flowboard/internal/config"
	"github.com/soochol/flowboard/internal/db"
	"github.com/soochol/flowboard/internal/geometry"
	"github.com/soochol/flowboard/internal/repository"
	"github.com/soochol/flowboard/internal/services"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		staticDir  string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the canvas HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, staticDir)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config.yaml (default: ./config.yaml when present)")
	cmd.Flags().StringVar(&staticDir, "static", "", "Serve a built frontend from this directory")
	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadDefault()
	}
	return config.Load(path)
}

func serve(ctx context.Context, cfg *config.Config, staticDir string) error {
	mem := repository.NewMemory()
	var repo repository.WorkflowRepository = mem
	if cfg.Database.URL != "" {
		database, err := db.New(ctx, cfg.Database.URL)
		if err != nil {
			slog.Warn("database unavailable, using in-memory storage", "err", err)
		} else {
			defer database.Close()
			if err := database.Migrate(ctx); err != nil {
				return err
			}
			repo = repository.NewPersistent(mem, database)
			slog.Info("using PostgreSQL workflow storage")
		}
	}

	manager := canvas.NewManager(canvas.Options{
		ViewportWidth:  cfg.Canvas.ViewportWidth,
		ViewportHeight: cfg.Canvas.ViewportHeight,
		MiniMap:        geometry.Size{Width: cfg.Canvas.MiniMapWidth, Height: cfg.Canvas.MiniMapHeight},
	})
	svc := services.NewCanvasService(repo, manager, geometry.Size{Width: cfg.Canvas.ThumbnailWidth, Height: cfg.Canvas.ThumbnailHeight})
	if len(cfg.Canvas.Workflows) > 0 {
		if err := svc.LoadFiles(ctx, cfg.Canvas.Workflows); err != nil {
			return fmt.Errorf("load workflows: %w", err)
		}
	}

	srv := api.NewServer(svc)
	if staticDir != "" {
		srv.SetStaticDir(staticDir)
	}
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpSrv := &http.Server{Addr: addr, Handler: srv.Handler()}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting flowboard server", "addr", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
