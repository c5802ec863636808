package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"rootfinder/internal/config"
	"rootfinder/internal/logging"
	"rootfinder/internal/server"
)

var (
	cfgFile string
	addr    string
)

var rootCmd = &cobra.Command{
	Use:           "server",
	Short:         "Веб-сервер поиска корней и PDF-утилиты",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if addr != "" {
			cfg.Server.Addr = addr
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "YAML-файл конфигурации")
	rootCmd.Flags().StringVar(&addr, "addr", "", "адрес сервера (перекрывает конфигурацию)")
}

func serve(ctx context.Context, cfg config.Config) error {
	log := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	srv, err := server.New(cfg, log)
	if err != nil {
		return err
	}
	httpSrv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("сервер запущен", "addr", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("остановка сервера")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "ошибка:", err)
		os.Exit(1)
	}
}
