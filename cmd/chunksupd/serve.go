package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Wenfeng-Gao-cn/doc-chunk/internal/config"
	"github.com/Wenfeng-Gao-cn/doc-chunk/internal/journal"
	"github.com/Wenfeng-Gao-cn/doc-chunk/internal/logger"
	"github.com/Wenfeng-Gao-cn/doc-chunk/internal/metrics"
	"github.com/Wenfeng-Gao-cn/doc-chunk/internal/server"
	"github.com/Wenfeng-Gao-cn/doc-chunk/internal/supervisor"
)

func createServeCommand(flags *GlobalFlags) *cobra.Command {
	var (
		listen   string
		basePath string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP control API and Prometheus metrics",
		Long: `Serve exposes the supervisor over HTTP for remote status checks and
start/stop control, plus Prometheus metrics on /metrics.

Examples:
  chunksupd serve --listen 127.0.0.1:8085
  curl http://127.0.0.1:8085/api/status
  curl -X POST 'http://127.0.0.1:8085/api/start?service=chunker&doc_dir=sample_doc'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := config.Load(flags.ConfigPath, flags.BaseDir)
			if err != nil {
				return err
			}
			lc := fc.Log
			if lc.Level == "" {
				lc.Level = flags.LogLevel
			}
			log := logger.New(lc)

			env, err := config.GlobalEnv(fc)
			if err != nil {
				return err
			}
			jrn, err := journal.New(fc.Journal)
			if err != nil {
				return err
			}
			if jrn != nil {
				defer func() { _ = jrn.Close() }()
			}

			sups := make([]*supervisor.Supervisor, 0, len(fc.Services))
			for _, sp := range fc.Services {
				sup := supervisor.New(sp)
				sup.SetLogger(log)
				sup.SetEnv(env)
				if jrn != nil {
					sup.SetJournal(jrn)
				}
				sups = append(sups, sup)
			}

			if err := metrics.Register(nil); err != nil {
				return err
			}

			srv := server.NewServer(listen, basePath, sups)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()
			log.Info("control api listening", "addr", listen, "base_path", basePath)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			log.Info("control api stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "127.0.0.1:8085", "listen address for the control API")
	cmd.Flags().StringVar(&basePath, "base-path", "/api", "base path for control endpoints")
	return cmd
}
