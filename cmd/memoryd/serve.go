package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"memoryd/internal/config"
	"memoryd/internal/httpapi"
	"memoryd/internal/schedule"
)

const shutdownTimeout = 5 * time.Second

func runServe(ctx context.Context, opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel, opts.logFormat)
	a, err := buildApp(ctx, cfg, opts.runtime, &log)
	if err != nil {
		return err
	}
	defer a.Close()

	httpapi.SetLogger(log)
	httpapi.SetBaseContext(ctx)
	httpapi.SetMaxBodyBytes(cfg.Server.MaxBodyBytes)
	httpapi.SetGenerateTimeout(cfg.Server.GenerateTimeout.Std())
	c := cfg.Server.CORS
	httpapi.SetCORSOptions(c.Enabled, c.AllowedOrigins, c.AllowedMethods, c.AllowedHeaders)

	sched := schedule.NewCronScheduler(&log)
	if err := sched.AddJob(schedule.ReindexJob{Indexer: a.svc}, config.Spec(cfg.Schedule.Reindex)); err != nil {
		return err
	}
	if err := sched.AddJob(schedule.PersonaJob{Analyzer: a.svc}, config.Spec(cfg.Schedule.Persona)); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           httpapi.NewMux(a.svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.Server.Addr).Str("models_dir", cfg.Model.ModelsDir).Str("db", cfg.Storage.DBPath).Msg("memoryd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if m := cfg.Model.DefaultModel; m != "" {
		g.Go(func() error {
			// A failed startup load leaves the server running without a model.
			if err := a.svc.LoadModel(gctx, m, cfg.Model.ContextLength); err != nil {
				log.Error().Err(err).Str("model", m).Msg("initial model load failed")
			}
			return nil
		})
	}
	sched.Start(gctx)
	g.Go(func() error {
		<-gctx.Done()
		sched.Stop()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.svc.StopGeneration()
		if err := srv.Shutdown(sctx); err != nil {
			log.Warn().Err(err).Msg("graceful shutdown")
		}
		return nil
	})
	err = g.Wait()
	log.Info().Msg("memoryd stopped")
	return err
}
