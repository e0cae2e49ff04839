package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

func (r *Runtime) Run(ctx context.Context) error {
	r.logger.Info("helpbot runtime starting",
		"addr", r.cfg.HTTPAddr,
		"profile", r.cfg.Profile,
		"knowledge_path", r.cfg.KnowledgePath,
		"memory_backend", r.cfg.MemoryBackend,
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return r.connector.Start(groupCtx)
	})
	group.Go(func() error {
		return r.watcher.Start(groupCtx)
	})
	group.Go(func() error {
		err := r.sweeper.Run(groupCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		err := r.httpServer.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return r.httpServer.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
