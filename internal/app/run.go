package app

import (
	"context"
	"errors"
	"net/http"
	"time"
)

const defaultGracefulTimeout = 5 * time.Second

// Run обслуживает HTTP (и /metrics) и крутит потребителя статусов до отмены ctx
// или первой фатальной ошибки компонента, после чего останавливает всё.
// Возвращает ошибку компонента; штатная остановка по ctx — nil.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 3)
	serve := func(name string, srv *http.Server) {
		a.Logger.Infof(ctx, "%s listening on %s", name, srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}

	go serve("http api", a.HTTPServer)
	if a.MetricsServer != nil {
		go serve("metrics", a.MetricsServer)
	}
	if a.KafkaConsumer != nil {
		go func() {
			if err := a.KafkaConsumer.Run(ctx); err != nil && ctx.Err() == nil {
				errCh <- err
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.Logger.Infof(ctx, "shutting down")
	case runErr = <-errCh:
		a.Logger.Errorf(ctx, "component failed, shutting down: %v", runErr)
	}

	a.shutdown(context.WithoutCancel(ctx))
	return runErr
}

func (a *App) shutdown(ctx context.Context) {
	timeout := a.gracefulTimeout
	if timeout <= 0 {
		timeout = defaultGracefulTimeout
	}
	sctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for _, srv := range []*http.Server{a.HTTPServer, a.MetricsServer} {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(sctx); err != nil {
			a.Logger.Warnf(ctx, "server %s shutdown: %v", srv.Addr, err)
		}
	}
	if a.KafkaConsumer != nil {
		if err := a.KafkaConsumer.Close(); err != nil {
			a.Logger.Warnf(ctx, "status consumer close: %v", err)
		}
	}
	a.Logger.Infof(ctx, "stopped")
}
