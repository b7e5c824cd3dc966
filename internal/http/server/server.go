// Package server corre el http.Server con apagado ordenado.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/accounts/internal/observability/logger"
)

// ShutdownTimeout es lo que esperamos a que terminen los requests en curso.
const ShutdownTimeout = 15 * time.Second

// Options del servidor.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Run sirve h hasta que ctx se cancela y entonces hace Shutdown. Devuelve nil
// en un apagado limpio.
func Run(ctx context.Context, opts Options, h http.Handler) error {
	log := logger.From(ctx).With(logger.Component("http.server"))

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           h,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", opts.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("server stopped")
	return nil
}
