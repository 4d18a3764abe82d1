package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

// HTTPServerWorker serves handler until the context is cancelled.
type HTTPServerWorker struct {
	log     *slog.Logger
	addr    string
	handler http.Handler
}

func NewHTTPServerWorker(log *slog.Logger, addr string, handler http.Handler) *HTTPServerWorker {
	return &HTTPServerWorker{log: log, addr: addr, handler: handler}
}

func (w *HTTPServerWorker) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", w.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", w.addr, err)
	}
	return w.serve(ctx, listener)
}

// serve owns listener. Request contexts derive from ctx so that open WebSockets
// are released when the worker stops.
func (w *HTTPServerWorker) serve(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           w.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errChan := make(chan error, 1)
	go func() {
		w.log.Info("Starting HTTP server", "address", listener.Addr().String())
		errChan <- server.Serve(listener)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		w.log.Warn("HTTP server did not stop gracefully", "error", err)
	}
	if err := <-errChan; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	w.log.Info("HTTP server stopped")
	return nil
}
