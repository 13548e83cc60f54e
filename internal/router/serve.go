package router

import (
    "context"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"
)

// Serve runs e on addr until ctx is cancelled, then shuts it down within
// grace.  A listener failure is returned instead of ending the process so
// callers still run their cleanup.
func Serve(ctx context.Context, e *echo.Echo, addr string, grace time.Duration, log *zap.Logger) error {
    if log == nil {
        log = zap.NewNop()
    }
    errc := make(chan error, 1)
    go func() {
        log.Info("listening", zap.String("addr", addr))
        if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
            errc <- err
        }
        close(errc)
    }()

    select {
    case err := <-errc:
        return err
    case <-ctx.Done():
    }

    log.Info("shutting down")
    shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
    defer cancel()
    return e.Shutdown(shutdownCtx)
}
