package router

import (
    "context"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
)

func TestServe_ReturnsListenError(t *testing.T) {
    e := echo.New()
    e.HideBanner, e.HidePort = true, true

    done := make(chan error, 1)
    go func() { done <- Serve(context.Background(), e, "256.0.0.1:bad", time.Second, nil) }()

    select {
    case err := <-done:
        assert.Error(t, err)
    case <-time.After(5 * time.Second):
        t.Fatal("Serve did not return after the listener failed")
    }
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
    e := echo.New()
    e.HideBanner, e.HidePort = true, true
    ctx, cancel := context.WithCancel(context.Background())

    done := make(chan error, 1)
    go func() { done <- Serve(ctx, e, "127.0.0.1:0", time.Second, nil) }()
    time.Sleep(50 * time.Millisecond)
    cancel()

    select {
    case err := <-done:
        assert.NoError(t, err)
    case <-time.After(5 * time.Second):
        t.Fatal("Serve did not return after cancel")
    }
}
