package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/salescast/pkg/config"
	"github.com/wonny/salescast/pkg/logger"
)

func TestServerRunStopsOnCancel(t *testing.T) {
	cfg := &config.Config{Port: "0", Env: "development", AppTZ: "UTC"}
	srv := New(cfg, logger.Nop(), http.NotFoundHandler())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx, time.Second)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestServerRunReportsListenError(t *testing.T) {
	cfg := &config.Config{Port: "not-a-port", Env: "development"}
	srv := New(cfg, logger.Nop(), http.NotFoundHandler())

	err := srv.Run(context.Background(), time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start server")
}
