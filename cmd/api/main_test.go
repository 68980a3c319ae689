package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparkeditor/spark/config"
	"github.com/sparkeditor/spark/internal/app"
	"github.com/sparkeditor/spark/pkg/logger"
)

func createTestConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Version:     config.VERSION,
		Server:      config.ServerConfig{Host: "127.0.0.1", Port: 0},
		Import:      config.ImportConfig{BlocksPerSection: 5, MaxDepth: 32, MaxInputBytes: 1 << 20, Sanitize: true},
		Batch:       config.BatchConfig{Concurrency: 1},
	}
}

type failingApp struct {
	app.AppInterface
}

func (failingApp) Initialize() error {
	return errors.New("database unreachable")
}

func TestRunServer(t *testing.T) {
	original := signalNotify
	defer func() { signalNotify = original }()

	t.Run("shuts down on signal", func(t *testing.T) {
		calls := 0
		signalNotify = func(c chan<- os.Signal, sig ...os.Signal) {
			calls++
			if calls == 1 {
				c <- syscall.SIGTERM
			}
		}

		log := logger.NewTestLogger(t)
		err := runServer(createTestConfig(), log, app.NewApp)

		require.NoError(t, err)
		assert.Contains(t, log.Messages("info"), "Server shut down gracefully")
	})

	t.Run("initialization error", func(t *testing.T) {
		signalNotify = signal.Notify

		newApp := func(cfg *config.Config, opts ...app.AppOption) app.AppInterface {
			return failingApp{}
		}

		log := logger.NewTestLogger(t)
		err := runServer(createTestConfig(), log, newApp)

		require.Error(t, err)
		assert.Equal(t, []string{"Failed to initialize application"}, log.Messages("error"))
	})
}
