package backend

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haushalt/internal/amqp"
	"haushalt/internal/config"
	"haushalt/internal/core"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	assert.ErrorIs(t, err, ErrInvalidBackend)

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: "/tmp/x.db",
		AMQPURL:      "amqp://localhost/",
		AMQPExchange: "haushalt",
		AMQPQueue:    "journal",
	})
	require.NoError(t, err)
	assert.Equal(t, Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: "/tmp/x.db",
		AMQPURL:      "amqp://localhost/",
		AMQPExchange: "haushalt",
		AMQPQueue:    "journal",
	}, cfg)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"unknown", Config{Type: "sheets"}, true},
		{"amqp", Config{Type: MemoryBackend, AMQPURL: "amqps://mq.example.com/"}, false},
		{"amqp wrong scheme", Config{Type: MemoryBackend, AMQPURL: "http://mq.example.com/"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend})
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Cleanup() })

	require.Len(t, res.Services, len(core.Kinds))
	for i, kind := range core.Kinds {
		assert.Equal(t, kind, res.Services[i].Kind())
	}
	assert.False(t, res.Publishing)
	assert.NoError(t, res.Database.Ping(context.Background()))
}

func TestCreateSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "haushalt.db")
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: path})
	require.NoError(t, err)

	ctx := context.Background()
	created, err := res.Services[0].Create(ctx, core.Input{Name: "Book", Amount: "12"})
	require.NoError(t, err)
	got, found, err := res.Services[0].Read(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Book", got.Name)

	require.NoError(t, res.Cleanup())
}

func TestCreateBackendContinuesWithoutBroker(t *testing.T) {
	f := NewFactory(nil)
	f.dial = func(url, exchange, queue string) (*amqp.Client, error) {
		return nil, errors.New("connection refused")
	}

	res, err := f.CreateBackend(context.Background(), Config{Type: MemoryBackend, AMQPURL: "amqp://localhost/"})
	require.NoError(t, err)
	assert.False(t, res.Publishing)

	_, err = res.Services[0].Create(context.Background(), core.Input{Name: "Book"})
	assert.NoError(t, err)
	assert.NoError(t, res.Cleanup())
}

func TestCreateBackendRejectsInvalidConfig(t *testing.T) {
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend})
	assert.Error(t, err)
}
