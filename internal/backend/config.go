package backend

import (
	"errors"
	"fmt"
	"net/url"

	"haushalt/internal/config"
)

var ErrInvalidBackend = errors.New("invalid backend type")

// FromAppConfig picks the backend settings out of the process config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	c := Config{
		Type:         BackendType(appConfig.DataBackend),
		SQLiteDBPath: appConfig.SQLiteDBPath,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}
	if !c.Type.IsValid() {
		return Config{}, fmt.Errorf("%w in config: %q", ErrInvalidBackend, appConfig.DataBackend)
	}
	return c, nil
}

// Validate checks the store settings and, when publishing is configured,
// the AMQP URL. An empty AMQP URL disables publishing.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.Type)
	}
	if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
		return errors.New("SQLite database path is required for sqlite backend")
	}
	if c.AMQPURL != "" {
		u, err := url.Parse(c.AMQPURL)
		if err != nil || (u.Scheme != "amqp" && u.Scheme != "amqps") {
			return fmt.Errorf("AMQP URL must use amqp:// or amqps://, got %q", c.AMQPURL)
		}
	}
	return nil
}
