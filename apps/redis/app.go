package redis

import (
	"github.com/getevo/evo/v2/lib/application"
	"github.com/getevo/evo/v2/lib/log"
)

// App wires Redis-backed rate limiting into the application lifecycle.
type App struct{}

func (App) Register() error {
	return nil
}

func (App) Router() error {
	return nil
}

// WhenReady connects after the database is up so rate limit settings can be
// read from it.
func (App) WhenReady() error {
	if err := Initialize(); err != nil {
		log.Error("Failed to connect to Redis: %v", err)
		return err
	}
	LoadRateLimitSettings()
	SubscribeToRateLimitReload()
	return nil
}

func (App) Name() string {
	return "redis"
}

func (App) Shutdown() error {
	return Close()
}

var _ application.Application = (*App)(nil)
