package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/totphog/internal/vault"
)

func (a *App) initModules() {
	if err := vault.New(vault.Dependency{
		Store:      a.store,
		Goroutine:  a.goroutine,
		Router:     a.router,
		Messaging:  a.messaging,
		Storage:    a.storage,
		Config:     a.config,
		Instrument: a.ins,
		Clock:      a.clock,
		Totp:       a.totp,
		Validator:  a.validator,
	}); err != nil {
		slog.Error("failed to init module vault", "error", err)
		os.Exit(1)
	}
}
