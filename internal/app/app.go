package app

import (
	"context"
	"net/http"

	"github.com/shandysiswandi/totphog/internal/pkg/clock"
	"github.com/shandysiswandi/totphog/internal/pkg/config"
	"github.com/shandysiswandi/totphog/internal/pkg/goroutine"
	"github.com/shandysiswandi/totphog/internal/pkg/instrument"
	"github.com/shandysiswandi/totphog/internal/pkg/messaging"
	"github.com/shandysiswandi/totphog/internal/pkg/otp"
	"github.com/shandysiswandi/totphog/internal/pkg/router"
	"github.com/shandysiswandi/totphog/internal/pkg/storage"
	"github.com/shandysiswandi/totphog/internal/pkg/uid"
	"github.com/shandysiswandi/totphog/internal/pkg/validator"
	"github.com/shandysiswandi/totphog/internal/vault/store"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uuid      uid.StringID
	totp      otp.OTP

	// resources
	store     *store.Store
	messaging messaging.Publisher
	storage   storage.Storage

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initStore()
	app.initStorage()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
