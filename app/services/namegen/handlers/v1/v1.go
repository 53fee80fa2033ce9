// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/namegen/app/services/namegen/handlers/v1/sessiongrp"
	"github.com/ardanlabs/namegen/app/services/namegen/handlers/v1/txgrp"
	"github.com/ardanlabs/namegen/business/core/session"
	"github.com/ardanlabs/namegen/business/web/mid"
	"github.com/ardanlabs/namegen/foundation/events"
	"github.com/ardanlabs/namegen/foundation/nameservice"
	"github.com/ardanlabs/namegen/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Ledger represents the program calls the routes need.
type Ledger interface {
	session.Ledger
	txgrp.Ledger
}

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log     *zap.SugaredLogger
	Session *session.Session
	Ledger  Ledger
	NS      *nameservice.NameService
	Evts    *events.Events
	Limiter *mid.Limiter
}

// Routes binds all the version 1 routes.
func Routes(app *web.App, cfg Config) {
	sgh := sessiongrp.Handlers{
		Log:     cfg.Log,
		Session: cfg.Session,
		Ledger:  cfg.Ledger,
		NS:      cfg.NS,
		WS:      websocket.Upgrader{},
		Evts:    cfg.Evts,
	}

	// Calls that send transactions share the per client limiter.
	rl := mid.RateLimit(cfg.Limiter)

	app.Handle(http.MethodGet, version, "/session", sgh.State)
	app.Handle(http.MethodPost, version, "/session/connect", sgh.Connect)
	app.Handle(http.MethodPost, version, "/session/disconnect", sgh.Disconnect)
	app.Handle(http.MethodPost, version, "/session/generate", sgh.Generate)
	app.Handle(http.MethodPost, version, "/session/init", sgh.Init, rl)
	app.Handle(http.MethodPost, version, "/session/save", sgh.Save, rl)
	app.Handle(http.MethodPost, version, "/session/read", sgh.Read)
	app.Handle(http.MethodPost, version, "/session/clear", sgh.Clear, rl)
	app.Handle(http.MethodGet, version, "/users/:authority", sgh.User)
	app.Handle(http.MethodGet, version, "/idl", sgh.IDL)
	app.Handle(http.MethodGet, version, "/events", sgh.Events)

	tgh := txgrp.Handlers{
		Log:    cfg.Log,
		Ledger: cfg.Ledger,
		Evts:   cfg.Evts,
	}

	app.Handle(http.MethodPost, version, "/tx/build/:action", tgh.Build)
	app.Handle(http.MethodPost, version, "/tx/submit", tgh.Submit, rl)
}
