// Package handlers manages the different versions of the API.
package handlers

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"

	"github.com/ardanlabs/namegen/app/services/namegen/handlers/debug/checkgrp"
	"github.com/ardanlabs/namegen/app/services/namegen/handlers/ui"
	v1 "github.com/ardanlabs/namegen/app/services/namegen/handlers/v1"
	"github.com/ardanlabs/namegen/business/core/session"
	"github.com/ardanlabs/namegen/business/web/mid"
	"github.com/ardanlabs/namegen/foundation/events"
	"github.com/ardanlabs/namegen/foundation/nameservice"
	"github.com/ardanlabs/namegen/foundation/web"
	"go.uber.org/zap"
)

// MuxConfig contains all the mandatory systems required by handlers.
type MuxConfig struct {
	Shutdown   chan os.Signal
	Log        *zap.SugaredLogger
	Session    *session.Session
	Ledger     v1.Ledger
	NS         *nameservice.NameService
	Evts       *events.Events
	Limiter    *mid.Limiter
	CORSOrigin string
	Cluster    string
}

// APIMux constructs a http.Handler with all application routes defined.
func APIMux(cfg MuxConfig) (http.Handler, error) {
	origin := cfg.CORSOrigin
	if origin == "" {
		origin = "*"
	}

	// Construct the web.App which holds all routes as well as common Middleware.
	app := web.NewApp(
		cfg.Shutdown,
		mid.Logger(cfg.Log),
		mid.Errors(cfg.Log),
		mid.Metrics(),
		mid.Cors(origin),
		mid.Panics(),
	)

	// Accept CORS 'OPTIONS' preflight requests so a browser wallet page
	// hosted elsewhere can build and submit transactions.
	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return nil
	}
	app.Handle(http.MethodOptions, "", "/*", h)

	// Load the v1 routes.
	v1.Routes(app, v1.Config{
		Log:     cfg.Log,
		Session: cfg.Session,
		Ledger:  cfg.Ledger,
		NS:      cfg.NS,
		Evts:    cfg.Evts,
		Limiter: cfg.Limiter,
	})

	// Register the viewer page and its assets.
	ugh, err := ui.New(ui.Page{
		Title:     "Name Generator",
		ProgramID: cfg.Ledger.ProgramID().String(),
		Cluster:   cfg.Cluster,
	})
	if err != nil {
		return nil, fmt.Errorf("loading viewer: %w", err)
	}
	app.Handle(http.MethodGet, "", "/", ugh.Index)
	app.Handle(http.MethodGet, "", "/assets/*", ugh.Assets)

	return app, nil
}

// DebugStandardLibraryMux registers all the debug routes from the standard library
// into a new mux bypassing the use of the DefaultServerMux. Using the
// DefaultServerMux would be a security risk since a dependency could inject a
// handler into our service without us knowing it.
func DebugStandardLibraryMux() *http.ServeMux {
	mux := http.NewServeMux()

	// Register all the standard library debug endpoints.
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/vars", expvar.Handler())

	return mux
}

// DebugMux registers all the debug standard library routes and then custom
// debug application routes for the service. The readiness check asks the
// cluster node for its health.
func DebugMux(build string, log *zap.SugaredLogger, health func(ctx context.Context) error) http.Handler {
	mux := DebugStandardLibraryMux()

	// Register debug check endpoints.
	cgh := checkgrp.Handlers{
		Build:  build,
		Log:    log,
		Health: health,
	}
	mux.HandleFunc("/debug/readiness", cgh.Readiness)
	mux.HandleFunc("/debug/liveness", cgh.Liveness)

	return mux
}
