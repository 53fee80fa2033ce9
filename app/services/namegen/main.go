package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/namegen/app/services/namegen/handlers"
	"github.com/ardanlabs/namegen/business/core/session"
	"github.com/ardanlabs/namegen/business/web/mid"
	"github.com/ardanlabs/namegen/foundation/events"
	"github.com/ardanlabs/namegen/foundation/logger"
	"github.com/ardanlabs/namegen/foundation/namegen"
	"github.com/ardanlabs/namegen/foundation/nameservice"
	"github.com/ardanlabs/namegen/foundation/wallet"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NAMEGEN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	// This is all the configuration for the application and the default values.
	// Configuration values will be passed through the application as individual
	// values.
	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:75s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			APIHost         string        `conf:"default:0.0.0.0:8080"`
			CORSOrigin      string        `conf:"default:*"`
			RateLimit       float64       `conf:"default:2"`
			RateBurst       int           `conf:"default:5"`
		}
		Ledger struct {
			RPC            string        `conf:"default:https://api.devnet.solana.com"`
			Cluster        string        `conf:"default:devnet"`
			ProgramID      string        `conf:"default:njCkgAPdDfewLAZmWZE1ckRDGAiPTwvWMouGGNCJkiR"`
			Commitment     string        `conf:"default:confirmed"`
			PollInterval   time.Duration `conf:"default:500ms"`
			ConfirmTimeout time.Duration `conf:"default:60s"`
		}
		Wallet struct {
			Keypair string `conf:"default:zblock/accounts/id.json"`
			Name    string
		}
		NameService struct {
			Folder string `conf:"default:zblock/accounts/"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "NAMEGEN"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Name Service Support

	// The nameservice package provides name resolution for account addresses.
	// The names come from the keygen file names in the zblock/accounts folder.
	// A missing folder only means there are no names to show.
	ns, err := nameservice.New(cfg.NameService.Folder)
	if err != nil {
		log.Infow("startup", "status", "nameservice", "ERROR", err)
		ns = nameservice.Empty()
	}

	// Logging the accounts for documentation in the logs.
	for account, name := range ns.Copy() {
		log.Infow("startup", "status", "nameservice", "name", name, "account", account)
	}

	// =========================================================================
	// Ledger Support

	programID, err := solana.PublicKeyFromBase58(cfg.Ledger.ProgramID)
	if err != nil {
		return fmt.Errorf("parsing program id: %w", err)
	}

	// The namegen package accepts a function of this signature to allow the
	// application to log. These raw messages are also sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(events.Event{Action: "ledger", Status: s})
	}

	clt, err := namegen.NewClient(namegen.Config{
		RPC:            rpc.New(cfg.Ledger.RPC),
		ProgramID:      programID,
		Commitment:     rpc.CommitmentType(cfg.Ledger.Commitment),
		PollInterval:   cfg.Ledger.PollInterval,
		ConfirmTimeout: cfg.Ledger.ConfirmTimeout,
		EvHandler:      ev,
	})
	if err != nil {
		return fmt.Errorf("constructing ledger client: %w", err)
	}

	// =========================================================================
	// Session Support

	// A named wallet from the name service takes precedence over the
	// configured keypair path.
	keypair := cfg.Wallet.Keypair
	if cfg.Wallet.Name != "" {
		path, exists := ns.Path(cfg.Wallet.Name)
		if !exists {
			return fmt.Errorf("wallet %q not found in %s", cfg.Wallet.Name, cfg.NameService.Folder)
		}
		keypair = path
	}
	log.Infow("startup", "status", "wallet", "keypair", keypair)

	sess := session.New(session.Config{
		Ledger:    clt,
		Wallet:    wallet.NewKeypair(keypair),
		Publisher: evts,
	})

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// The Debug function returns a mux to listen and serve on for all the debug
	// related endpoints. This includes the standard library endpoints.

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log, clt.Health)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start API Service

	log.Infow("startup", "status", "initializing V1 API support")

	// Construct the mux for the API calls.
	apiMux, err := handlers.APIMux(handlers.MuxConfig{
		Shutdown:   shutdown,
		Log:        log,
		Session:    sess,
		Ledger:     clt,
		NS:         ns,
		Evts:       evts,
		Limiter:    mid.NewLimiter(cfg.Web.RateLimit, cfg.Web.RateBurst),
		CORSOrigin: cfg.Web.CORSOrigin,
		Cluster:    cfg.Ledger.Cluster,
	})
	if err != nil {
		return fmt.Errorf("constructing api mux: %w", err)
	}

	// Construct a server to service the requests against the mux.
	api := http.Server{
		Addr:         cfg.Web.APIHost,
		Handler:      apiMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "api router started", "host", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop api service gracefully: %w", err)
		}
	}

	return nil
}
