// Package sessiongrp maintains the group of handlers that drive the wallet
// session and read user accounts.
package sessiongrp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/namegen/business/core/session"
	"github.com/ardanlabs/namegen/business/sys/validate"
	"github.com/ardanlabs/namegen/business/web/errs"
	"github.com/ardanlabs/namegen/foundation/events"
	"github.com/ardanlabs/namegen/foundation/namegen"
	"github.com/ardanlabs/namegen/foundation/nameservice"
	"github.com/ardanlabs/namegen/foundation/web"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gagliardetto/solana-go"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of session endpoints.
type Handlers struct {
	Log     *zap.SugaredLogger
	Session *session.Session
	Ledger  session.Ledger
	NS      *nameservice.NameService
	WS      websocket.Upgrader
	Evts    *events.Events
}

// State returns the current session state.
func (h Handlers) State(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.Session.State(), http.StatusOK)
}

// Connect connects the configured wallet.
func (h Handlers) Connect(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st, err := h.Session.Connect(ctx)
	if err != nil {
		return errs.FromLedger(err)
	}

	h.Log.Infow("connect", "traceid", web.GetTraceID(ctx), "authority", st.Authority, "name", h.lookup(st.Authority))

	return web.Respond(ctx, w, st, http.StatusOK)
}

// Disconnect drops the wallet.
func (h Handlers) Disconnect(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.Session.Disconnect(), http.StatusOK)
}

// Generate produces a new random name.
func (h Handlers) Generate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.Session.Generate(), http.StatusOK)
}

// Init creates the user account for the wallet.
func (h Handlers) Init(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st, err := h.Session.Init(ctx)
	if err != nil {
		return errs.FromLedger(err)
	}

	h.Log.Infow("init", "traceid", web.GetTraceID(ctx), "authority", st.Authority, "sig", st.Signature)

	return web.Respond(ctx, w, st, http.StatusOK)
}

// Save stores the generated name, or the name in the body, on-chain.
func (h Handlers) Save(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req saveRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(req); err != nil {
		return err
	}

	st, err := h.Session.Save(ctx, req.Name)
	if err != nil {
		if errors.Is(err, session.ErrNoName) {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		return errs.FromLedger(err)
	}

	h.Log.Infow("save", "traceid", web.GetTraceID(ctx), "authority", st.Authority, "name", st.OnChain, "sig", st.Signature)

	return web.Respond(ctx, w, st, http.StatusOK)
}

// Read fetches the on-chain name of the wallet.
func (h Handlers) Read(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st, err := h.Session.Read(ctx)
	if err != nil {
		return errs.FromLedger(err)
	}

	return web.Respond(ctx, w, st, http.StatusOK)
}

// Clear zeroes the on-chain name of the wallet.
func (h Handlers) Clear(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st, err := h.Session.Clear(ctx)
	if err != nil {
		return errs.FromLedger(err)
	}

	h.Log.Infow("clear", "traceid", web.GetTraceID(ctx), "authority", st.Authority, "sig", st.Signature)

	return web.Respond(ctx, w, st, http.StatusOK)
}

// User returns the user account for any authority.
func (h Handlers) User(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	param := web.Param(r, "authority")
	if err := validate.CheckPublicKey(param); err != nil {
		return err
	}

	authority, err := solana.PublicKeyFromBase58(param)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("authority: %w", err), http.StatusBadRequest)
	}

	pda, bump, err := h.Ledger.UserPDA(authority)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	u := user{
		Authority: authority.String(),
		Name:      h.NS.Lookup(authority),
		PDA:       pda.String(),
		Bump:      bump,
	}

	ud, err := h.Ledger.ReadName(ctx, authority)
	switch {
	case errors.Is(err, namegen.ErrAccountNotFound):

	case err != nil:
		return errs.FromLedger(err)

	default:
		u.Exists = true
		u.Owner = ud.Owner.String()
		u.OnChain = ud.Name.String()
	}

	return web.Respond(ctx, w, u, http.StatusOK)
}

// IDL returns the program instructions with their discriminators.
func (h Handlers) IDL(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := namegen.LoadIDL()
	if err != nil {
		return err
	}

	disc, err := v.AccountDiscriminator(namegen.AccountUserData)
	if err != nil {
		return err
	}

	resp := programIDL{
		Address:  h.Ledger.ProgramID().String(),
		Name:     v.Metadata.Name,
		Version:  v.Metadata.Version,
		UserData: hexutil.Encode(disc[:]),
	}

	for _, ins := range v.Instructions {
		accounts := make([]string, len(ins.Accounts))
		for i, acc := range ins.Accounts {
			accounts[i] = acc.Name
		}

		resp.Instructions = append(resp.Instructions, instruction{
			Name:          ins.Name,
			Discriminator: hexutil.Encode(ins.Discriminator),
			Accounts:      accounts,
		})
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Events handles a web socket to provide status events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case evt, wd := <-ch:
			if !wd {
				return nil
			}

			data, err := json.Marshal(evt)
			if err != nil {
				return err
			}

			if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

func (h Handlers) lookup(account string) string {
	pk, err := solana.PublicKeyFromBase58(account)
	if err != nil {
		return account
	}
	return h.NS.Lookup(pk)
}
