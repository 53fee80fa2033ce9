// Package txgrp maintains the group of handlers used by external wallets.
// An external wallet, such as a browser extension, asks for an unsigned
// transaction, signs it on its own and hands it back for submission.
package txgrp

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/ardanlabs/namegen/business/sys/metrics"
	"github.com/ardanlabs/namegen/business/sys/validate"
	"github.com/ardanlabs/namegen/business/web/errs"
	"github.com/ardanlabs/namegen/foundation/events"
	"github.com/ardanlabs/namegen/foundation/namegen"
	"github.com/ardanlabs/namegen/foundation/web"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// Ledger represents the transaction calls the handlers need.
type Ledger interface {
	ProgramID() solana.PublicKey
	UserPDA(authority solana.PublicKey) (solana.PublicKey, uint8, error)
	Build(ctx context.Context, payer solana.PublicKey, ixs ...solana.Instruction) (*solana.Transaction, error)
	Submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}

// Handlers manages the set of transaction endpoints.
type Handlers struct {
	Log    *zap.SugaredLogger
	Ledger Ledger
	Evts   *events.Events
}

// Build constructs an unsigned transaction for the action.
func (h Handlers) Build(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req buildRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(req); err != nil {
		return err
	}

	authority, err := solana.PublicKeyFromBase58(req.Authority)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("authority: %w", err), http.StatusBadRequest)
	}

	action := web.Param(r, "action")

	var ix solana.Instruction
	switch action {
	case "init":
		ix, err = namegen.NewInitUserInstruction(h.Ledger.ProgramID(), authority)

	case "save":
		var n namegen.Name
		if n, err = namegen.EncodeName(req.Name); err == nil {
			ix, err = namegen.NewSetNameInstruction(h.Ledger.ProgramID(), authority, n)
		}

	case "clear":
		ix, err = namegen.NewClearNameInstruction(h.Ledger.ProgramID(), authority)

	default:
		return errs.NewTrusted(fmt.Errorf("unknown action %q", action), http.StatusNotFound)
	}

	if err != nil {
		return errs.FromLedger(err)
	}

	tx, err := h.Ledger.Build(ctx, authority, ix)
	if err != nil {
		return errs.FromLedger(err)
	}

	// The wire form of an unsigned transaction carries zeroed signatures.
	tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)

	data, err := tx.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal transaction: %w", err)
	}

	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	pda, _, err := h.Ledger.UserPDA(authority)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := buildResponse{
		Action:      action,
		Authority:   authority.String(),
		PDA:         pda.String(),
		Blockhash:   tx.Message.RecentBlockhash.String(),
		Transaction: base64.StdEncoding.EncodeToString(data),
		Message:     base64.StdEncoding.EncodeToString(msg),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Submit sends a transaction signed by an external wallet and waits for it
// to be confirmed.
func (h Handlers) Submit(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req submitRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(req); err != nil {
		return err
	}

	data, err := base64.StdEncoding.DecodeString(req.Transaction)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("transaction: %w", err), http.StatusBadRequest)
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(data))
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("transaction: %w", err), http.StatusBadRequest)
	}

	hdr := tx.Message.Header
	if hdr.NumRequiredSignatures == 0 || len(tx.Message.AccountKeys) < int(hdr.NumRequiredSignatures) || len(tx.Message.Instructions) == 0 {
		return errs.NewTrusted(errors.New("transaction needs a signer and an instruction"), http.StatusBadRequest)
	}

	// A wallet that only signs the message returns a detached signature
	// for the fee payer.
	if req.Signature != "" {
		sig, err := solana.SignatureFromBase58(req.Signature)
		if err != nil {
			return errs.NewTrusted(fmt.Errorf("signature: %w", err), http.StatusBadRequest)
		}
		if len(tx.Signatures) == 0 {
			tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)
		}
		tx.Signatures[0] = sig
	}

	if err := tx.VerifySignatures(); err != nil {
		return errs.NewTrusted(fmt.Errorf("verify signatures: %w", err), http.StatusBadRequest)
	}

	if err := h.checkProgram(tx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	sig, err := h.Ledger.Submit(ctx, tx)
	if err != nil {
		return errs.FromLedger(err)
	}

	metrics.AddTransactions(ctx)

	payer := tx.Message.AccountKeys[0].String()
	h.Log.Infow("submit", "traceid", web.GetTraceID(ctx), "payer", payer, "sig", sig)

	h.Evts.Send(events.Event{
		Action:    "submit",
		Status:    "Transaction confirmed.",
		Authority: payer,
		Signature: sig.String(),
	})

	resp := submitResponse{
		Signature: sig.String(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// checkProgram only accepts transactions that call the namegen program.
func (h Handlers) checkProgram(tx *solana.Transaction) error {
	programID := h.Ledger.ProgramID()

	for _, ci := range tx.Message.Instructions {
		pid, err := tx.Message.Program(ci.ProgramIDIndex)
		if err != nil {
			return err
		}
		if !pid.Equals(programID) {
			return fmt.Errorf("instruction targets program %s", pid)
		}
	}

	return nil
}
