// Package namegen provides a client for the namegen on-chain program. The
// client derives the user account address, encodes instructions and decodes
// the user account. All state transitions are performed by the program.
package namegen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// RPC represents the set of ledger calls the client needs. The concrete
// *rpc.Client from solana-go implements this interface.
type RPC interface {
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error)
	SendTransactionWithOpts(ctx context.Context, transaction *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	RequestAirdrop(ctx context.Context, account solana.PublicKey, lamports uint64, commitment rpc.CommitmentType) (solana.Signature, error)
	GetHealth(ctx context.Context) (string, error)
}

// Signer represents a wallet that can sign transactions on behalf of the
// authority that owns the user account.
type Signer interface {
	PublicKey() solana.PublicKey
	SignTransaction(ctx context.Context, tx *solana.Transaction) error
}

// EventHandler defines a function that is called when events occur in the
// processing of ledger calls.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to construct a client.
type Config struct {
	RPC            RPC
	ProgramID      solana.PublicKey
	Commitment     rpc.CommitmentType
	PollInterval   time.Duration
	ConfirmTimeout time.Duration
	EvHandler      EventHandler
}

// Client manages the calls against the namegen program.
type Client struct {
	rpc            RPC
	programID      solana.PublicKey
	commitment     rpc.CommitmentType
	pollInterval   time.Duration
	confirmTimeout time.Duration
	evHandler      EventHandler
}

// NewClient constructs a client for the configured program.
func NewClient(cfg Config) (*Client, error) {
	if cfg.RPC == nil {
		return nil, errors.New("rpc client is required")
	}

	if cfg.ProgramID.IsZero() {
		v, err := LoadIDL()
		if err != nil {
			return nil, err
		}

		pid, err := solana.PublicKeyFromBase58(v.Address)
		if err != nil {
			return nil, fmt.Errorf("idl program address: %w", err)
		}
		cfg.ProgramID = pid
	}

	if cfg.Commitment == "" {
		cfg.Commitment = rpc.CommitmentConfirmed
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = 60 * time.Second
	}

	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	clt := Client{
		rpc:            cfg.RPC,
		programID:      cfg.ProgramID,
		commitment:     cfg.Commitment,
		pollInterval:   cfg.PollInterval,
		confirmTimeout: cfg.ConfirmTimeout,
		evHandler:      ev,
	}

	return &clt, nil
}

// ProgramID returns the program the client is bound to.
func (clt *Client) ProgramID() solana.PublicKey {
	return clt.programID
}

// Commitment returns the commitment level used for queries and confirmations.
func (clt *Client) Commitment() rpc.CommitmentType {
	return clt.commitment
}

// UserPDA derives the user account address for the authority.
func (clt *Client) UserPDA(authority solana.PublicKey) (solana.PublicKey, uint8, error) {
	return UserPDA(clt.programID, authority)
}

// =============================================================================

// InitUser creates the user account for the signer.
func (clt *Client) InitUser(ctx context.Context, signer Signer) (solana.Signature, error) {
	ix, err := NewInitUserInstruction(clt.programID, signer.PublicKey())
	if err != nil {
		return solana.Signature{}, err
	}

	sig, err := clt.execute(ctx, signer, ix)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("init_user: %w", err)
	}

	return sig, nil
}

// SetName stores the name in the user account of the signer.
func (clt *Client) SetName(ctx context.Context, signer Signer, name string) (solana.Signature, error) {
	n, err := EncodeName(name)
	if err != nil {
		return solana.Signature{}, err
	}

	if _, err := clt.ReadName(ctx, signer.PublicKey()); err != nil {
		return solana.Signature{}, err
	}

	ix, err := NewSetNameInstruction(clt.programID, signer.PublicKey(), n)
	if err != nil {
		return solana.Signature{}, err
	}

	sig, err := clt.execute(ctx, signer, ix)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("set_name: %w", err)
	}

	return sig, nil
}

// ClearName zeroes the name in the user account of the signer.
func (clt *Client) ClearName(ctx context.Context, signer Signer) (solana.Signature, error) {
	if _, err := clt.ReadName(ctx, signer.PublicKey()); err != nil {
		return solana.Signature{}, err
	}

	ix, err := NewClearNameInstruction(clt.programID, signer.PublicKey())
	if err != nil {
		return solana.Signature{}, err
	}

	sig, err := clt.execute(ctx, signer, ix)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("clear_name: %w", err)
	}

	return sig, nil
}

// ReadName fetches and decodes the user account of the authority.
func (clt *Client) ReadName(ctx context.Context, authority solana.PublicKey) (UserData, error) {
	pda, _, err := clt.UserPDA(authority)
	if err != nil {
		return UserData{}, err
	}

	opts := rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: clt.commitment,
	}

	out, err := clt.rpc.GetAccountInfoWithOpts(ctx, pda, &opts)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return UserData{}, ErrAccountNotFound
		}
		return UserData{}, fmt.Errorf("get account %s: %w", pda, err)
	}

	if out == nil || out.Value == nil || out.Value.Data == nil {
		return UserData{}, ErrAccountNotFound
	}

	if !out.Value.Owner.Equals(clt.programID) {
		return UserData{}, fmt.Errorf("%w: owner %s", ErrInvalidAccountOwner, out.Value.Owner)
	}

	return DecodeUserData(out.Value.Data.GetBinary())
}

// Balance returns the lamports held by the account.
func (clt *Client) Balance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	out, err := clt.rpc.GetBalance(ctx, account, clt.commitment)
	if err != nil {
		return 0, fmt.Errorf("get balance %s: %w", account, err)
	}

	return out.Value, nil
}

// Airdrop requests lamports for the account on clusters that support it
// and waits for the transfer to be confirmed.
func (clt *Client) Airdrop(ctx context.Context, account solana.PublicKey, lamports uint64) (solana.Signature, error) {
	sig, err := clt.rpc.RequestAirdrop(ctx, account, lamports, clt.commitment)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("request airdrop: %w", err)
	}

	if err := clt.confirm(ctx, sig); err != nil {
		return solana.Signature{}, err
	}

	return sig, nil
}

// Health returns an error when the ledger node does not report itself healthy.
func (clt *Client) Health(ctx context.Context) error {
	status, err := clt.rpc.GetHealth(ctx)
	if err != nil {
		return fmt.Errorf("get health: %w", err)
	}

	if status != rpc.HealthOk {
		return fmt.Errorf("node health: %s", status)
	}

	return nil
}

// =============================================================================

// Build constructs an unsigned transaction for the instructions with the
// payer as the fee payer.
func (clt *Client) Build(ctx context.Context, payer solana.PublicKey, ixs ...solana.Instruction) (*solana.Transaction, error) {
	recent, err := clt.rpc.GetLatestBlockhash(ctx, clt.commitment)
	if err != nil {
		return nil, fmt.Errorf("get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(ixs, recent.Value.Blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, fmt.Errorf("new transaction: %w", err)
	}

	return tx, nil
}

// Submit sends the signed transaction and waits for it to reach the
// configured commitment.
func (clt *Client) Submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	opts := rpc.TransactionOpts{
		PreflightCommitment: clt.commitment,
	}

	sig, err := clt.rpc.SendTransactionWithOpts(ctx, tx, opts)
	if err != nil {
		return solana.Signature{}, classify(fmt.Errorf("send transaction: %w", err))
	}

	clt.evHandler("namegen: submit: sent: sig[%s]", sig)

	if err := clt.confirm(ctx, sig); err != nil {
		return sig, classify(err)
	}

	clt.evHandler("namegen: submit: confirmed: sig[%s] commitment[%s]", sig, clt.commitment)

	return sig, nil
}

// execute builds a transaction for the instruction, has the signer sign it
// and submits it.
func (clt *Client) execute(ctx context.Context, signer Signer, ix solana.Instruction) (solana.Signature, error) {
	tx, err := clt.Build(ctx, signer.PublicKey(), ix)
	if err != nil {
		return solana.Signature{}, err
	}

	if err := signer.SignTransaction(ctx, tx); err != nil {
		return solana.Signature{}, fmt.Errorf("sign transaction: %w", err)
	}

	return clt.Submit(ctx, tx)
}

// confirm polls the signature status until the transaction reaches the
// configured commitment or fails.
func (clt *Client) confirm(ctx context.Context, sig solana.Signature) error {
	ticker := time.NewTicker(clt.pollInterval)
	defer ticker.Stop()

	timeout := time.NewTimer(clt.confirmTimeout)
	defer timeout.Stop()

	for {
		out, err := clt.rpc.GetSignatureStatuses(ctx, false, sig)
		switch {
		case err != nil:
			clt.evHandler("namegen: confirm: sig[%s] ERROR[%s]", sig, err)

		case out != nil && len(out.Value) > 0 && out.Value[0] != nil:
			status := out.Value[0]
			if status.Err != nil {
				return &TxError{Signature: sig.String(), Err: status.Err}
			}
			if reached(status.ConfirmationStatus, clt.commitment) {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout.C:
			return fmt.Errorf("%w: sig[%s]", ErrConfirmTimeout, sig)
		case <-ticker.C:
		}
	}
}

// reached reports whether the status satisfies the commitment level.
func reached(status rpc.ConfirmationStatusType, commitment rpc.CommitmentType) bool {
	rank := map[string]int{
		string(rpc.ConfirmationStatusProcessed): 1,
		string(rpc.ConfirmationStatusConfirmed): 2,
		string(rpc.ConfirmationStatusFinalized): 3,
	}

	want, exists := rank[string(commitment)]
	if !exists {
		want = rank[string(rpc.ConfirmationStatusConfirmed)]
	}

	return rank[string(status)] >= want
}
