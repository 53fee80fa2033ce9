// Package session maintains the state of a user interacting with the
// namegen program through a wallet: the connected authority, the derived
// user account, the generated and on-chain names and a status line.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/ardanlabs/namegen/foundation/events"
	"github.com/ardanlabs/namegen/foundation/namegen"
	"github.com/ardanlabs/namegen/foundation/wallet"
	"github.com/gagliardetto/solana-go"
)

// ErrNoName is returned when saving without a generated name.
var ErrNoName = errors.New("generate a name first")

// Set of actions a session supports.
const (
	ActionConnect    = "connect"
	ActionDisconnect = "disconnect"
	ActionGenerate   = "generate"
	ActionInit       = "init"
	ActionSave       = "save"
	ActionRead       = "read"
	ActionClear      = "clear"
)

// Ledger represents the program operations a session performs.
type Ledger interface {
	ProgramID() solana.PublicKey
	UserPDA(authority solana.PublicKey) (solana.PublicKey, uint8, error)
	InitUser(ctx context.Context, signer namegen.Signer) (solana.Signature, error)
	SetName(ctx context.Context, signer namegen.Signer, name string) (solana.Signature, error)
	ClearName(ctx context.Context, signer namegen.Signer) (solana.Signature, error)
	ReadName(ctx context.Context, authority solana.PublicKey) (namegen.UserData, error)
}

// Publisher represents the ability to broadcast status events.
type Publisher interface {
	Send(e events.Event)
}

// State is a snapshot of the session.
type State struct {
	ProgramID string `json:"program_id"`
	Connected bool   `json:"connected"`
	Authority string `json:"authority,omitempty"`
	PDA       string `json:"pda,omitempty"`
	Generated string `json:"generated"`
	OnChain   string `json:"onchain"`
	Signature string `json:"signature,omitempty"`
	Status    string `json:"status"`
}

// Config represents the mandatory settings for a session.
type Config struct {
	Ledger    Ledger
	Wallet    wallet.Wallet
	Publisher Publisher
	Rand      *rand.Rand
}

// Session manages the state for one wallet. Actions are serialized and
// the state can be read while an action waits on the ledger.
type Session struct {
	act    sync.Mutex
	ledger Ledger
	wallet wallet.Wallet
	pub    Publisher
	rand   *rand.Rand

	mu    sync.RWMutex
	state State
}

// New constructs a session that is not yet connected.
func New(cfg Config) *Session {
	rnd := cfg.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Session{
		ledger: cfg.Ledger,
		wallet: cfg.Wallet,
		pub:    cfg.Publisher,
		rand:   rnd,
		state: State{
			ProgramID: cfg.Ledger.ProgramID().String(),
		},
	}
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

// =============================================================================

// Connect connects the wallet and derives the user account address.
func (s *Session) Connect(ctx context.Context) (State, error) {
	s.act.Lock()
	defer s.act.Unlock()

	s.setStatus(ActionConnect, "Connecting wallet...")

	authority, err := s.wallet.Connect(ctx)
	if err != nil {
		return s.fail(ActionConnect, "Connect", err)
	}

	pda, _, err := s.ledger.UserPDA(authority)
	if err != nil {
		s.wallet.Disconnect()
		return s.fail(ActionConnect, "Connect", err)
	}

	return s.update(ActionConnect, "Wallet connected.", func(st *State) {
		st.Connected = true
		st.Authority = authority.String()
		st.PDA = pda.String()
	}), nil
}

// Disconnect drops the wallet and clears the state tied to it.
func (s *Session) Disconnect() State {
	s.act.Lock()
	defer s.act.Unlock()

	s.wallet.Disconnect()

	return s.update(ActionDisconnect, "Wallet disconnected.", func(st *State) {
		*st = State{
			ProgramID: st.ProgramID,
			Generated: st.Generated,
		}
	})
}

// Generate produces a new random name to be saved.
func (s *Session) Generate() State {
	s.act.Lock()
	defer s.act.Unlock()

	name := namegen.Generate(s.rand)

	return s.update(ActionGenerate, fmt.Sprintf("Generated %s.", name), func(st *State) {
		st.Generated = name
	})
}

// Init creates the user account for the connected wallet.
func (s *Session) Init(ctx context.Context) (State, error) {
	s.act.Lock()
	defer s.act.Unlock()

	if err := s.connected(); err != nil {
		return s.fail(ActionInit, "Init", err)
	}

	s.setStatus(ActionInit, "Initializing PDA...")

	sig, err := s.ledger.InitUser(ctx, s.wallet)
	if err != nil {
		return s.fail(ActionInit, "Init", err)
	}

	return s.update(ActionInit, "PDA initialized.", func(st *State) {
		st.Signature = sig.String()
	}), nil
}

// Save stores the generated name on-chain. A non empty name replaces the
// generated one first once it is known to be valid.
func (s *Session) Save(ctx context.Context, name string) (State, error) {
	s.act.Lock()
	defer s.act.Unlock()

	if name != "" {
		if _, err := namegen.EncodeName(name); err != nil {
			return s.fail(ActionSave, "Save", err)
		}
		s.update("", "", func(st *State) { st.Generated = name })
	}

	name = s.State().Generated
	if name == "" {
		s.setStatus(ActionSave, "Generate a name first.")
		return s.State(), ErrNoName
	}

	if err := s.connected(); err != nil {
		return s.fail(ActionSave, "Save", err)
	}

	s.setStatus(ActionSave, "Saving name on-chain...")

	sig, err := s.ledger.SetName(ctx, s.wallet, name)
	if err != nil {
		return s.fail(ActionSave, "Save", err)
	}

	n, err := namegen.EncodeName(name)
	if err != nil {
		return s.fail(ActionSave, "Save", err)
	}

	return s.update(ActionSave, "Saved.", func(st *State) {
		st.OnChain = n.String()
		st.Signature = sig.String()
	}), nil
}

// Read fetches the on-chain name of the connected wallet.
func (s *Session) Read(ctx context.Context) (State, error) {
	s.act.Lock()
	defer s.act.Unlock()

	if err := s.connected(); err != nil {
		return s.fail(ActionRead, "Read", err)
	}

	s.setStatus(ActionRead, "Reading on-chain...")

	ud, err := s.ledger.ReadName(ctx, s.wallet.PublicKey())
	if err != nil {
		s.update("", "", func(st *State) { st.OnChain = "" })
		return s.fail(ActionRead, "Read", err)
	}

	return s.update(ActionRead, "Read OK.", func(st *State) {
		st.OnChain = ud.Name.String()
	}), nil
}

// Clear zeroes the on-chain name of the connected wallet.
func (s *Session) Clear(ctx context.Context) (State, error) {
	s.act.Lock()
	defer s.act.Unlock()

	if err := s.connected(); err != nil {
		return s.fail(ActionClear, "Clear", err)
	}

	s.setStatus(ActionClear, "Clearing name...")

	sig, err := s.ledger.ClearName(ctx, s.wallet)
	if err != nil {
		return s.fail(ActionClear, "Clear", err)
	}

	return s.update(ActionClear, "Cleared.", func(st *State) {
		st.OnChain = ""
		st.Signature = sig.String()
	}), nil
}

// =============================================================================

// connected returns an error when the wallet has not been connected
// through this session.
func (s *Session) connected() error {
	if !s.State().Connected {
		return wallet.ErrNotConnected
	}
	return nil
}

// fail records the error as the status of the action. A missing user
// account gets the hint to initialize first.
func (s *Session) fail(action string, label string, err error) (State, error) {
	status := fmt.Sprintf("%s error: %s", label, err)
	if errors.Is(err, namegen.ErrAccountNotFound) {
		status = "No account. Init first."
	}

	st := s.apply(nil, status)
	s.publish(action, st, true)

	return st, err
}

// setStatus records a status line and publishes it.
func (s *Session) setStatus(action string, status string) {
	s.update(action, status, nil)
}

// update applies the change and the status under the state lock and
// publishes the result. An empty action changes the state silently.
func (s *Session) update(action string, status string, fn func(st *State)) State {
	st := s.apply(fn, status)
	if action != "" {
		s.publish(action, st, false)
	}
	return st
}

func (s *Session) apply(fn func(st *State), status string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fn != nil {
		fn(&s.state)
	}
	if status != "" {
		s.state.Status = status
	}

	return s.state
}

func (s *Session) publish(action string, st State, failed bool) {
	if s.pub == nil {
		return
	}

	s.pub.Send(events.Event{
		Action:    action,
		Status:    st.Status,
		Authority: st.Authority,
		Signature: st.Signature,
		Failed:    failed,
	})
}
