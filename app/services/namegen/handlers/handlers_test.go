package handlers_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ardanlabs/namegen/app/services/namegen/handlers"
	"github.com/ardanlabs/namegen/business/core/session"
	"github.com/ardanlabs/namegen/foundation/events"
	"github.com/ardanlabs/namegen/foundation/namegen"
	"github.com/ardanlabs/namegen/foundation/nameservice"
	"github.com/ardanlabs/namegen/foundation/wallet"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

var programID = solana.MustPublicKeyFromBase58("njCkgAPdDfewLAZmWZE1ckRDGAiPTwvWMouGGNCJkiR")

// ledger keeps user accounts in memory and accepts submitted transactions.
type ledger struct {
	mu        sync.Mutex
	users     map[solana.PublicKey]namegen.Name
	submitted []*solana.Transaction
}

func (l *ledger) ProgramID() solana.PublicKey { return programID }

func (l *ledger) UserPDA(authority solana.PublicKey) (solana.PublicKey, uint8, error) {
	return namegen.UserPDA(programID, authority)
}

func (l *ledger) InitUser(ctx context.Context, signer namegen.Signer) (solana.Signature, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.users[signer.PublicKey()]; exists {
		return solana.Signature{}, namegen.ErrAlreadyInitialized
	}
	l.users[signer.PublicKey()] = namegen.Name{}
	return solana.Signature{1}, nil
}

func (l *ledger) SetName(ctx context.Context, signer namegen.Signer, name string) (solana.Signature, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.users[signer.PublicKey()]; !exists {
		return solana.Signature{}, namegen.ErrAccountNotFound
	}

	n, err := namegen.EncodeName(name)
	if err != nil {
		return solana.Signature{}, err
	}
	l.users[signer.PublicKey()] = n
	return solana.Signature{2}, nil
}

func (l *ledger) ClearName(ctx context.Context, signer namegen.Signer) (solana.Signature, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.users[signer.PublicKey()]; !exists {
		return solana.Signature{}, namegen.ErrAccountNotFound
	}
	l.users[signer.PublicKey()] = namegen.Name{}
	return solana.Signature{3}, nil
}

func (l *ledger) ReadName(ctx context.Context, authority solana.PublicKey) (namegen.UserData, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n, exists := l.users[authority]
	if !exists {
		return namegen.UserData{}, namegen.ErrAccountNotFound
	}
	return namegen.UserData{Owner: authority, Name: n}, nil
}

func (l *ledger) Build(ctx context.Context, payer solana.PublicKey, ixs ...solana.Instruction) (*solana.Transaction, error) {
	return solana.NewTransaction(ixs, solana.Hash{4, 5, 6}, solana.TransactionPayer(payer))
}

func (l *ledger) Submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.submitted = append(l.submitted, tx)
	return tx.Signatures[0], nil
}

type service struct {
	mux    http.Handler
	ledger *ledger
	key    solana.PrivateKey
}

func newService(t *testing.T) service {
	dir := t.TempDir()
	path := filepath.Join(dir, "kennedy.json")

	if _, err := wallet.Generate(path); err != nil {
		t.Fatalf("Should be able to generate a keypair file: %s", err)
	}

	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		t.Fatalf("Should be able to load the keypair file: %s", err)
	}

	ns, err := nameservice.New(dir)
	if err != nil {
		t.Fatalf("Should be able to load the name service: %s", err)
	}

	l := ledger{users: make(map[solana.PublicKey]namegen.Name)}
	evts := events.New()

	sess := session.New(session.Config{
		Ledger:    &l,
		Wallet:    wallet.NewKeypair(path),
		Publisher: evts,
	})

	mux, err := handlers.APIMux(handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      zap.NewNop().Sugar(),
		Session:  sess,
		Ledger:   &l,
		NS:       ns,
		Evts:     evts,
		Cluster:  "localnet",
	})
	if err != nil {
		t.Fatalf("Should be able to construct the mux: %s", err)
	}

	return service{mux: mux, ledger: &l, key: key}
}

func (s service) call(t *testing.T, method string, path string, body any, out any) int {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Should be able to encode the request: %s", err)
		}
	}

	r := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, r)

	if out != nil {
		if err := json.NewDecoder(w.Body).Decode(out); err != nil {
			t.Fatalf("Should be able to decode the response for %s: %s", path, err)
		}
	}

	return w.Code
}

// =============================================================================

func Test_SessionRoutes(t *testing.T) {
	s := newService(t)

	var st session.State
	if code := s.call(t, http.MethodPost, "/v1/session/connect", nil, &st); code != http.StatusOK {
		t.Fatalf("Should be able to connect: %d", code)
	}
	if st.Authority != s.key.PublicKey().String() {
		t.Logf("got: %s", st.Authority)
		t.Logf("exp: %s", s.key.PublicKey())
		t.Fatalf("Should connect the keypair wallet.")
	}

	var er struct {
		Error string `json:"error"`
	}
	if code := s.call(t, http.MethodPost, "/v1/session/read", nil, &er); code != http.StatusNotFound {
		t.Logf("got: %d", code)
		t.Logf("exp: %d", http.StatusNotFound)
		t.Fatalf("Should report the missing account.")
	}

	if code := s.call(t, http.MethodPost, "/v1/session/init", nil, &st); code != http.StatusOK {
		t.Fatalf("Should be able to init: %d", code)
	}

	if code := s.call(t, http.MethodPost, "/v1/session/init", nil, &er); code != http.StatusConflict {
		t.Fatalf("Should not init twice: %d", code)
	}

	if code := s.call(t, http.MethodPost, "/v1/session/save", struct {
		Name string `json:"name"`
	}{Name: "drift-42"}, &st); code != http.StatusOK {
		t.Fatalf("Should be able to save: %d", code)
	}
	if st.OnChain != "drift-42" || st.Status != "Saved." {
		t.Fatalf("Should report the saved name: %+v", st)
	}

	var u struct {
		Name    string `json:"name"`
		PDA     string `json:"pda"`
		OnChain string `json:"onchain"`
		Exists  bool   `json:"exists"`
	}
	if code := s.call(t, http.MethodGet, "/v1/users/"+s.key.PublicKey().String(), nil, &u); code != http.StatusOK {
		t.Fatalf("Should be able to read the user: %d", code)
	}
	if !u.Exists || u.OnChain != "drift-42" || u.Name != "kennedy" || u.PDA != st.PDA {
		t.Fatalf("Should get back the user account: %+v", u)
	}

	if code := s.call(t, http.MethodGet, "/v1/users/not-a-key", nil, &er); code != http.StatusBadRequest {
		t.Fatalf("Should reject an invalid authority: %d", code)
	}

	if code := s.call(t, http.MethodPost, "/v1/session/clear", nil, &st); code != http.StatusOK {
		t.Fatalf("Should be able to clear: %d", code)
	}
	if st.OnChain != "" || st.Status != "Cleared." {
		t.Fatalf("Should report the cleared name: %+v", st)
	}

	if code := s.call(t, http.MethodPost, "/v1/session/disconnect", nil, &st); code != http.StatusOK || st.Connected {
		t.Fatalf("Should be able to disconnect: %d %+v", code, st)
	}

	if code := s.call(t, http.MethodPost, "/v1/session/clear", nil, &er); code != http.StatusPreconditionFailed {
		t.Fatalf("Should require a connected wallet: %d", code)
	}
}

func Test_ExternalWallet(t *testing.T) {
	s := newService(t)
	authority := s.key.PublicKey()

	var built struct {
		PDA         string `json:"pda"`
		Transaction string `json:"transaction"`
		Message     string `json:"message"`
	}
	req := struct {
		Authority string `json:"authority"`
		Name      string `json:"name"`
	}{
		Authority: authority.String(),
		Name:      "nova-7",
	}
	if code := s.call(t, http.MethodPost, "/v1/tx/build/save", req, &built); code != http.StatusOK {
		t.Fatalf("Should be able to build the transaction: %d", code)
	}

	msg, err := base64.StdEncoding.DecodeString(built.Message)
	if err != nil {
		t.Fatalf("Should be able to decode the message: %s", err)
	}

	sig, err := s.key.Sign(msg)
	if err != nil {
		t.Fatalf("Should be able to sign the message: %s", err)
	}

	var submitted struct {
		Signature string `json:"signature"`
	}
	sub := struct {
		Transaction string `json:"transaction"`
		Signature   string `json:"signature"`
	}{
		Transaction: built.Transaction,
		Signature:   sig.String(),
	}
	if code := s.call(t, http.MethodPost, "/v1/tx/submit", sub, &submitted); code != http.StatusOK {
		t.Fatalf("Should be able to submit the transaction: %d", code)
	}
	if submitted.Signature != sig.String() {
		t.Logf("got: %s", submitted.Signature)
		t.Logf("exp: %s", sig)
		t.Fatalf("Should get back the signature.")
	}

	if len(s.ledger.submitted) != 1 {
		t.Fatalf("Should hand one transaction to the ledger: %d", len(s.ledger.submitted))
	}

	tx := s.ledger.submitted[0]
	data := []byte(tx.Message.Instructions[0].Data)
	name := data[8:]
	if got := strings.TrimRight(string(name), "\x00"); got != "nova-7" {
		t.Logf("got: %q", got)
		t.Logf("exp: %q", "nova-7")
		t.Fatalf("Should carry the name in the instruction data.")
	}

	var er struct {
		Error string `json:"error"`
	}
	if code := s.call(t, http.MethodPost, "/v1/tx/build/burn", req, &er); code != http.StatusNotFound {
		t.Fatalf("Should reject an unknown action: %d", code)
	}

	unsigned := struct {
		Transaction string `json:"transaction"`
	}{
		Transaction: built.Transaction,
	}
	if code := s.call(t, http.MethodPost, "/v1/tx/submit", unsigned, &er); code != http.StatusBadRequest {
		t.Fatalf("Should reject an unsigned transaction: %d", code)
	}
}

func Test_ForeignProgram(t *testing.T) {
	s := newService(t)
	payer := s.key.PublicKey()

	ix := solana.NewInstruction(solana.SystemProgramID, solana.AccountMetaSlice{
		solana.Meta(payer).WRITE().SIGNER(),
	}, []byte{2, 0, 0, 0})

	tx, err := solana.NewTransaction([]solana.Instruction{ix}, solana.Hash{7}, solana.TransactionPayer(payer))
	if err != nil {
		t.Fatalf("Should be able to build a transaction: %s", err)
	}

	if _, err := tx.Sign(func(pk solana.PublicKey) *solana.PrivateKey {
		if pk.Equals(payer) {
			return &s.key
		}
		return nil
	}); err != nil {
		t.Fatalf("Should be able to sign the transaction: %s", err)
	}

	data, err := tx.MarshalBinary()
	if err != nil {
		t.Fatalf("Should be able to encode the transaction: %s", err)
	}

	var er struct {
		Error string `json:"error"`
	}
	sub := struct {
		Transaction string `json:"transaction"`
	}{
		Transaction: base64.StdEncoding.EncodeToString(data),
	}
	if code := s.call(t, http.MethodPost, "/v1/tx/submit", sub, &er); code != http.StatusBadRequest {
		t.Fatalf("Should reject a transaction for another program: %d", code)
	}
	if !strings.Contains(er.Error, "instruction targets program") {
		t.Fatalf("Should name the foreign program: %q", er.Error)
	}
	if len(s.ledger.submitted) != 0 {
		t.Fatalf("Should not hand the transaction to the ledger.")
	}
}

func Test_Viewer(t *testing.T) {
	s := newService(t)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("Should be able to load the index page: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), programID.String()) {
		t.Fatalf("Should render the program id into the page.")
	}

	var idl struct {
		Address      string `json:"address"`
		Instructions []struct {
			Name          string `json:"name"`
			Discriminator string `json:"discriminator"`
		} `json:"instructions"`
	}
	if code := s.call(t, http.MethodGet, "/v1/idl", nil, &idl); code != http.StatusOK {
		t.Fatalf("Should be able to get the idl: %d", code)
	}
	if idl.Address != programID.String() || len(idl.Instructions) != 3 {
		t.Fatalf("Should describe the program: %+v", idl)
	}
	for _, ins := range idl.Instructions {
		if ins.Name == namegen.InstructionInitUser && ins.Discriminator != "0x0e33449fed4e9e66" {
			t.Fatalf("Should hex encode the discriminator: %s", ins.Discriminator)
		}
	}
}

func Test_MalformedTransaction(t *testing.T) {
	s := newService(t)

	// A legacy message with no signers, no accounts and no instructions.
	empty := make([]byte, 0, 38)
	empty = append(empty, 0)       // signatures
	empty = append(empty, 0, 0, 0) // header
	empty = append(empty, 0)       // account keys
	empty = append(empty, make([]byte, 32)...)
	empty = append(empty, 0) // instructions

	type table struct {
		name      string
		signature string
	}

	tt := []table{
		{name: "detached", signature: solana.Signature{1}.String()},
		{name: "unsigned"},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			var er struct {
				Error string `json:"error"`
			}
			sub := struct {
				Transaction string `json:"transaction"`
				Signature   string `json:"signature,omitempty"`
			}{
				Transaction: base64.StdEncoding.EncodeToString(empty),
				Signature:   tst.signature,
			}

			if code := s.call(t, http.MethodPost, "/v1/tx/submit", sub, &er); code != http.StatusBadRequest {
				t.Logf("Test %s:\tgot: %d %s", tst.name, code, er.Error)
				t.Logf("Test %s:\texp: %d", tst.name, http.StatusBadRequest)
				t.Fatalf("Test %s:\tShould reject a transaction without signers or instructions.", tst.name)
			}

			if len(s.ledger.submitted) != 0 {
				t.Fatalf("Test %s:\tShould not hand the transaction to the ledger.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_Preflight(t *testing.T) {
	s := newService(t)

	r := httptest.NewRequest(http.MethodOptions, "/v1/tx/submit", nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("Should accept the preflight request: %d", w.Code)
	}

	origins := w.Header().Values("Access-Control-Allow-Origin")
	if len(origins) != 1 || origins[0] != "*" {
		t.Logf("got: %v", origins)
		t.Logf("exp: %v", []string{"*"})
		t.Fatalf("Should set the allowed origin once.")
	}
}
