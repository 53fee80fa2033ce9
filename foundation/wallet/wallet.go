// Package wallet provides the wallet connection used to sign transactions
// on behalf of the authority. A wallet must be connected before it can
// provide a public key or sign.
package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// Set of error variables for the wallet connection.
var (
	ErrNotInstalled = errors.New("wallet is not installed")
	ErrNotConnected = errors.New("wallet is not connected")
	ErrInvalidKey   = errors.New("invalid private key")
)

// Wallet represents the behavior of a wallet that holds the user keys and
// signs on the user's behalf.
type Wallet interface {
	Connect(ctx context.Context) (solana.PublicKey, error)
	Disconnect()
	PublicKey() solana.PublicKey
	SignTransaction(ctx context.Context, tx *solana.Transaction) error
}

// =============================================================================

// Keypair is a wallet backed by a private key. The key is either read from
// a Solana CLI keygen file on connect or provided up front.
type Keypair struct {
	path string
	pre  *solana.PrivateKey

	mu  sync.RWMutex
	key *solana.PrivateKey
}

// NewKeypair constructs a wallet for the keygen file at the path. The file
// is not read until Connect is called.
func NewKeypair(path string) *Keypair {
	return &Keypair{
		path: path,
	}
}

// FromBase58 constructs a wallet from a base58 encoded 64 byte secret key.
func FromBase58(secret string) (*Keypair, error) {
	b, err := base58.Decode(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}

	if len(b) != 64 {
		return nil, fmt.Errorf("%w: got %d bytes, exp 64", ErrInvalidKey, len(b))
	}

	pk := solana.PrivateKey(b)
	return &Keypair{pre: &pk}, nil
}

// Path returns the keygen file backing the wallet, if any.
func (kp *Keypair) Path() string {
	return kp.path
}

// Connect loads the key and returns the public key of the wallet.
func (kp *Keypair) Connect(ctx context.Context) (solana.PublicKey, error) {
	kp.mu.Lock()
	defer kp.mu.Unlock()

	if kp.key != nil {
		return kp.key.PublicKey(), nil
	}

	if kp.pre != nil {
		kp.key = kp.pre
		return kp.key.PublicKey(), nil
	}

	if _, err := os.Stat(kp.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return solana.PublicKey{}, fmt.Errorf("%w: %s", ErrNotInstalled, kp.path)
		}
		return solana.PublicKey{}, fmt.Errorf("stat keypair: %w", err)
	}

	key, err := solana.PrivateKeyFromSolanaKeygenFile(kp.path)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}

	kp.key = &key
	return key.PublicKey(), nil
}

// Disconnect forgets the loaded key.
func (kp *Keypair) Disconnect() {
	kp.mu.Lock()
	defer kp.mu.Unlock()

	kp.key = nil
}

// Connected reports whether the wallet holds a key.
func (kp *Keypair) Connected() bool {
	kp.mu.RLock()
	defer kp.mu.RUnlock()

	return kp.key != nil
}

// PublicKey returns the public key of the connected wallet or the zero key.
func (kp *Keypair) PublicKey() solana.PublicKey {
	kp.mu.RLock()
	defer kp.mu.RUnlock()

	if kp.key == nil {
		return solana.PublicKey{}
	}
	return kp.key.PublicKey()
}

// SignTransaction adds the wallet signature to the transaction.
func (kp *Keypair) SignTransaction(ctx context.Context, tx *solana.Transaction) error {
	kp.mu.RLock()
	defer kp.mu.RUnlock()

	if kp.key == nil {
		return ErrNotConnected
	}

	pub := kp.key.PublicKey()
	getter := func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(pub) {
			return kp.key
		}
		return nil
	}

	if _, err := tx.Sign(getter); err != nil {
		return fmt.Errorf("sign: %w", err)
	}

	return nil
}

// Export writes the connected key to the path in the keygen format.
func (kp *Keypair) Export(path string) error {
	kp.mu.RLock()
	defer kp.mu.RUnlock()

	if kp.key == nil {
		return ErrNotConnected
	}

	return Save(path, *kp.key)
}

// =============================================================================

// Generate creates a new private key and writes it to the path in the
// Solana CLI keygen format.
func Generate(path string) (solana.PublicKey, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("generate key: %w", err)
	}

	if err := Save(path, key); err != nil {
		return solana.PublicKey{}, err
	}

	return key.PublicKey(), nil
}

// Save writes the private key to the path in the Solana CLI keygen format,
// a JSON array of the 64 secret key bytes. Existing files are not replaced.
func Save(path string, key solana.PrivateKey) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create key folder: %w", err)
	}

	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}

	data, err := json.Marshal(ints)
	if err != nil {
		return fmt.Errorf("marshal key: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create key file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}

	return nil
}
