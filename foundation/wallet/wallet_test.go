package wallet_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/namegen/foundation/wallet"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

func Test_GenerateConnect(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "accounts", "id.json")

	pub, err := wallet.Generate(path)
	if err != nil {
		t.Fatalf("Should be able to generate a keypair file: %s", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Should be able to stat the keypair file: %s", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("Should write the keypair file owner only: %v", info.Mode().Perm())
	}

	if _, err := wallet.Generate(path); err == nil {
		t.Fatalf("Should not replace an existing keypair file.")
	}

	w := wallet.NewKeypair(path)
	if w.Connected() {
		t.Fatalf("Should not be connected before connect.")
	}

	got, err := w.Connect(ctx)
	if err != nil {
		t.Fatalf("Should be able to connect: %s", err)
	}

	if !got.Equals(pub) || !w.PublicKey().Equals(pub) {
		t.Logf("got: %s", got)
		t.Logf("exp: %s", pub)
		t.Fatalf("Should get back the generated public key.")
	}

	w.Disconnect()
	if !w.PublicKey().IsZero() {
		t.Fatalf("Should forget the key on disconnect.")
	}
}

func Test_NotInstalled(t *testing.T) {
	w := wallet.NewKeypair(filepath.Join(t.TempDir(), "missing.json"))

	_, err := w.Connect(context.Background())
	if !errors.Is(err, wallet.ErrNotInstalled) {
		t.Logf("got: %v", err)
		t.Logf("exp: %v", wallet.ErrNotInstalled)
		t.Fatalf("Should report the wallet as not installed.")
	}
}

func Test_SignTransaction(t *testing.T) {
	ctx := context.Background()

	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	w, err := wallet.FromBase58(base58.Encode(key))
	if err != nil {
		t.Fatalf("Should be able to import the key: %s", err)
	}

	ix := solana.NewInstruction(
		solana.SystemProgramID,
		solana.AccountMetaSlice{solana.Meta(key.PublicKey()).WRITE().SIGNER()},
		[]byte{1},
	)

	tx, err := solana.NewTransaction([]solana.Instruction{ix}, solana.Hash{7}, solana.TransactionPayer(key.PublicKey()))
	if err != nil {
		t.Fatalf("Should be able to build a transaction: %s", err)
	}

	if err := w.SignTransaction(ctx, tx); !errors.Is(err, wallet.ErrNotConnected) {
		t.Fatalf("Should not sign before connect: %v", err)
	}

	if _, err := w.Connect(ctx); err != nil {
		t.Fatalf("Should be able to connect: %s", err)
	}

	if err := w.SignTransaction(ctx, tx); err != nil {
		t.Fatalf("Should be able to sign: %s", err)
	}

	if err := tx.VerifySignatures(); err != nil {
		t.Fatalf("Should produce a valid signature: %s", err)
	}
}

func Test_FromBase58Invalid(t *testing.T) {
	if _, err := wallet.FromBase58(base58.Encode([]byte{1, 2, 3})); !errors.Is(err, wallet.ErrInvalidKey) {
		t.Fatalf("Should reject a short key: %v", err)
	}

	if _, err := wallet.FromBase58("0OIl"); !errors.Is(err, wallet.ErrInvalidKey) {
		t.Fatalf("Should reject bad base58: %v", err)
	}
}

func Test_ImportExport(t *testing.T) {
	ctx := context.Background()

	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	kp, err := wallet.FromBase58(key.String())
	if err != nil {
		t.Fatalf("Should be able to import the secret: %s", err)
	}

	path := filepath.Join(t.TempDir(), "imported.json")
	if err := kp.Export(path); !errors.Is(err, wallet.ErrNotConnected) {
		t.Fatalf("Should not export before connect: %v", err)
	}

	if _, err := kp.Connect(ctx); err != nil {
		t.Fatalf("Should be able to connect: %s", err)
	}

	if err := kp.Export(path); err != nil {
		t.Fatalf("Should be able to export the key: %s", err)
	}

	pk, err := wallet.NewKeypair(path).Connect(ctx)
	if err != nil {
		t.Fatalf("Should be able to connect to the exported file: %s", err)
	}

	if !pk.Equals(key.PublicKey()) {
		t.Logf("got: %s", pk)
		t.Logf("exp: %s", key.PublicKey())
		t.Fatalf("Should get back the imported account.")
	}

	if err := kp.Export(path); err == nil {
		t.Fatalf("Should not replace an existing key file.")
	}
}
