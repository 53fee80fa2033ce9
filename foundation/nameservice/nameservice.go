// Package nameservice reads a folder of Solana keygen files and creates a
// name service lookup for the wallet accounts.
package nameservice

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// keyExtension is the file extension of keygen files.
const keyExtension = ".json"

// NameService maintains a map of accounts for name lookup.
type NameService struct {
	accounts map[solana.PublicKey]string
	paths    map[string]string
}

// New constructs a name service with accounts from the keygen files in
// the root folder.
func New(root string) (*NameService, error) {
	ns := NameService{
		accounts: make(map[solana.PublicKey]string),
		paths:    make(map[string]string),
	}

	fn := func(fileName string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if d.IsDir() || filepath.Ext(fileName) != keyExtension {
			return nil
		}

		key, err := solana.PrivateKeyFromSolanaKeygenFile(fileName)
		if err != nil {
			return fmt.Errorf("load %s: %w", fileName, err)
		}

		name := strings.TrimSuffix(filepath.Base(fileName), keyExtension)
		ns.accounts[key.PublicKey()] = name
		ns.paths[name] = fileName

		return nil
	}

	if err := filepath.WalkDir(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Empty constructs a name service with no accounts.
func Empty() *NameService {
	return &NameService{
		accounts: make(map[solana.PublicKey]string),
		paths:    make(map[string]string),
	}
}

// Lookup returns the name for the specified account.
func (ns *NameService) Lookup(account solana.PublicKey) string {
	name, exists := ns.accounts[account]
	if !exists {
		return account.String()
	}
	return name
}

// Path returns the keygen file for the named account.
func (ns *NameService) Path(name string) (string, bool) {
	path, exists := ns.paths[name]
	return path, exists
}

// Copy returns a copy of the map of names and accounts.
func (ns *NameService) Copy() map[solana.PublicKey]string {
	cpy := make(map[solana.PublicKey]string, len(ns.accounts))
	for account, name := range ns.accounts {
		cpy[account] = name
	}
	return cpy
}
