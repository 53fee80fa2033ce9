package namegen

import (
	"crypto/sha256"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed idl/namegen.json
var idlJSON []byte

// Discriminator is the 8 byte prefix Anchor places in front of instruction
// data and account data.
type Discriminator [8]byte

// IDL is the subset of the Anchor interface definition this client uses.
type IDL struct {
	Address  string `json:"address"`
	Metadata struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"metadata"`
	Instructions []IDLInstruction `json:"instructions"`
	Accounts     []IDLAccount     `json:"accounts"`
	Errors       []IDLError       `json:"errors"`
}

// IDLInstruction describes a single program instruction.
type IDLInstruction struct {
	Name          string `json:"name"`
	Discriminator []byte `json:"discriminator"`
	Accounts      []struct {
		Name     string `json:"name"`
		Writable bool   `json:"writable,omitempty"`
		Signer   bool   `json:"signer,omitempty"`
		Address  string `json:"address,omitempty"`
	} `json:"accounts"`
	Args []struct {
		Name string          `json:"name"`
		Type json.RawMessage `json:"type"`
	} `json:"args"`
}

// IDLAccount describes an account type owned by the program.
type IDLAccount struct {
	Name          string `json:"name"`
	Discriminator []byte `json:"discriminator"`
}

// IDLError describes a custom program error.
type IDLError struct {
	Code int    `json:"code"`
	Name string `json:"name"`
	Msg  string `json:"msg"`
}

// UnmarshalJSON handles the discriminator arrays which are encoded as
// arrays of numbers and not as base64 strings.
func (ins *IDLInstruction) UnmarshalJSON(data []byte) error {
	type alias IDLInstruction
	aux := struct {
		*alias
		Discriminator []int `json:"discriminator"`
	}{
		alias: (*alias)(ins),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	ins.Discriminator = toBytes(aux.Discriminator)
	return nil
}

// UnmarshalJSON handles the discriminator arrays which are encoded as
// arrays of numbers and not as base64 strings.
func (acc *IDLAccount) UnmarshalJSON(data []byte) error {
	type alias IDLAccount
	aux := struct {
		*alias
		Discriminator []int `json:"discriminator"`
	}{
		alias: (*alias)(acc),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	acc.Discriminator = toBytes(aux.Discriminator)
	return nil
}

// =============================================================================

var (
	idlOnce sync.Once
	idl     *IDL
	idlErr  error
)

// LoadIDL returns the embedded program interface definition. The document
// is parsed once.
func LoadIDL() (*IDL, error) {
	idlOnce.Do(func() {
		idl, idlErr = ParseIDL(idlJSON)
	})
	return idl, idlErr
}

// ParseIDL decodes an Anchor IDL document.
func ParseIDL(data []byte) (*IDL, error) {
	var v IDL
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("unmarshal idl: %w", err)
	}

	for _, ins := range v.Instructions {
		if len(ins.Discriminator) != len(Discriminator{}) {
			return nil, fmt.Errorf("instruction %q: discriminator length %d", ins.Name, len(ins.Discriminator))
		}
	}
	for _, acc := range v.Accounts {
		if len(acc.Discriminator) != len(Discriminator{}) {
			return nil, fmt.Errorf("account %q: discriminator length %d", acc.Name, len(acc.Discriminator))
		}
	}

	return &v, nil
}

// Instruction returns the definition of the named instruction.
func (v *IDL) Instruction(name string) (IDLInstruction, error) {
	for _, ins := range v.Instructions {
		if ins.Name == name {
			return ins, nil
		}
	}
	return IDLInstruction{}, fmt.Errorf("%w: %s", ErrUnknownInstruction, name)
}

// InstructionDiscriminator returns the discriminator for the named instruction.
func (v *IDL) InstructionDiscriminator(name string) (Discriminator, error) {
	ins, err := v.Instruction(name)
	if err != nil {
		return Discriminator{}, err
	}

	var d Discriminator
	copy(d[:], ins.Discriminator)
	return d, nil
}

// AccountDiscriminator returns the discriminator for the named account type.
func (v *IDL) AccountDiscriminator(name string) (Discriminator, error) {
	for _, acc := range v.Accounts {
		if acc.Name == name {
			var d Discriminator
			copy(d[:], acc.Discriminator)
			return d, nil
		}
	}
	return Discriminator{}, fmt.Errorf("%w: %s", ErrUnknownAccount, name)
}

// ErrorMessage returns the message registered for a custom error code.
func (v *IDL) ErrorMessage(code int) (string, bool) {
	for _, e := range v.Errors {
		if e.Code == code {
			return e.Msg, true
		}
	}
	return "", false
}

// =============================================================================

// SighashInstruction computes the Anchor discriminator for an instruction.
func SighashInstruction(name string) Discriminator {
	return sighash("global", name)
}

// SighashAccount computes the Anchor discriminator for an account type.
func SighashAccount(name string) Discriminator {
	return sighash("account", name)
}

func sighash(namespace string, name string) Discriminator {
	sum := sha256.Sum256([]byte(namespace + ":" + name))

	var d Discriminator
	copy(d[:], sum[:8])
	return d
}

func toBytes(vs []int) []byte {
	if vs == nil {
		return nil
	}

	b := make([]byte, len(vs))
	for i, v := range vs {
		b[i] = byte(v)
	}
	return b
}
