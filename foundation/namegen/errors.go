package namegen

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/tidwall/gjson"
)

// Set of error variables for the program client.
var (
	ErrAccountNotFound     = errors.New("account not found, initialize first")
	ErrAlreadyInitialized  = errors.New("account already initialized")
	ErrNotOwner            = errors.New("only the owner can modify this account")
	ErrInvalidName         = errors.New("name contains a zero byte")
	ErrInvalidAccountData  = errors.New("unexpected account data")
	ErrInvalidAccountOwner = errors.New("account is not owned by the program")
	ErrUnknownInstruction  = errors.New("unknown instruction")
	ErrUnknownAccount      = errors.New("unknown account type")
	ErrConfirmTimeout      = errors.New("transaction was not confirmed in time")
)

// notOwnerCode is the custom error code the program returns when the signer
// is not the recorded owner of the user account. Anchor numbers custom
// errors from 6000.
const notOwnerCode = 6000

// TxError is returned when the ledger reports the transaction failed.
type TxError struct {
	Signature string
	Err       any
}

// Error implements the error interface.
func (te *TxError) Error() string {
	return fmt.Sprintf("transaction %s failed: %v", te.Signature, te.Err)
}

// classify maps the raw failures the ledger reports into the sentinel
// errors of this package. Errors it does not recognize are returned as is.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if code, exists := customCode(err); exists {
		if code == notOwnerCode {
			return fmt.Errorf("%w: %w", ErrNotOwner, err)
		}
		if v, lerr := LoadIDL(); lerr == nil {
			if msg, found := v.ErrorMessage(code); found {
				return fmt.Errorf("program error %d %s: %w", code, msg, err)
			}
		}
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, fmt.Sprintf("custom program error: 0x%x", notOwnerCode)),
		strings.Contains(msg, fmt.Sprintf(`"custom":%d`, notOwnerCode)),
		strings.Contains(msg, fmt.Sprintf("custom:%d", notOwnerCode)),
		strings.Contains(msg, "notowner"):
		return fmt.Errorf("%w: %w", ErrNotOwner, err)

	case strings.Contains(msg, "already in use"):
		return fmt.Errorf("%w: %w", ErrAlreadyInitialized, err)

	case strings.Contains(msg, "accountnotinitialized"),
		strings.Contains(msg, "account does not exist"):
		return fmt.Errorf("%w: %w", ErrAccountNotFound, err)
	}

	return err
}

// customCode extracts the custom program error code from the structured
// error the ledger reports, either the preflight simulation data of an rpc
// error or the status of a failed transaction.
func customCode(err error) (int, bool) {
	var raw any
	var path string

	var rpcErr *jsonrpc.RPCError
	var txErr *TxError
	switch {
	case errors.As(err, &txErr):
		raw, path = txErr.Err, "InstructionError.1.Custom"

	case errors.As(err, &rpcErr):
		raw, path = rpcErr.Data, "err.InstructionError.1.Custom"

	default:
		return 0, false
	}

	data, merr := json.Marshal(raw)
	if merr != nil {
		return 0, false
	}

	res := gjson.GetBytes(data, path)
	if !res.Exists() {
		return 0, false
	}

	return int(res.Int()), true
}
