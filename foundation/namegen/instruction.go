package namegen

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Set of instruction names as declared by the program.
const (
	InstructionInitUser  = "init_user"
	InstructionSetName   = "set_name"
	InstructionClearName = "clear_name"
)

// MarshalWithEncoder writes the name as a fixed size borsh array.
func (n Name) MarshalWithEncoder(enc *bin.Encoder) error {
	return enc.WriteBytes(n[:], false)
}

// UnmarshalWithDecoder reads a fixed size borsh array into the name.
func (n *Name) UnmarshalWithDecoder(dec *bin.Decoder) error {
	b, err := dec.ReadNBytes(NameSize)
	if err != nil {
		return err
	}
	copy(n[:], b)
	return nil
}

// =============================================================================

// NewInitUserInstruction constructs the instruction that creates the user
// account for the authority. The authority pays for the account.
func NewInitUserInstruction(programID solana.PublicKey, authority solana.PublicKey) (solana.Instruction, error) {
	pda, _, err := UserPDA(programID, authority)
	if err != nil {
		return nil, err
	}

	data, err := encodeData(InstructionInitUser)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(pda).WRITE(),
		solana.Meta(authority).WRITE().SIGNER(),
		solana.Meta(solana.SystemProgramID),
	}

	return solana.NewInstruction(programID, accounts, data), nil
}

// NewSetNameInstruction constructs the instruction that stores the name
// in the user account of the authority.
func NewSetNameInstruction(programID solana.PublicKey, authority solana.PublicKey, name Name) (solana.Instruction, error) {
	pda, _, err := UserPDA(programID, authority)
	if err != nil {
		return nil, err
	}

	data, err := encodeData(InstructionSetName, name)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(pda).WRITE(),
		solana.Meta(authority).SIGNER(),
	}

	return solana.NewInstruction(programID, accounts, data), nil
}

// NewClearNameInstruction constructs the instruction that zeroes the name
// in the user account of the authority.
func NewClearNameInstruction(programID solana.PublicKey, authority solana.PublicKey) (solana.Instruction, error) {
	pda, _, err := UserPDA(programID, authority)
	if err != nil {
		return nil, err
	}

	data, err := encodeData(InstructionClearName)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(pda).WRITE(),
		solana.Meta(authority).SIGNER(),
	}

	return solana.NewInstruction(programID, accounts, data), nil
}

// encodeData produces the discriminator for the named instruction followed
// by the borsh encoding of its arguments.
func encodeData(instruction string, args ...any) ([]byte, error) {
	v, err := LoadIDL()
	if err != nil {
		return nil, err
	}

	disc, err := v.InstructionDiscriminator(instruction)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)

	if err := enc.WriteBytes(disc[:], false); err != nil {
		return nil, fmt.Errorf("encode discriminator: %w", err)
	}

	for _, arg := range args {
		if err := enc.Encode(arg); err != nil {
			return nil, fmt.Errorf("encode %s args: %w", instruction, err)
		}
	}

	return buf.Bytes(), nil
}
