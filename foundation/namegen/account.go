package namegen

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// AccountUserData is the account type name declared by the program.
const AccountUserData = "UserData"

// UserDataSize is the size of the user account including the discriminator.
const UserDataSize = 8 + solana.PublicKeyLength + NameSize

// UserData is the decoded user account.
type UserData struct {
	Owner solana.PublicKey
	Name  Name
}

// UnmarshalWithDecoder reads the account layout, requiring the leading
// discriminator to match the UserData account type.
func (ud *UserData) UnmarshalWithDecoder(dec *bin.Decoder) error {
	v, err := LoadIDL()
	if err != nil {
		return err
	}

	want, err := v.AccountDiscriminator(AccountUserData)
	if err != nil {
		return err
	}

	disc, err := dec.ReadNBytes(len(want))
	if err != nil {
		return fmt.Errorf("%w: read discriminator: %w", ErrInvalidAccountData, err)
	}
	if Discriminator(disc) != want {
		return fmt.Errorf("%w: discriminator mismatch", ErrInvalidAccountData)
	}

	owner, err := dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return fmt.Errorf("%w: read owner: %w", ErrInvalidAccountData, err)
	}
	ud.Owner = solana.PublicKeyFromBytes(owner)

	if err := ud.Name.UnmarshalWithDecoder(dec); err != nil {
		return fmt.Errorf("%w: read name: %w", ErrInvalidAccountData, err)
	}

	return nil
}

// MarshalWithEncoder writes the account layout. The client never writes
// accounts, this exists so tests and tooling can produce account data.
func (ud UserData) MarshalWithEncoder(enc *bin.Encoder) error {
	v, err := LoadIDL()
	if err != nil {
		return err
	}

	disc, err := v.AccountDiscriminator(AccountUserData)
	if err != nil {
		return err
	}

	if err := enc.WriteBytes(disc[:], false); err != nil {
		return err
	}
	if err := enc.WriteBytes(ud.Owner[:], false); err != nil {
		return err
	}

	return ud.Name.MarshalWithEncoder(enc)
}

// DecodeUserData decodes the raw account data of a user account.
func DecodeUserData(data []byte) (UserData, error) {
	if len(data) < UserDataSize {
		return UserData{}, fmt.Errorf("%w: got %d bytes, exp %d", ErrInvalidAccountData, len(data), UserDataSize)
	}

	var ud UserData
	if err := bin.NewBorshDecoder(data).Decode(&ud); err != nil {
		return UserData{}, err
	}

	return ud, nil
}
