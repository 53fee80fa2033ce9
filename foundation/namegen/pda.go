package namegen

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// UserSeed is the static seed the program uses for user accounts.
const UserSeed = "user"

// UserPDA derives the address of the user account for the authority.
func UserPDA(programID solana.PublicKey, authority solana.PublicKey) (solana.PublicKey, uint8, error) {
	seeds := [][]byte{
		[]byte(UserSeed),
		authority[:],
	}

	pda, bump, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("find program address: %w", err)
	}

	return pda, bump, nil
}
