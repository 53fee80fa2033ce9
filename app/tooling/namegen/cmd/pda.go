package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/ardanlabs/namegen/foundation/namegen"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

var pdaCmd = &cobra.Command{
	Use:   "pda [authority]",
	Short: "Print the user account address for an authority",
	Args:  cobra.MaximumNArgs(1),
	Run:   pdaRun,
}

func init() {
	rootCmd.AddCommand(pdaCmd)
}

func pdaRun(cmd *cobra.Command, args []string) {
	authority, err := authorityArg(args)
	if err != nil {
		log.Fatal(err)
	}

	clt, err := newClient(nil)
	if err != nil {
		log.Fatal(err)
	}

	pda, bump, err := clt.UserPDA(authority)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Program:  ", clt.ProgramID())
	fmt.Println("Authority:", authority)
	fmt.Println("PDA:      ", pda)
	fmt.Println("Bump:     ", bump)
	fmt.Println("Seeds:    ", namegen.UserSeed, "+ authority")
}

// authorityArg returns the authority named in the arguments or the public
// key of the selected account.
func authorityArg(args []string) (solana.PublicKey, error) {
	if len(args) == 1 {
		return lookup(args[0])
	}

	kp, err := connect(context.Background())
	if err != nil {
		return solana.PublicKey{}, err
	}
	return kp.PublicKey(), nil
}
