package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/ardanlabs/namegen/foundation/wallet"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Print the public key of the account",
	Run:   accountRun,
}

var importCmd = &cobra.Command{
	Use:   "import <base58-secret>",
	Short: "Write a base58 secret key to a keygen file",
	Args:  cobra.ExactArgs(1),
	Run:   importRun,
}

func init() {
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(importCmd)
}

func accountRun(cmd *cobra.Command, args []string) {
	kp, err := connect(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(kp.PublicKey())
}

func importRun(cmd *cobra.Command, args []string) {
	kp, err := wallet.FromBase58(args[0])
	if err != nil {
		log.Fatal(err)
	}

	pk, err := kp.Connect(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	if err := kp.Export(getKeypairPath()); err != nil {
		log.Fatal(err)
	}

	fmt.Println(pk)
}
