package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

var sol float64

var balanceCmd = &cobra.Command{
	Use:   "balance [authority]",
	Short: "Print the balance of an account",
	Args:  cobra.MaximumNArgs(1),
	Run:   balanceRun,
}

var airdropCmd = &cobra.Command{
	Use:   "airdrop",
	Short: "Request an airdrop for the account on a test cluster",
	Run:   airdropRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(airdropCmd)
	airdropCmd.Flags().Float64VarP(&sol, "sol", "s", 1, "Amount of SOL to request.")
}

func balanceRun(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	authority, err := authorityArg(args)
	if err != nil {
		log.Fatal(err)
	}

	clt, err := newClient(nil)
	if err != nil {
		log.Fatal(err)
	}

	lamports, err := clt.Balance(ctx, authority)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("For Account:", authority)
	fmt.Printf("%.9f SOL\n", float64(lamports)/float64(solana.LAMPORTS_PER_SOL))
}

func airdropRun(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	kp, err := connect(ctx)
	if err != nil {
		log.Fatal(err)
	}

	clt, err := newClient(printEvent)
	if err != nil {
		log.Fatal(err)
	}

	sig, err := clt.Airdrop(ctx, kp.PublicKey(), uint64(sol*float64(solana.LAMPORTS_PER_SOL)))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Airdrop confirmed.", sig)
}
