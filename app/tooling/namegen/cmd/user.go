package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ardanlabs/namegen/foundation/namegen"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the user account on-chain",
	Run:   initRun,
}

var setCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Store a name in the user account",
	Args:  cobra.ExactArgs(1),
	Run:   setRun,
}

var readCmd = &cobra.Command{
	Use:   "read [authority]",
	Short: "Print the name stored in a user account",
	Args:  cobra.MaximumNArgs(1),
	Run:   readRun,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Zero the name in the user account",
	Run:   clearRun,
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(clearCmd)
}

func initRun(cmd *cobra.Command, args []string) {
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

	sig, err := clt.InitUser(ctx, kp)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("PDA initialized.", sig)
}

func setRun(cmd *cobra.Command, args []string) {
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

	sig, err := clt.SetName(ctx, kp, args[0])
	if err != nil {
		if errors.Is(err, namegen.ErrAccountNotFound) {
			log.Fatal("No account. Init first.")
		}
		log.Fatal(err)
	}

	fmt.Println("Saved.", sig)
}

func readRun(cmd *cobra.Command, args []string) {
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

	ud, err := clt.ReadName(ctx, authority)
	if err != nil {
		if errors.Is(err, namegen.ErrAccountNotFound) {
			log.Fatal("No account. Init first.")
		}
		log.Fatal(err)
	}

	fmt.Println("Owner:", ud.Owner)
	fmt.Printf("Name:  %q\n", ud.Name.String())
}

func clearRun(cmd *cobra.Command, args []string) {
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

	sig, err := clt.ClearName(ctx, kp)
	if err != nil {
		if errors.Is(err, namegen.ErrAccountNotFound) {
			log.Fatal("No account. Init first.")
		}
		log.Fatal(err)
	}

	fmt.Println("Cleared.", sig)
}

func printEvent(v string, args ...any) {
	fmt.Println(fmt.Sprintf(v, args...))
}
