package cmd

import (
	"fmt"
	"log"

	"github.com/ardanlabs/namegen/foundation/wallet"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new keygen file",
	Run:   generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func generateRun(cmd *cobra.Command, args []string) {
	pk, err := wallet.Generate(getKeypairPath())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(pk)
}
