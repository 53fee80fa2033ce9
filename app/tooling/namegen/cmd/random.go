package cmd

import (
	"fmt"
	"math/rand/v2"

	"github.com/ardanlabs/namegen/foundation/namegen"
	"github.com/spf13/cobra"
)

var count int

var randomCmd = &cobra.Command{
	Use:   "random",
	Short: "Print random names",
	Run:   randomRun,
}

func init() {
	rootCmd.AddCommand(randomCmd)
	randomCmd.Flags().IntVarP(&count, "count", "n", 1, "Number of names to print.")
}

func randomRun(cmd *cobra.Command, args []string) {
	r := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))

	for range count {
		fmt.Println(namegen.Generate(r))
	}
}
