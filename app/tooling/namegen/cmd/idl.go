package cmd

import (
	"fmt"
	"log"

	"github.com/ardanlabs/namegen/foundation/namegen"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

var idlCmd = &cobra.Command{
	Use:   "idl",
	Short: "Print the program instructions and discriminators",
	Run:   idlRun,
}

func init() {
	rootCmd.AddCommand(idlCmd)
}

func idlRun(cmd *cobra.Command, args []string) {
	v, err := namegen.LoadIDL()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s %s (%s)\n", v.Metadata.Name, v.Metadata.Version, v.Address)

	for _, ins := range v.Instructions {
		fmt.Printf("  ix  %-12s %s\n", ins.Name, hexutil.Encode(ins.Discriminator))
	}

	for _, acc := range v.Accounts {
		fmt.Printf("  acc %-12s %s\n", acc.Name, hexutil.Encode(acc.Discriminator))
	}

	for _, e := range v.Errors {
		fmt.Printf("  err %-12d %s: %s\n", e.Code, e.Name, e.Msg)
	}
}
