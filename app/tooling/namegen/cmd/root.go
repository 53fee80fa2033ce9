// Package cmd contains the namegen command line tool.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ardanlabs/namegen/foundation/namegen"
	"github.com/ardanlabs/namegen/foundation/nameservice"
	"github.com/ardanlabs/namegen/foundation/wallet"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/cobra"
)

var (
	accountName string
	accountPath string
	rpcURL      string
	programID   string
	timeout     time.Duration
)

const (
	keyExtension = ".json"
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "id", "Name of the keygen file.")
	rootCmd.PersistentFlags().StringVarP(&accountPath, "account-path", "p", "zblock/accounts/", "Path to the directory with keygen files.")
	rootCmd.PersistentFlags().StringVarP(&rpcURL, "rpc", "r", rpc.DevNet_RPC, "Url of the cluster rpc node.")
	rootCmd.PersistentFlags().StringVar(&programID, "program", "", "Program id, defaults to the idl address.")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 90*time.Second, "Time to wait for a command to finish.")
}

var rootCmd = &cobra.Command{
	Use:   "namegen",
	Short: "Generate names and store them in your on-chain user account",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func getKeypairPath() string {
	name := accountName
	if !strings.HasSuffix(name, keyExtension) {
		name += keyExtension
	}

	return filepath.Join(accountPath, name)
}

// connect loads the keygen file for the selected account.
func connect(ctx context.Context) (*wallet.Keypair, error) {
	kp := wallet.NewKeypair(getKeypairPath())
	if _, err := kp.Connect(ctx); err != nil {
		return nil, err
	}
	return kp, nil
}

func newClient(ev namegen.EventHandler) (*namegen.Client, error) {
	var pid solana.PublicKey
	if programID != "" {
		var err error
		if pid, err = solana.PublicKeyFromBase58(programID); err != nil {
			return nil, err
		}
	}

	return namegen.NewClient(namegen.Config{
		RPC:       rpc.New(rpcURL),
		ProgramID: pid,
		EvHandler: ev,
	})
}

// lookup resolves an authority argument that is either an account name in
// the account path or a base58 address.
func lookup(arg string) (solana.PublicKey, error) {
	if pk, err := solana.PublicKeyFromBase58(arg); err == nil {
		return pk, nil
	}

	ns, err := nameservice.New(accountPath)
	if err != nil {
		return solana.PublicKey{}, err
	}

	path, exists := ns.Path(strings.TrimSuffix(arg, keyExtension))
	if !exists {
		return solana.PublicKey{}, fmt.Errorf("unknown account %s", arg)
	}

	return wallet.NewKeypair(path).Connect(context.Background())
}
