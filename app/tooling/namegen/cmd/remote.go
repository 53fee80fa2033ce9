package cmd

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

var url string

type state struct {
	ProgramID string `json:"program_id"`
	Connected bool   `json:"connected"`
	Authority string `json:"authority"`
	PDA       string `json:"pda"`
	Generated string `json:"generated"`
	OnChain   string `json:"onchain"`
	Signature string `json:"signature"`
	Status    string `json:"status"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

var remoteCmd = &cobra.Command{
	Use:       "remote <connect|status|generate|init|save|read|clear|disconnect> [name]",
	Short:     "Drive the wallet session of a running namegen service",
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: []string{"connect", "status", "generate", "init", "save", "read", "clear", "disconnect"},
	Run:       remoteRun,
}

func init() {
	rootCmd.AddCommand(remoteCmd)
	remoteCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the namegen service.")
}

func remoteRun(cmd *cobra.Command, args []string) {
	client := resty.New().
		SetBaseURL(url).
		SetTimeout(timeout)

	var st state
	var er errorResponse

	req := client.R().
		SetResult(&st).
		SetError(&er)

	var resp *resty.Response
	var err error

	switch action := args[0]; action {
	case "status":
		resp, err = req.Get("/v1/session")

	case "save":
		var body struct {
			Name string `json:"name,omitempty"`
		}
		if len(args) == 2 {
			body.Name = args[1]
		}
		resp, err = req.SetBody(body).Post("/v1/session/save")

	case "connect", "generate", "init", "read", "clear", "disconnect":
		resp, err = req.Post("/v1/session/" + action)

	default:
		log.Fatalf("unknown action %q", action)
	}

	if err != nil {
		log.Fatal(err)
	}

	if resp.IsError() {
		if resp.StatusCode() == http.StatusBadRequest && len(er.Fields) > 0 {
			log.Fatalf("%s: %v", er.Error, er.Fields)
		}
		log.Fatalf("%s: %s", resp.Status(), er.Error)
	}

	fmt.Println("Wallet:   ", st.Authority)
	fmt.Println("PDA:      ", st.PDA)
	fmt.Println("Generated:", st.Generated)
	fmt.Println("On-chain: ", st.OnChain)
	fmt.Println("Status:   ", st.Status)
}
