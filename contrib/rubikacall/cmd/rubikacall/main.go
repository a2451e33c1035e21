// Command rubikacall sends one request to the Rubika Bot API and prints the
// data of the response.
//
// Usage:
//
//	RUBIKA_TOKEN=... rubikacall getMe
//	rubikacall --config rubika.yaml --payload '{"chat_id":"c0","text":"hi"}' sendMessage
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rubika-bot/rubika.go/contrib/rubikacall"
)

func newRootCmd() *cobra.Command {
	var (
		configPath string
		req        rubikacall.Request
	)

	cmd := &cobra.Command{
		Use:   "rubikacall <endpoint>",
		Short: "Call a Rubika Bot API endpoint",
		Long: `Call a Rubika Bot API endpoint and print the data of the response.

Settings come from RUBIKA_TOKEN, RUBIKA_BASE_URL, RUBIKA_TIMEOUT, RUBIKA_MAX_RETRY,
RUBIKA_BACKOFF_FACTOR, RUBIKA_PROXY, RUBIKA_LOG_LEVEL and RUBIKA_LOG_FILE, or
from the YAML file given with --config.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rubikacall.Load(configPath)
			if err != nil {
				return err
			}
			req.Endpoint = args[0]
			return rubikacall.Run(cmd.Context(), cfg, req, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().StringVarP(&req.Method, "method", "m", "POST", "HTTP method, GET or POST")
	cmd.Flags().StringVarP(&req.Payload, "payload", "p", "", "JSON object sent as the request body")

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "rubikacall: %v\n", err)
		stop()
		os.Exit(1)
	}
}
