package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/frahmantamala/checkout-gateway/internal"
	"github.com/frahmantamala/checkout-gateway/pkg/logger"
)

func Execute() {
	if err := Run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Run executes the CLI with args, writing command output to out.
func Run(args []string, out, errOut io.Writer) error {
	root := newRootCommand()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)
	return root.Execute()
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "checkout-gateway",
		Short:         "Checkout Gateway",
		Long:          `Relays checkout requests to the payment provider and receives its payment notifications.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", ".", "directory containing config.yml")

	root.AddCommand(newHTTPServerCommand(&configPath))
	root.AddCommand(newCheckoutCommand(&configPath))
	root.AddCommand(newWebhookCommand(&configPath))

	return root
}

// loadConfig reads an optional .env file, then config.yml and the environment,
// and installs the process logger.
func loadConfig(path string) (*internal.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	cfg, err := internal.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	return cfg, nil
}
