package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/frahmantamala/checkout-gateway/internal"
	"github.com/frahmantamala/checkout-gateway/internal/checkout"
	"github.com/frahmantamala/checkout-gateway/internal/provider"
	"github.com/frahmantamala/checkout-gateway/pkg/logger"
)

func newCheckoutCommand(configPath *string) *cobra.Command {
	var amount, currency string

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Create a checkout from the command line",
		Long:  `Create a checkout with the configured payment provider and print the result as JSON`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckout(cmd, *configPath, amount, currency)
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "amount to charge, e.g. 25.00")
	cmd.Flags().StringVar(&currency, "currency", "", "currency code (defaults to the configured currency)")

	return cmd
}

func runCheckout(cmd *cobra.Command, configPath, amount, currency string) error {
	config, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.LoggerWrapper()

	req := &checkout.CheckoutRequest{Currency: currency}
	if amount = strings.TrimSpace(amount); amount != "" {
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return fmt.Errorf("invalid --amount %q: %w", amount, err)
		}
		req.Amount = &d
	}

	client, err := provider.NewClient(config.Provider.ClientConfig(), log)
	if err != nil {
		return fmt.Errorf("failed to initialize payment provider: %w", err)
	}
	service := checkout.NewService(client, log, checkout.WithDefaultCurrency(config.Provider.DefaultCurrency))

	result, err := service.InitiateCheckout(cmd.Context(), req)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			if werr := writeJSON(cmd.OutOrStdout(), appErr); werr != nil {
				return errors.Join(err, fmt.Errorf("failed to write error body: %w", werr))
			}
		}
		return err
	}

	return writeJSON(cmd.OutOrStdout(), result)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
