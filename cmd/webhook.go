package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/checkout-gateway/internal/webhook"
	"github.com/frahmantamala/checkout-gateway/pkg/logger"
)

func newWebhookCommand(configPath *string) *cobra.Command {
	webhookCmd := &cobra.Command{
		Use:   "webhook",
		Short: "Webhook commands",
		Long:  `Inspect webhook handling without a provider delivery`,
	}

	var data string
	replayCmd := &cobra.Command{
		Use:   "replay [event]",
		Short: "Replay a payment notification",
		Long:  `Run a payment notification through the webhook handlers and the configured sink`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return replayWebhook(cmd, *configPath, args[0], data)
		},
	}
	replayCmd.Flags().StringVar(&data, "data", "{}", "JSON object merged into the notification body")

	webhookCmd.AddCommand(replayCmd)
	return webhookCmd
}

func replayWebhook(cmd *cobra.Command, configPath, event, data string) error {
	config, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.LoggerWrapper()

	body := map[string]interface{}{}
	if err := json.Unmarshal([]byte(data), &body); err != nil {
		return fmt.Errorf("--data must be a JSON object: %w", err)
	}
	body["event"] = event

	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	notification, err := webhook.ParseNotification(raw)
	if err != nil {
		return err
	}

	bus, publisher, err := newEventBus(config.Webhook, log)
	if err != nil {
		return err
	}
	if publisher != nil {
		defer publisher.Close()
	}

	ack := webhook.NewDispatcher(bus, log).Dispatch(cmd.Context(), notification)

	ctx, cancel := context.WithTimeout(context.Background(), config.Server.ShutdownTimeout)
	defer cancel()
	if err := bus.Drain(ctx); err != nil {
		return err
	}

	return writeJSON(cmd.OutOrStdout(), ack)
}
