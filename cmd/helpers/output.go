package helpers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/zinc-sig/ftlaunch/internal/retry"
	"github.com/zinc-sig/ftlaunch/internal/webhook"
)

// OutputJSON marshals v and prints it as one line to w
func OutputJSON(w io.Writer, v any) error {
	jsonOutput, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON output: %w", err)
	}

	_, err = fmt.Fprintln(w, string(jsonOutput))
	return err
}

// SendWebhook delivers payload when cfg is set. Delivery errors are returned
// for the caller to record; they never fail the command.
func SendWebhook(ctx context.Context, cfg *webhook.Config, policy *retry.Policy, payload any, logger *zap.Logger) (sent bool, err error) {
	if cfg == nil || cfg.URL == "" {
		return false, nil
	}

	logger.Debug("sending webhook", zap.String("url", cfg.URL))
	client := webhook.NewClient(cfg, policy, logger)
	if err := client.Send(ctx, payload); err != nil {
		logger.Warn("webhook delivery failed", zap.String("url", cfg.URL), zap.Error(err))
		return false, err
	}
	return true, nil
}
