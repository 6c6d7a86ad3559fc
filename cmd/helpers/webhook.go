package helpers

import (
	"fmt"
	"time"

	"github.com/zinc-sig/ftlaunch/cmd/config"
	contextparser "github.com/zinc-sig/ftlaunch/internal/context"
	"github.com/zinc-sig/ftlaunch/internal/retry"
	"github.com/zinc-sig/ftlaunch/internal/webhook"
)

// WebhookEnvPrefix is the environment prefix of the webhook configuration.
const WebhookEnvPrefix = "FTLAUNCH_WEBHOOK"

// BuildWebhookConfig builds webhook configuration from all sources
func BuildWebhookConfig(cfg *config.WebhookConfig) (map[string]any, error) {
	// Precedence: env < file < json < kv < direct flags
	result, err := contextparser.BuildContextWithPrefix(
		WebhookEnvPrefix,
		cfg.Config,
		cfg.ConfigKV,
		cfg.ConfigFile,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook config: %w", err)
	}

	if result == nil {
		result = make(map[string]any)
	}

	webhookConf, ok := result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("webhook config must be an object/map")
	}

	// Flags only override when moved off their defaults
	if cfg.URL != "" {
		webhookConf["url"] = cfg.URL
	}
	if cfg.Method != "" && cfg.Method != "POST" {
		webhookConf["method"] = cfg.Method
	}
	if cfg.AuthType != "" && cfg.AuthType != "none" {
		webhookConf["auth_type"] = cfg.AuthType
	}
	if cfg.AuthToken != "" {
		webhookConf["auth_token"] = cfg.AuthToken
	}
	if cfg.Timeout != "" && cfg.Timeout != "30s" {
		webhookConf["timeout"] = cfg.Timeout
	}
	if cfg.Retries != 3 {
		webhookConf["retries"] = cfg.Retries
	}
	if cfg.RetryDelay != "" && cfg.RetryDelay != "1s" {
		webhookConf["retry_delay"] = cfg.RetryDelay
	}

	return webhookConf, nil
}

// ParseWebhookConfigToInternal converts the merged configuration into a
// client config and its retry policy. Both are nil when no URL is configured.
func ParseWebhookConfigToInternal(cfg *config.WebhookConfig) (*webhook.Config, *retry.Policy, error) {
	configMap, err := BuildWebhookConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	url, _ := configMap["url"].(string)
	if url == "" {
		return nil, nil, nil
	}

	webhookTimeout := 30 * time.Second
	if timeout, ok := configMap["timeout"].(string); ok && timeout != "" {
		webhookTimeout, err = time.ParseDuration(timeout)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid webhook timeout duration: %w", err)
		}
	}

	retryDelay := time.Second
	if delay, ok := configMap["retry_delay"].(string); ok && delay != "" {
		retryDelay, err = time.ParseDuration(delay)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid webhook retry delay: %w", err)
		}
	}

	method, _ := configMap["method"].(string)
	if method == "" {
		method = "POST"
	}

	authType, _ := configMap["auth_type"].(string)
	if authType == "" {
		authType = "none"
	}
	authToken, _ := configMap["auth_token"].(string)

	// JSON numbers arrive as float64, flags and env values as int
	maxRetries := 3
	switch r := configMap["retries"].(type) {
	case int:
		maxRetries = r
	case float64:
		maxRetries = int(r)
	}
	if maxRetries < 0 {
		return nil, nil, fmt.Errorf("webhook retries must not be negative")
	}

	webhookConfig := &webhook.Config{
		URL:       url,
		Method:    method,
		Timeout:   webhookTimeout,
		AuthType:  authType,
		AuthToken: authToken,
	}

	policy := webhook.DefaultRetryPolicy()
	policy.MaxRetries = maxRetries
	policy.InitialDelay = retryDelay

	return webhookConfig, policy, nil
}
