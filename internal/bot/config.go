package bot

import (
	"errors"
	"fmt"
	"horsefax/internal/adapters/transport"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrMissingToken = errors.New("telegram.bot_token is not set")

type OpenRouterConfig struct {
	APIKey       string
	Model        string
	SystemPrompt string
}

type Config struct {
	LogLevel       string
	Modules        []string
	Telegram       transport.Config
	CursorPath     string
	AllowedChatIDs []int64
	MetricsAddress string
	OpenRouter     OpenRouterConfig
}

// SetDefaults registers default values and HORSEFAX_ environment overrides on v, e.g.
// HORSEFAX_TELEGRAM_BOT_TOKEN for telegram.bot_token.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("bot.log_level", "info")
	v.SetDefault("bot.modules", []string{"ping", "heartbeat", "cute", "roll", "users", "debug"})
	v.SetDefault("telegram.api_url", transport.DefaultAPIURL)
	v.SetDefault("telegram.poll_timeout", transport.DefaultPollTimeout.String())
	v.SetDefault("telegram.retry_backoff", transport.DefaultRetryBackoff.String())
	v.SetDefault("telegram.request_timeout", transport.DefaultRequestTimeout.String())
	v.SetDefault("openrouter.model", "openai/gpt-4.1-mini")

	v.SetEnvPrefix("horsefax")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// FromViper reads the bot configuration. Invalid durations and a missing token are errors.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		LogLevel:       v.GetString("bot.log_level"),
		Modules:        v.GetStringSlice("bot.modules"),
		CursorPath:     v.GetString("telegram.cursor_path"),
		MetricsAddress: v.GetString("metrics.listen_address"),
		OpenRouter: OpenRouterConfig{
			APIKey:       v.GetString("openrouter.api_key"),
			Model:        v.GetString("openrouter.model"),
			SystemPrompt: v.GetString("openrouter.system_prompt"),
		},
		Telegram: transport.Config{
			APIURL: v.GetString("telegram.api_url"),
			Token:  v.GetString("telegram.bot_token"),
		},
	}

	if cfg.Telegram.Token == "" {
		return Config{}, ErrMissingToken
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"telegram.poll_timeout", &cfg.Telegram.PollTimeout},
		{"telegram.retry_backoff", &cfg.Telegram.RetryBackoff},
		{"telegram.request_timeout", &cfg.Telegram.RequestTimeout},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(v.GetString(d.key))
		if err != nil {
			return Config{}, fmt.Errorf("invalid duration for %s in config: %w", d.key, err)
		}
		*d.dst = parsed
	}

	if err := v.UnmarshalKey("telegram.allowed_chat_ids", &cfg.AllowedChatIDs); err != nil {
		return Config{}, fmt.Errorf("failed to load allowed chat IDs: %w", err)
	}

	return cfg, nil
}
