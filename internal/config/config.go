package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/KopralProject/Telegram/internal/cloudflare"
)

type Config struct {
	BotToken          string
	CloudflareEmail   string
	CloudflareAPIKey  string
	CloudflareAPIURL  string
	AllowedUserIDs    []int64
	LogLevel          string
	MetricsListenAddr string
	ServiceName       string

	// dns-ensure job only.
	ZoneName      string
	TargetIP      string
	NotifyChatID  int64
	RecordProxied bool
}

func Load() (*Config, error) {
	ids, err := parseUserIDs(getEnv("ALLOWED_USER_IDS", ""))
	if err != nil {
		return nil, fmt.Errorf("parse ALLOWED_USER_IDS: %w", err)
	}

	var notifyChatID int64
	if v := getEnv("NOTIFY_CHAT_ID", ""); v != "" {
		notifyChatID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse NOTIFY_CHAT_ID: %w", err)
		}
	}

	cfg := &Config{
		BotToken:          getEnv("BOT_TOKEN", ""),
		CloudflareEmail:   getEnv("CLOUDFLARE_EMAIL", ""),
		CloudflareAPIKey:  getEnv("CLOUDFLARE_API_KEY", ""),
		CloudflareAPIURL:  getEnv("CLOUDFLARE_API_URL", cloudflare.DefaultBaseURL),
		AllowedUserIDs:    ids,
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		MetricsListenAddr: getEnv("METRICS_LISTEN_ADDR", ":9091"),
		ServiceName:       getEnv("SERVICE_NAME", "dns-bot"),
		ZoneName:          getEnv("ZONE_NAME", ""),
		TargetIP:          getEnv("TARGET_IP", ""),
		NotifyChatID:      notifyChatID,
		RecordProxied:     getEnv("RECORD_PROXIED", "") == "true",
	}

	return cfg, nil
}

// Validate checks the variables required by the given role ("dns-bot" or
// "dns-ensure").
func (c *Config) Validate(role string) error {
	var missing []string
	if c.BotToken == "" {
		missing = append(missing, "BOT_TOKEN")
	}
	if c.CloudflareEmail == "" {
		missing = append(missing, "CLOUDFLARE_EMAIL")
	}
	if c.CloudflareAPIKey == "" {
		missing = append(missing, "CLOUDFLARE_API_KEY")
	}
	if role == "dns-ensure" {
		if c.ZoneName == "" {
			missing = append(missing, "ZONE_NAME")
		}
		if c.TargetIP == "" {
			missing = append(missing, "TARGET_IP")
		}
		if c.NotifyChatID == 0 {
			missing = append(missing, "NOTIFY_CHAT_ID")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return nil
}

func parseUserIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		id, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q", trimmed)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
