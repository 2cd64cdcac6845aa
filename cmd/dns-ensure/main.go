// dns-ensure is a one-shot job that points the *.ZONE_NAME wildcard A record
// at TARGET_IP, creating the record when it does not exist yet, and reports
// the outcome to a Telegram chat. Meant to run from CI.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/KopralProject/Telegram/internal/bot"
	"github.com/KopralProject/Telegram/internal/cloudflare"
	"github.com/KopralProject/Telegram/internal/config"
	"github.com/KopralProject/Telegram/internal/dnsname"
	"github.com/KopralProject/Telegram/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate("dns-ensure"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	notifier, err := bot.NewNotifier(cfg.BotToken)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create notifier")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("ensure failed")
		notify(notifier, cfg, logger, fmt.Sprintf(
			"❌ *Failed!*\n\nCould not ensure the wildcard record for `%s`.\nDetail: `%v`", cfg.ZoneName, err))
		os.Exit(1)
	}

	notify(notifier, cfg, logger, fmt.Sprintf(
		"✅ *Success!*\n\n`*.%s` now points to IP: `%s`", cfg.ZoneName, cfg.TargetIP))
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	if !dnsname.IsValidIPv4(cfg.TargetIP) {
		return fmt.Errorf("TARGET_IP %q is not a valid IPv4 address", cfg.TargetIP)
	}

	client := cloudflare.NewClient(cfg.CloudflareAPIURL, cfg.CloudflareEmail, cfg.CloudflareAPIKey)

	zones, err := client.ListZones(ctx)
	if err != nil {
		return fmt.Errorf("fetch zones: %w", err)
	}
	var zoneID string
	for _, z := range zones {
		if z.Name == cfg.ZoneName {
			zoneID = z.ID
			break
		}
	}
	if zoneID == "" {
		return fmt.Errorf("zone %q not found in the Cloudflare account", cfg.ZoneName)
	}

	recordName := "*." + cfg.ZoneName
	records, err := client.ListRecords(ctx, zoneID, "A", recordName)
	if err != nil {
		return fmt.Errorf("check existing record: %w", err)
	}

	params := cloudflare.RecordParams{
		Type:    "A",
		Name:    recordName,
		Content: cfg.TargetIP,
		Proxied: cfg.RecordProxied,
		TTL:     1,
	}

	if len(records) > 0 {
		logger.Info().Str("record_id", records[0].ID).Str("ip", cfg.TargetIP).Msg("updating wildcard record")
		if _, err := client.UpdateRecord(ctx, zoneID, records[0].ID, params); err != nil {
			return fmt.Errorf("update record: %w", err)
		}
		return nil
	}

	logger.Info().Str("name", recordName).Str("ip", cfg.TargetIP).Msg("creating wildcard record")
	if _, err := client.CreateRecord(ctx, zoneID, params); err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

func notify(notifier *bot.Notifier, cfg *config.Config, logger zerolog.Logger, message string) {
	if err := notifier.Send(cfg.NotifyChatID, message); err != nil {
		logger.Error().Err(err).Msg("telegram notification failed")
	}
}
