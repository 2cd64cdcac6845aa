package bot

import (
	"fmt"
	"strings"

	"github.com/KopralProject/Telegram/internal/cloudflare"
)

func proxyGlyph(proxied bool) string {
	if proxied {
		return "✅"
	}
	return "❌"
}

func renderZones(zones []cloudflare.Zone) string {
	var b strings.Builder
	b.WriteString("<b>Your domains:</b>\n\n")
	for _, z := range zones {
		fmt.Fprintf(&b, "• <code>%s</code> (ID: <code>%s</code>)\n", z.Name, z.ID)
	}
	return b.String()
}

func renderRecords(header string, records []cloudflare.Record) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	for _, r := range records {
		fmt.Fprintf(&b,
			"• ID: <code>%s</code>\n  Name: <code>%s</code>\n  Type: <code>%s</code>\n  Content: <code>%s</code>\n  Proxy: <code>%s</code>\n\n",
			r.ID, r.Name, r.Type, r.Content, proxyGlyph(r.Proxied))
	}
	return b.String()
}

func renderCreated(name, recordType, content string, proxied bool) string {
	return fmt.Sprintf(
		"Wildcard record created:\n\nName: <code>%s</code>\nType: <code>%s</code>\nContent: <code>%s</code>\nProxy: <code>%s</code>",
		name, recordType, content, proxyGlyph(proxied))
}
