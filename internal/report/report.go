// Package report renders the user-facing text written to stdout after a
// token is generated or verified.
package report

import (
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/dskow/musickit-token/internal/config"
	"github.com/dskow/musickit-token/internal/token"
)

// TimeLayout formats token timestamps for display.
const TimeLayout = "2006-01-02 15:04:05 UTC"

var banner = strings.Repeat("=", 80)

// Success writes the generated token between banners, its expiration, and
// instructions for pasting it into out.Destination.
func Success(w io.Writer, tok *token.Token, out config.OutputConfig) error {
	var b strings.Builder
	b.WriteString("✅ Apple Music Developer Token Generated Successfully!\n")
	b.WriteString("\n" + banner + "\n")
	fmt.Fprintf(&b, "TOKEN (copy this to %s):\n", path.Base(toSlash(out.Destination)))
	b.WriteString(banner + "\n")
	b.WriteString(tok.Signed + "\n")
	b.WriteString(banner + "\n")
	fmt.Fprintf(&b, "\n📅 Valid until: %s\n", tok.ExpiresAt.UTC().Format(TimeLayout))
	b.WriteString("\n💡 Copy the token above and paste it into:\n")
	fmt.Fprintf(&b, "   %s\n", out.Destination)
	fmt.Fprintf(&b, "   Replace: %s\n", out.Placeholder)

	_, err := io.WriteString(w, b.String())
	return err
}

// Verified writes the claims of a verified token and how long it remains valid.
func Verified(w io.Writer, tok *token.Token, now time.Time) error {
	remaining := tok.ExpiresAt.Sub(now).Truncate(time.Second)

	var b strings.Builder
	b.WriteString("✅ Token is valid\n\n")
	fmt.Fprintf(&b, "   Issuer (team ID): %s\n", tok.Issuer)
	fmt.Fprintf(&b, "   Key ID:           %s\n", tok.KeyID)
	fmt.Fprintf(&b, "   Issued at:        %s\n", tok.IssuedAt.UTC().Format(TimeLayout))
	fmt.Fprintf(&b, "   Valid until:      %s\n", tok.ExpiresAt.UTC().Format(TimeLayout))
	fmt.Fprintf(&b, "   Remaining:        %s\n", formatRemaining(remaining))

	_, err := io.WriteString(w, b.String())
	return err
}

func formatRemaining(d time.Duration) string {
	days := int(d / (24 * time.Hour))
	rest := d - time.Duration(days)*24*time.Hour
	if days == 0 {
		return rest.String()
	}
	return fmt.Sprintf("%dd %s", days, rest)
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}
