package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/sorynlabs/soryn/internal/domain"
)

// ValidateHistoryKind checks a user-supplied history type against the
// two kinds the backend stores.
func ValidateHistoryKind(kind string) error {
	switch kind {
	case domain.HistoryKindChat, domain.HistoryKindDebate:
		return nil
	}
	return fmt.Errorf("invalid history type %q (expected %q or %q)",
		kind, domain.HistoryKindChat, domain.HistoryKindDebate)
}

// NormalizeOrigin validates a backend origin and strips any trailing
// slash so joining request paths onto it stays predictable.
func NormalizeOrigin(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid backend origin: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid backend origin %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid backend origin %q: missing host", raw)
	}
	return strings.TrimRight(raw, "/"), nil
}
