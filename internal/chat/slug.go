package chat

import "strings"

// Slugify derives the canonical room slug from a human-readable name:
// lowercase, spaces and hyphens become underscores, everything else outside
// [a-z0-9_] is dropped. The derivation is deterministic and idempotent, so
// "My Room!" and "my room!" collide on purpose.
func Slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r == ' ' || r == '-':
			b.WriteByte('_')
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		}
	}
	return b.String()
}
