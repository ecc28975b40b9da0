package series

import (
	"fmt"
	"regexp"
	"strings"
)

// Item names double as filenames and key components in the storage backends,
// so the allowed alphabet is restricted.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateName checks that a name is usable as an item identifier in any
// storage backend.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid name %q: allowed are letters, digits, '.', '_' and '-'", name)
	}
	return nil
}

// CleanName rewrites an arbitrary label into a valid item name: spaces become
// underscores and disallowed characters are dropped.
func CleanName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		}
	}
	return strings.TrimLeft(b.String(), "._-")
}
