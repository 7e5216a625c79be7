package note

import (
	"fmt"
	"strings"
)

// ValidateTag checks a tag written with or without the leading '+' sigil and
// returns the canonical form (sigil stripped, lowercased).
//
// A tag may only contain lowercase letters, digits, and dashes, and may not
// start or end with a dash.
func ValidateTag(raw string) (string, error) {
	tag := strings.ToLower(strings.TrimPrefix(raw, "+"))

	if tag == "" {
		return "", fmt.Errorf("tag cannot be empty")
	}
	if strings.HasPrefix(tag, "-") || strings.HasSuffix(tag, "-") {
		return "", fmt.Errorf("tag %q cannot start or end with a dash", tag)
	}
	for _, c := range tag {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '-' {
			return "", fmt.Errorf("tag %q can only contain lowercase letters, numbers, and dashes", tag)
		}
	}
	return tag, nil
}
