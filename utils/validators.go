// File: /utils/validators.go
package utils

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

const MaxCommentLength = 2000

// Comments are plain text; every tag is stripped.
var contentPolicy = bluemonday.StrictPolicy()

// maxEntityPasses bounds decoding of nested entity encodings.
const maxEntityPasses = 4

// SanitizeContent strips markup and surrounding whitespace from user text.
// Entity-encoded markup is decoded before the policy runs, and the policy's
// escaped output is what gets stored.
func SanitizeContent(raw string) string {
	decoded := raw
	for i := 0; i < maxEntityPasses; i++ {
		next := html.UnescapeString(decoded)
		if next == decoded {
			break
		}
		decoded = next
	}
	return strings.TrimSpace(contentPolicy.Sanitize(decoded))
}

// CleanComment sanitizes a comment body and enforces the length bounds.
func CleanComment(raw string) (string, error) {
	content := SanitizeContent(raw)
	if content == "" {
		return "", Validation("comment must not be empty")
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return "", Validation("comment must be at most %d characters", MaxCommentLength)
	}
	return content, nil
}

