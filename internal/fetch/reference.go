package fetch

import (
	"fmt"
	"regexp"
	"strings"
)

// MinIDLength is the shortest string accepted as a file ID. Anything shorter is
// a truncated or placeholder value and is rejected without network access.
const MinIDLength = 10

// idPatterns are the sharing-URL shapes an ID can be extracted from, tried in order.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`open\?id=([a-zA-Z0-9_-]+)`),
}

// NormalizeReference turns a stored reference (raw ID or sharing URL) into a
// bare file ID. On failure the ID is empty and diagnostic says why.
func NormalizeReference(ref string) (id string, diagnostic string) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.EqualFold(ref, "null") {
		return "", "empty file ID"
	}

	id = ref
	if looksLikeURL(ref) {
		extracted := ""
		for _, p := range idPatterns {
			if m := p.FindStringSubmatch(ref); m != nil {
				extracted = m[1]
				break
			}
		}
		if extracted == "" {
			return "", "could not extract ID from URL"
		}
		id = extracted
	}

	if i := strings.IndexAny(id, "/?"); i >= 0 {
		id = id[:i]
	}
	id = strings.TrimSpace(id)
	if len(id) < MinIDLength {
		return "", fmt.Sprintf("invalid file ID (too short): %q", id)
	}
	return id, ""
}

func looksLikeURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.Contains(lower, "://") ||
		strings.HasPrefix(lower, "www.") ||
		strings.Contains(lower, "drive.google.com") ||
		strings.Contains(lower, "docs.google.com")
}
