package meta

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// cleanText strips any markup authored into display text. The renderer
// writes text as DOM text nodes, so the sanitizer's entity escaping is undone.
func cleanText(raw string) string {
	if !strings.ContainsAny(raw, "<>") {
		return raw
	}
	return html.UnescapeString(textSanitizer().Sanitize(raw))
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
