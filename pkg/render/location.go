package render

import (
	"net/url"
	"strings"
)

// withQuery returns location with key set to value. Other parameters keep
// their position; repeated keys collapse into the first occurrence.
func withQuery(location *url.URL, key, value string) string {
	u := url.URL{}
	if location != nil {
		u = *location
	}
	pair := url.QueryEscape(key) + "=" + url.QueryEscape(value)

	var parts []string
	replaced := false
	for _, part := range strings.Split(u.RawQuery, "&") {
		if part == "" {
			continue
		}
		name, _, _ := strings.Cut(part, "=")
		if decoded, err := url.QueryUnescape(name); err == nil && decoded == key {
			if !replaced {
				parts = append(parts, pair)
				replaced = true
			}
			continue
		}
		parts = append(parts, part)
	}
	if !replaced {
		parts = append(parts, pair)
	}
	u.RawQuery = strings.Join(parts, "&")
	u.ForceQuery = false
	return u.String()
}
