package engine

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	stripPolicy = func() *bluemonday.Policy {
		p := bluemonday.StrictPolicy()
		p.AddSpaceWhenStrippingTag(true)
		return p
	}()
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// StripHTML turns an event description into plain text suitable for keyword
// matching and display snippets.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	plain := html.UnescapeString(stripPolicy.Sanitize(s))
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(plain, " "))
}

func lower(parts ...string) string {
	return strings.ToLower(strings.Join(parts, " "))
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

// capitalize upper-cases the first letter of an ASCII keyword.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
