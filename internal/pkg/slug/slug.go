// internal/pkg/slug/slug.go
package slug

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Make turns free text into a URL-friendly slug ("Dog Food (Dogs)" -> "dog-food-dogs")
func Make(text string) string {
	s := nonAlnum.ReplaceAllString(strings.ToLower(text), "-")
	return strings.Trim(s, "-")
}
