package textutil

import (
	"regexp"
	"strings"
)

var unsafeFilenameRegex = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SafeFilename reduces an arbitrary identifier (like an order number
// scraped off a page) to something safe to use as a file name component.
func SafeFilename(name string) string {
	name = strings.Trim(name, " \n\t")
	name = unsafeFilenameRegex.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "unknown"
	}
	return name
}
