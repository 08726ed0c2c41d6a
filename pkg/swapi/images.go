package swapi

import (
	"fmt"
	"strings"
)

// DefaultImageBase serves character portraits keyed by the synthesized id
const DefaultImageBase = "https://starwars-visualguide.com/assets/img/characters"

// ImageURL resolves the portrait URL for a character id
func ImageURL(base string, id int) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = DefaultImageBase
	}
	return fmt.Sprintf("%s/%d.jpg", base, id)
}
