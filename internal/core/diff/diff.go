// Package diff provides pure functions over device-produced diff text.
// The device already computes the diff between running and staged
// configuration; this package only derives statistics from it.
package diff

import "strings"

// Stats counts added and removed lines in unified-diff-style text.
// A line counts as added when it starts with "+" but is not a "+++"
// file header, and as removed when it starts with "-" but is not a
// "---" header. "@@" hunk markers are ignored.
func Stats(text string) (added, removed int) {
	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"):
		case strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "@@"):
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	return added, removed
}

// Empty reports whether diff text contains no changed lines.
func Empty(text string) bool {
	added, removed := Stats(text)
	return added == 0 && removed == 0
}
