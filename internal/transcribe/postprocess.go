package transcribe

import (
	"regexp"
	"strings"
)

var (
	// A fragment of one or two bare alphabetic words carries no lyric content.
	noiseLine = regexp.MustCompile(`^[A-Za-z]+(\s+[A-Za-z]+)?$`)
	strayChar = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?'-]`)
)

const minFragmentChars = 4

// PostProcess cleans a raw music transcript: whitespace is collapsed, the
// text is split into sentence fragments on '.', short or noise-like
// fragments are dropped, and stray punctuation is stripped.
func PostProcess(text string) string {
	text = strings.Join(strings.Fields(text), " ")

	kept := make([]string, 0, 8)
	for _, fragment := range strings.Split(text, ".") {
		fragment = strings.TrimSpace(fragment)
		if len([]rune(fragment)) < minFragmentChars {
			continue
		}
		if len(strings.Fields(fragment)) < 2 {
			continue
		}
		if isNoise(fragment) {
			continue
		}
		kept = append(kept, fragment)
	}

	return strayChar.ReplaceAllString(strings.Join(kept, ". "), "")
}

func isNoise(fragment string) bool {
	return noiseLine.MatchString(strings.TrimSpace(fragment))
}
