package textutil

import "strings"

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. Unicode letters are preserved. Returns "audio" when
// nothing usable remains.
func SanitizeFileName(name string) string {
	cleaned := strings.TrimSpace(fileNameReplacer.Replace(strings.TrimSpace(name)))
	cleaned = strings.Trim(cleaned, ".")
	if cleaned == "" {
		return "audio"
	}
	return cleaned
}
