package language

import (
	"strings"

	xlang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Auto asks the transcriber to detect the spoken language itself.
const Auto = "auto"

// Spelled-out names accepted in addition to BCP 47 tags and ISO codes.
var byWord = map[string]string{
	"english":    "en",
	"spanish":    "es",
	"espanol":    "es",
	"español":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"japanese":   "ja",
	"korean":     "ko",
	"chinese":    "zh",
	"russian":    "ru",
	"arabic":     "ar",
	"hindi":      "hi",
	"dutch":      "nl",
	"polish":     "pl",
	"swedish":    "sv",
}

// ToISO2 converts a language tag, ISO 639 code, or English word to the
// two-letter ISO 639-1 code Whisper expects. It returns an empty string for
// Auto and for input it cannot recognize.
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" || code == Auto {
		return ""
	}
	if iso, ok := byWord[code]; ok {
		return iso
	}
	tag, err := xlang.Parse(code)
	if err != nil {
		return ""
	}
	base, confidence := tag.Base()
	if confidence == xlang.No {
		return ""
	}
	return base.String()
}

// Valid reports whether code is Auto or resolves to a known language.
func Valid(code string) bool {
	code = strings.ToLower(strings.TrimSpace(code))
	return code == Auto || ToISO2(code) != ""
}

// DisplayName returns the English name for a language code.
// Returns "Auto-detect" for Auto, "Unknown" for empty input, and the uppercased
// code for unrecognized input.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	switch {
	case trimmed == "":
		return "Unknown"
	case strings.EqualFold(trimmed, Auto):
		return "Auto-detect"
	}
	iso := ToISO2(trimmed)
	if iso == "" {
		return strings.ToUpper(trimmed)
	}
	if name := display.English.Languages().Name(xlang.Make(iso)); name != "" {
		return name
	}
	return strings.ToUpper(iso)
}
