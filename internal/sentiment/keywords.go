package sentiment

import "strings"

type keywordGroup struct {
	name     string
	keywords []string
}

var emotionGroups = []keywordGroup{
	{"love", []string{"love", "heart", "hold me", "romantic", "passion", "forever"}},
	{"joy", []string{"happy", "joy", "smile", "dance", "celebrate", "fun"}},
	{"sadness", []string{"sad", "cry", "tears", "pain", "lonely", "hurt"}},
	{"energy", []string{"fire", "burn", "power", "strong", "energy", "wild"}},
	{"mystery", []string{"dark", "moon", "night", "magic", "mystery", "shadow"}},
	{"freedom", []string{"wind", "fly", "free", "escape", "run", "break"}},
	{"hope", []string{"hope", "dream", "future", "believe", "faith", "light"}},
}

var themeGroups = []keywordGroup{
	{"romance", []string{"love", "heart", "kiss", "romance", "relationship"}},
	{"empowerment", []string{"strong", "power", "freedom", "independent", "confident"}},
	{"nature", []string{"wind", "fire", "earth", "water", "moon", "sun"}},
	{"life", []string{"life", "live", "die", "birth", "death", "soul"}},
	{"music", []string{"song", "music", "beat", "rhythm", "melody", "voice"}},
	{"journey", []string{"road", "journey", "travel", "path", "way", "destination"}},
}

// Emotions counts, per emotion, how many of its keywords occur in text.
// Matching is by substring of the lowercased text; zero counts are omitted.
func Emotions(text string) map[string]int {
	return countGroups(emotionGroups, text)
}

// Themes counts lyric theme keywords the same way Emotions does.
func Themes(text string) map[string]int {
	return countGroups(themeGroups, text)
}

func countGroups(groups []keywordGroup, text string) map[string]int {
	lower := strings.ToLower(text)
	counts := make(map[string]int)
	for _, group := range groups {
		n := 0
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				n++
			}
		}
		if n > 0 {
			counts[group.name] = n
		}
	}
	return counts
}
