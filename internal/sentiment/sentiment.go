package sentiment

import (
	"math"
	"strings"
	"unicode"

	"reelsense/internal/textutil"
)

// Sentiment labels.
const (
	LabelVeryPositive = "Very Positive"
	LabelPositive     = "Positive"
	LabelNeutral      = "Neutral"
	LabelNegative     = "Negative"
	LabelVeryNegative = "Very Negative"
)

const (
	negationWindow   = 3
	negationFactor   = -0.5
	exclamationBoost = 1.25
)

var negations = map[string]struct{}{
	"not": {}, "never": {}, "no": {}, "don't": {}, "dont": {}, "can't": {}, "cannot": {},
	"won't": {}, "ain't": {}, "isn't": {}, "aren't": {}, "wasn't": {}, "didn't": {}, "doesn't": {},
}

var commonWords = map[string]struct{}{
	"the": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {},
	"to": {}, "for": {}, "of": {}, "with": {}, "by": {},
}

// Thresholds are the polarity cut-offs for labelling.
type Thresholds struct {
	VeryPositive float64
	Positive     float64
	Negative     float64
	VeryNegative float64
}

// DefaultThresholds returns the standard label cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{VeryPositive: 0.2, Positive: 0.05, Negative: -0.05, VeryNegative: -0.2}
}

// Result is the sentiment section of an analysis.
type Result struct {
	Text         string         `json:"text"`
	Polarity     float64        `json:"polarity"`
	Subjectivity float64        `json:"subjectivity"`
	Sentiment    string         `json:"sentiment"`
	Emotions     map[string]int `json:"emotions"`
	Themes       map[string]int `json:"themes"`
	Confidence   float64        `json:"confidence"`
}

// Analyzer scores text against a lexicon.
type Analyzer struct {
	lexicon    Lexicon
	thresholds Thresholds
}

// NewAnalyzer returns an analyzer using the embedded lexicon.
func NewAnalyzer(thresholds Thresholds) *Analyzer {
	return &Analyzer{lexicon: DefaultLexicon(), thresholds: thresholds}
}

// NewAnalyzerWithLexicon returns an analyzer using lex.
func NewAnalyzerWithLexicon(lex Lexicon, thresholds Thresholds) *Analyzer {
	return &Analyzer{lexicon: lex, thresholds: thresholds}
}

// Analyze produces the full sentiment result for text.
func (a *Analyzer) Analyze(text string) Result {
	polarity, subjectivity := a.Score(text)
	return Result{
		Text:         text,
		Polarity:     polarity,
		Subjectivity: subjectivity,
		Sentiment:    Label(polarity, a.thresholds),
		Emotions:     Emotions(text),
		Themes:       Themes(text),
		Confidence:   Confidence(text),
	}
}

type assessment struct {
	polarity     float64
	subjectivity float64
}

// Score returns polarity in [-1, 1] and subjectivity in [0, 1].
func (a *Analyzer) Score(text string) (float64, float64) {
	tokens := tokenize(text)
	scored := make([]assessment, 0, len(tokens)/4)
	modifier := 1.0
	boostable := false

	for i, tok := range tokens {
		if tok == "!" {
			if boostable {
				scored[len(scored)-1].polarity *= exclamationBoost
				boostable = false
			}
			continue
		}
		entry, ok := a.lexicon[tok]
		if !ok {
			continue
		}
		if entry.Intensity != 1 && i+1 < len(tokens) {
			if _, next := a.lexicon[tokens[i+1]]; next {
				modifier = entry.Intensity
				continue
			}
		}
		if entry.Intensity != 1 && entry.Polarity == 0 && entry.Subjectivity == 0 {
			// Bare modifier with nothing to modify.
			continue
		}
		p := entry.Polarity * modifier
		s := entry.Subjectivity * modifier
		modifier = 1
		if negated(tokens, i) {
			p *= negationFactor
		}
		scored = append(scored, assessment{polarity: p, subjectivity: s})
		boostable = true
	}

	if len(scored) == 0 {
		return 0, 0
	}
	var sumP, sumS float64
	for _, s := range scored {
		sumP += s.polarity
		sumS += s.subjectivity
	}
	n := float64(len(scored))
	return clampRange(sumP/n, -1, 1), clampRange(sumS/n, 0, 1)
}

func negated(tokens []string, i int) bool {
	for j := i - 1; j >= 0 && j >= i-negationWindow; j-- {
		if _, ok := negations[tokens[j]]; ok {
			return true
		}
	}
	return false
}

// tokenize folds text into word tokens and standalone "!" tokens.
func tokenize(text string) []string {
	folded := textutil.Fold(strings.ReplaceAll(text, "’", "'"))
	tokens := make([]string, 0, 16)
	var word strings.Builder
	flush := func() {
		if w := strings.Trim(word.String(), "'"); w != "" {
			tokens = append(tokens, w)
		}
		word.Reset()
	}
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '\'':
			word.WriteRune(r)
		case r == '!':
			flush()
			tokens = append(tokens, "!")
		default:
			flush()
		}
	}
	flush()
	return tokens
}

// Label maps polarity to a sentiment label.
func Label(polarity float64, t Thresholds) string {
	switch {
	case polarity > t.VeryPositive:
		return LabelVeryPositive
	case polarity > t.Positive:
		return LabelPositive
	case polarity < t.VeryNegative:
		return LabelVeryNegative
	case polarity < t.Negative:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// Confidence estimates how much usable lyric text a transcript holds from
// its word count, sentence count, and share of common English function words.
func Confidence(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	sentences := 0
	for _, s := range strings.Split(text, ".") {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}
	common := 0
	for _, w := range words {
		if _, ok := commonWords[strings.ToLower(w)]; ok {
			common++
		}
	}
	wordScore := math.Min(float64(len(words))/50, 1)
	sentenceScore := math.Min(float64(sentences)/10, 1)
	commonScore := math.Min(float64(common)/float64(len(words)), 1)
	return round(0.4*wordScore+0.3*sentenceScore+0.3*commonScore, 3)
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

func clampRange(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
