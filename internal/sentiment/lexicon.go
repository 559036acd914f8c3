package sentiment

import (
	"bufio"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

//go:embed lexicon.tsv
var lexiconData string

// Entry is one lexicon word.
type Entry struct {
	Polarity     float64
	Subjectivity float64
	// Intensity other than 1 marks a modifier that scales the next word.
	Intensity float64
}

// Lexicon maps folded words to their entries.
type Lexicon map[string]Entry

var defaultLexicon = sync.OnceValue(func() Lexicon {
	lex, err := ParseLexicon(lexiconData)
	if err != nil {
		panic(fmt.Sprintf("sentiment: embedded lexicon: %v", err))
	}
	return lex
})

// DefaultLexicon returns the embedded lexicon.
func DefaultLexicon() Lexicon {
	return defaultLexicon()
}

// ParseLexicon reads whitespace-separated rows of word, polarity,
// subjectivity, and intensity. Lines starting with '#' are comments.
func ParseLexicon(data string) (Lexicon, error) {
	lex := make(Lexicon)
	scanner := bufio.NewScanner(strings.NewReader(data))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 4 {
			return nil, fmt.Errorf("line %d: expected 4 fields, got %d", line, len(fields))
		}
		values := make([]float64, 3)
		for i, raw := range fields[1:] {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			values[i] = v
		}
		lex[strings.ToLower(fields[0])] = Entry{Polarity: values[0], Subjectivity: values[1], Intensity: values[2]}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lex, nil
}
