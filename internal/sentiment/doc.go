// Package sentiment scores lyric text with an embedded polarity lexicon and
// counts emotion and theme keywords.
//
// Scoring follows the pattern-style approach: each adjective or adverb found
// in the lexicon contributes a polarity and subjectivity, intensifiers scale
// the word that follows them, a negation within the three preceding tokens
// flips and dampens polarity, and an exclamation mark emphasizes the last
// scored word. The document score is the mean over scored words.
package sentiment
