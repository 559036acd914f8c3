// Package textutil provides text processing helpers shared by the analysis
// packages.
//
//   - Fold normalizes lyrics for lexicon lookups (lowercase, no
//     diacritics).
//   - Fingerprint and CosineSimilarity compare generated reel concepts so
//     near-duplicate variations can be flagged.
//   - SanitizeFileName makes audio file stems safe for output file names.
package textutil
