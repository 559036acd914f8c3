// Package fileutil holds small filesystem helpers: atomic writes for result
// files, content hashing for the transcription cache, and reserved temp paths
// for intermediate audio.
package fileutil
