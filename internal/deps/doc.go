// Package deps reports whether the external binaries reelsense shells out to
// (ffmpeg, ffprobe, uvx) can be found on PATH.
package deps
