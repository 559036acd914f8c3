// Package config loads, normalizes, and validates reelsense configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENROUTER_API_KEY and OPENAI_API_KEY. The Config type centralizes every
// knob the CLI needs, from the Whisper model size to the sentiment label
// thresholds.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
