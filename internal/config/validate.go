package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"reelsense/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateSentiment(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if c.Concepts.Count < 1 {
		return errors.New("concepts.count must be >= 1")
	}
	if c.History.Enabled && strings.TrimSpace(c.History.Path) == "" {
		return errors.New("history.path must be set when history.enabled is true")
	}
	return nil
}

// ValidModelSize reports whether size is one of the accepted model sizes.
func ValidModelSize(size string) bool {
	return slices.Contains(ModelSizes, strings.ToLower(strings.TrimSpace(size)))
}

func (c *Config) validateTranscription() error {
	t := c.Transcription
	switch t.Backend {
	case BackendWhisperX, BackendOpenAI:
	default:
		return fmt.Errorf("transcription.backend must be %q or %q, got %q", BackendWhisperX, BackendOpenAI, t.Backend)
	}
	if !ValidModelSize(t.Model) {
		return fmt.Errorf("transcription.model must be one of %s, got %q", strings.Join(ModelSizes, ", "), t.Model)
	}
	if !language.Valid(t.Language) {
		return fmt.Errorf("transcription.language %q is not a recognized language (use \"auto\" to detect)", t.Language)
	}
	switch t.VADMethod {
	case "silero", "pyannote":
	default:
		return fmt.Errorf("transcription.vad_method must be silero or pyannote, got %q", t.VADMethod)
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.HopLength > c.Audio.FrameLength {
		return errors.New("audio.hop_length must not exceed audio.frame_length")
	}
	if c.Audio.FrameLength&(c.Audio.FrameLength-1) != 0 {
		return errors.New("audio.frame_length must be a power of two")
	}
	if c.Audio.VocalFreqLow >= c.Audio.VocalFreqHigh {
		return errors.New("audio.vocal_freq_low must be below audio.vocal_freq_high")
	}
	if c.Audio.NoiseCutoff >= 1 {
		return errors.New("audio.noise_cutoff must be between 0 and 1 (fraction of Nyquist)")
	}
	if c.Audio.VocalMix < 0 || c.Audio.VocalMix > 1 {
		return errors.New("audio.vocal_mix must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateSentiment() error {
	s := c.Sentiment
	if !(s.VeryPositive > s.Positive && s.Positive >= s.Negative && s.Negative > s.VeryNegative) {
		return errors.New("sentiment thresholds must satisfy very_positive > positive >= negative > very_negative")
	}
	for key, value := range map[string]float64{
		"sentiment.very_positive": s.VeryPositive,
		"sentiment.positive":      s.Positive,
		"sentiment.negative":      s.Negative,
		"sentiment.very_negative": s.VeryNegative,
	} {
		if value < -1 || value > 1 {
			return fmt.Errorf("%s must be between -1 and 1", key)
		}
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	return nil
}
