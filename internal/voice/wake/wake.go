// Package wake implements multi-stage wake-word detection over buffered
// standby audio.
//
// Transcription is by far the most expensive stage, so two cheap energy gates
// must reject clear non-speech before that cost is paid:
//
//  1. Coarse energy gate (default threshold 0.02).
//  2. Strict energy gate (default 0.05).
//  3. Transcription of the buffer via the STT provider; segment texts are
//     lower-cased and joined.
//  4. Fuzzy match: for each candidate phrase (the configured wake word plus a
//     fixed synonym set), the normalized similarity ratio against each
//     whitespace-delimited transcript token. Any ratio above 0.85 is a match.
//
// A failure at any stage returns false without side effects. On success the
// detector fires its activation callback, which transitions the session to
// active listening and clears leftover queued audio.
package wake

import (
	"context"
	"log/slog"
	"strings"

	"github.com/in2theCODE/MyCODEagent/internal/voice/fuzzy"
	"github.com/in2theCODE/MyCODEagent/internal/voice/vad"
	"github.com/in2theCODE/MyCODEagent/pkg/provider/stt"
)

const (
	defaultCoarseThreshold = 0.02
	defaultStrictThreshold = 0.05
	defaultMatchThreshold  = 0.85
)

// phraseVariants are the hard-coded activation synonyms checked alongside the
// configured wake phrase, compensating for common mis-transcriptions.
var phraseVariants = []string{
	"hey aiden",
	"hi aiden",
	"okay aiden",
	"hey assistant",
	"hello aiden",
}

// Config holds the tuning knobs for a Detector.
type Config struct {
	// Phrase is the configured wake word (e.g., "hey aiden"). Matched
	// case-insensitively alongside the built-in variant set.
	Phrase string

	// CoarseThreshold is the first energy gate. Default: 0.02.
	CoarseThreshold float64

	// StrictThreshold is the second, stricter energy gate. Must be greater
	// than CoarseThreshold to be useful. Default: 0.05.
	StrictThreshold float64

	// MatchThreshold is the minimum similarity ratio between a candidate
	// phrase and a transcript token. Default: 0.85.
	MatchThreshold float64
}

// Detector runs the staged wake-word check. Safe for concurrent use; all
// mutable state lives in the caller; the detector itself is read-only after
// construction.
type Detector struct {
	phrases []string
	coarse  float64
	strict  float64
	match   float64

	transcriber stt.Transcriber
	onWake      func(ctx context.Context)
}

// New creates a Detector. onWake is invoked on successful detection, before
// Check returns true; pass the session's activation transition. A nil onWake
// makes detection side-effect free (useful in tests).
func New(cfg Config, transcriber stt.Transcriber, onWake func(ctx context.Context)) *Detector {
	if cfg.CoarseThreshold <= 0 {
		cfg.CoarseThreshold = defaultCoarseThreshold
	}
	if cfg.StrictThreshold <= 0 {
		cfg.StrictThreshold = defaultStrictThreshold
	}
	if cfg.MatchThreshold <= 0 {
		cfg.MatchThreshold = defaultMatchThreshold
	}

	phrases := make([]string, 0, len(phraseVariants)+1)
	seen := make(map[string]struct{}, len(phraseVariants)+1)
	add := func(p string) {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			return
		}
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		phrases = append(phrases, p)
	}
	add(cfg.Phrase)
	for _, v := range phraseVariants {
		add(v)
	}

	return &Detector{
		phrases:     phrases,
		coarse:      cfg.CoarseThreshold,
		strict:      cfg.StrictThreshold,
		match:       cfg.MatchThreshold,
		transcriber: transcriber,
		onWake:      onWake,
	}
}

// Check reports whether the buffered audio contains the activation phrase.
// Stages short-circuit on first failure; transcription errors are logged and
// treated as a negative result, never propagated.
func (d *Detector) Check(ctx context.Context, samples []float32) bool {
	// Stage 1+2: energy gates reject non-speech before transcription.
	if !vad.DetectAt(samples, d.coarse) {
		return false
	}
	if !vad.DetectAt(samples, d.strict) {
		return false
	}

	// Stage 3: transcribe.
	segments, err := d.transcriber.Transcribe(ctx, samples)
	if err != nil {
		slog.Error("wake: transcription failed", "error", err)
		return false
	}
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, strings.ToLower(seg.Text))
	}
	text := strings.Join(parts, " ")
	if strings.TrimSpace(text) == "" {
		return false
	}

	// Stage 4: fuzzy phrase match against transcript tokens.
	var best float64
	matched := false
	for _, phrase := range d.phrases {
		if r := fuzzy.BestTokenRatio(phrase, text); r > best {
			best = r
		}
		if best > d.match {
			matched = true
			break
		}
	}
	if !matched {
		slog.Debug("wake: no phrase match", "text", text, "best_ratio", best)
		return false
	}

	slog.Info("wake: wake word detected", "confidence", best)
	if d.onWake != nil {
		d.onWake(ctx)
	}
	return true
}
