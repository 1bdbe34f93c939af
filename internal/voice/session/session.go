// Package session drives the voice-assistant lifecycle: standby wake-word
// scanning, active command listening, and spoken confirmations.
//
// Concurrency model. The capture callback is the sole audio producer: it
// classifies each frame with the energy detector, appends voiced standby
// audio to the standby buffer or live frames to the frame queue, and returns
// immediately, never blocking and never changing state. The background loop
// is the sole consumer and the only goroutine that transitions state; the
// callback reads state atomically to decide routing. The standby buffer is
// the one structure touched by both sides and is guarded by a mutex.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/in2theCODE/MyCODEagent/internal/observe"
	"github.com/in2theCODE/MyCODEagent/internal/voice/command"
	"github.com/in2theCODE/MyCODEagent/internal/voice/vad"
	"github.com/in2theCODE/MyCODEagent/internal/voice/wake"
	"github.com/in2theCODE/MyCODEagent/pkg/audio"
	"github.com/in2theCODE/MyCODEagent/pkg/provider/capture"
	"github.com/in2theCODE/MyCODEagent/pkg/provider/stt"
	"github.com/in2theCODE/MyCODEagent/pkg/provider/tts"
)

const (
	defaultSampleRate = 16000
	defaultFrameSize  = 1024

	// standbyBufferSamples is the standby window handed to the wake check,
	// 3 seconds at 16 kHz.
	standbyBufferSamples = 48000

	// defaultSilenceCycles is the number of consecutive silent frames in the
	// active state after which the session returns to standby.
	defaultSilenceCycles = 50

	// endOfUtteranceFrames is the trailing silence, in frames, that ends an
	// utterance once speech has been heard. Roughly one second of audio at
	// 1024 samples per frame and 16 kHz.
	endOfUtteranceFrames = 15

	defaultConfirmationTimeout = 5 * time.Second

	// idlePollInterval is how long the loop yields when no audio is queued.
	idlePollInterval = 25 * time.Millisecond
)

// Spoken session responses.
const (
	msgActivated = "Yes? I'm listening."
	msgGoodbye   = "Goodbye."
	msgStandby   = "Going back to standby."
)

// stopPhrases end active listening and return the session to standby.
var stopPhrases = []string{"stop listening", "goodbye"}

// affirmations confirm a pending confirmation-required command. Any other
// response cancels it silently.
var affirmations = []string{"yes", "yeah", "sure", "okay", "confirm"}

// Config holds session tuning. Zero values fall back to defaults.
type Config struct {
	// WakePhrase is the configured activation phrase.
	WakePhrase string

	// SampleRate and FrameSize describe the capture stream.
	SampleRate int
	FrameSize  int

	// SilenceThreshold is the voice-activity energy threshold.
	SilenceThreshold float64

	// SilenceCycles is the consecutive-silent-frame count that sends the
	// active session back to standby. Default: 50.
	SilenceCycles int

	// ConfirmationTimeout bounds how long a pending confirmation waits for a
	// spoken answer. Default: 5s.
	ConfirmationTimeout time.Duration

	// Wake carries the wake-word gate thresholds.
	Wake wake.Config
}

// Deps are the session's collaborators.
type Deps struct {
	Capture     capture.Provider
	Transcriber stt.Transcriber
	Speaker     tts.Speaker
	Processor   *command.Processor
	Executor    *command.Executor

	// Metrics defaults to observe.DefaultMetrics when nil.
	Metrics *observe.Metrics
}

// Session owns the full standby/active voice pipeline.
type Session struct {
	cfg Config

	capture     capture.Provider
	transcriber stt.Transcriber
	speaker     tts.Speaker
	processor   *command.Processor
	executor    *command.Executor
	metrics     *observe.Metrics
	wake        *wake.Detector
	vad         *vad.Detector

	state stateBox

	// standbyBuf accumulates frames while in standby; shared with the
	// capture callback.
	bufMu      sync.Mutex
	standbyBuf []float32

	// wakeQueue carries full standby windows to the loop; frameQueue carries
	// live frames while active.
	wakeQueue  *audio.Queue
	frameQueue *audio.Queue

	// Loop-local utterance assembly.
	utterance          []float32
	speechSeen         bool
	trailingSilence    int
	consecutiveSilence int
	confirmDeadline    time.Time

	stream  capture.Stream
	running atomic.Bool
	done    chan struct{}

	// Injectable for tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// New creates a Session wired to deps.
func New(cfg Config, deps Deps) *Session {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = defaultSampleRate
	}
	if cfg.FrameSize <= 0 {
		cfg.FrameSize = defaultFrameSize
	}
	if cfg.SilenceCycles <= 0 {
		cfg.SilenceCycles = defaultSilenceCycles
	}
	if cfg.ConfirmationTimeout <= 0 {
		cfg.ConfirmationTimeout = defaultConfirmationTimeout
	}
	if cfg.Wake.Phrase == "" {
		cfg.Wake.Phrase = cfg.WakePhrase
	}

	metrics := deps.Metrics
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}

	s := &Session{
		cfg:         cfg,
		capture:     deps.Capture,
		transcriber: deps.Transcriber,
		speaker:     deps.Speaker,
		processor:   deps.Processor,
		executor:    deps.Executor,
		metrics:     metrics,
		vad:         vad.New(cfg.SilenceThreshold),
		wakeQueue:   audio.NewQueue(),
		frameQueue:  audio.NewQueue(),
		now:         time.Now,
		sleep:       time.Sleep,
	}
	s.wake = wake.New(cfg.Wake, deps.Transcriber, s.activate)
	return s
}

// State returns the current session state.
func (s *Session) State() State {
	return s.state.load()
}

// Start opens the capture stream and launches the processing loop. The loop
// runs until Stop is called or ctx is cancelled.
func (s *Session) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("session: already running")
	}

	stream, err := s.capture.Open(capture.StreamConfig{
		SampleRate: s.cfg.SampleRate,
		FrameSize:  s.cfg.FrameSize,
	}, s.onFrame)
	if err != nil {
		s.running.Store(false)
		return err
	}
	s.stream = stream
	s.done = make(chan struct{})
	s.metrics.ActiveSessions.Add(ctx, 1)
	slog.Info("session: started",
		"wake_phrase", s.cfg.Wake.Phrase,
		"sample_rate", s.cfg.SampleRate,
		"frame_size", s.cfg.FrameSize)

	go s.run(ctx)
	return nil
}

// Stop halts capture and waits for the processing loop to drain. Safe to call
// more than once.
func (s *Session) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	stopErr := s.stream.Stop()
	<-s.done
	closeErr := s.stream.Close()
	s.metrics.ActiveSessions.Add(context.Background(), -1)
	slog.Info("session: stopped")
	return errors.Join(stopErr, closeErr)
}

// onFrame is the capture callback. It classifies the frame and routes it by
// the current state, then returns; all heavy work happens on the loop
// goroutine. In standby only voiced frames are buffered, so pure silence
// never assembles a wake-check window.
func (s *Session) onFrame(frame audio.Frame) {
	switch s.state.load() {
	case StateStandby, StateActivating:
		if !s.vad.Detect(frame.Samples) {
			return
		}
		var flush []float32
		s.bufMu.Lock()
		s.standbyBuf = append(s.standbyBuf, frame.Samples...)
		if len(s.standbyBuf) >= standbyBufferSamples {
			flush = s.standbyBuf
			s.standbyBuf = nil
		}
		s.bufMu.Unlock()
		if flush != nil {
			s.wakeQueue.Push(flush)
		}
	default:
		// The capture layer reuses the sample slice between callbacks.
		buf := make([]float32, len(frame.Samples))
		copy(buf, frame.Samples)
		s.frameQueue.Push(buf)
	}
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)
	for s.running.Load() {
		if ctx.Err() != nil {
			return
		}
		if !s.tick(ctx) {
			s.sleep(idlePollInterval)
		}
	}
}

// tick performs at most one unit of work and reports whether any was done.
func (s *Session) tick(ctx context.Context) bool {
	switch s.state.load() {
	case StateStandby:
		window, ok := s.wakeQueue.Pop()
		if !ok {
			return false
		}
		start := s.now()
		s.wake.Check(ctx, window)
		s.metrics.WakeCheckDuration.Record(ctx, s.now().Sub(start).Seconds())
		return true

	case StateActive, StateAwaitingConfirmation:
		if s.state.load() == StateAwaitingConfirmation && s.now().After(s.confirmDeadline) {
			slog.Info("session: confirmation window expired")
			s.executor.Cancel()
			s.state.store(StateActive)
			s.resetUtterance()
			return true
		}
		frame, ok := s.frameQueue.Pop()
		if !ok {
			return false
		}
		s.consumeFrame(ctx, frame)
		return true
	}
	return false
}

// activate is fired by the wake detector on a successful check. It runs on
// the loop goroutine, inside the standby tick.
func (s *Session) activate(ctx context.Context) {
	s.state.store(StateActivating)
	s.metrics.RecordWakeDetection(ctx, s.cfg.Wake.Phrase)
	slog.Info("session: wake word detected", "phrase", s.cfg.Wake.Phrase)

	s.speak(ctx, msgActivated)

	// Drop audio gathered before and during the acknowledgment so the
	// assistant does not transcribe itself.
	s.resetAudio()
	s.resetUtterance()
	s.consecutiveSilence = 0
	s.state.store(StateActive)
}

// enterStandby returns the session to wake-word scanning, discarding any
// pending confirmation and buffered audio.
func (s *Session) enterStandby(reason string) {
	slog.Info("session: entering standby", "reason", reason)
	s.executor.Cancel()
	s.state.store(StateStandby)
	s.resetAudio()
	s.resetUtterance()
	s.consecutiveSilence = 0
}

func (s *Session) resetAudio() {
	s.bufMu.Lock()
	s.standbyBuf = nil
	s.bufMu.Unlock()
	s.wakeQueue.Clear()
	s.frameQueue.Clear()
}

func (s *Session) resetUtterance() {
	s.utterance = nil
	s.speechSeen = false
	s.trailingSilence = 0
}

// consumeFrame folds one live frame into the current utterance and watches
// for end-of-utterance and prolonged silence.
func (s *Session) consumeFrame(ctx context.Context, frame []float32) {
	if s.vad.Detect(frame) {
		s.consecutiveSilence = 0
		s.trailingSilence = 0
		s.speechSeen = true
		s.utterance = append(s.utterance, frame...)
		return
	}

	s.consecutiveSilence++
	if s.speechSeen {
		s.trailingSilence++
		s.utterance = append(s.utterance, frame...)
		if s.trailingSilence >= endOfUtteranceFrames {
			s.finalizeUtterance(ctx)
		}
	}
	if s.consecutiveSilence >= s.cfg.SilenceCycles {
		s.speak(ctx, msgStandby)
		s.enterStandby("prolonged silence")
	}
}

// finalizeUtterance transcribes the assembled utterance and hands the text to
// command handling.
func (s *Session) finalizeUtterance(ctx context.Context) {
	samples := s.utterance
	s.resetUtterance()

	ctx, span := observe.StartSpan(ctx, "session.utterance")
	defer span.End()

	start := s.now()
	segments, err := s.transcriber.Transcribe(ctx, samples)
	s.metrics.STTDuration.Record(ctx, s.now().Sub(start).Seconds())
	if err != nil {
		observe.Logger(ctx).Error("session: transcription failed", "error", err)
		s.metrics.RecordProviderRequest(ctx, "stt", "transcribe", "error")
		s.metrics.RecordProviderError(ctx, "stt", "transcribe")
		return
	}
	s.metrics.RecordProviderRequest(ctx, "stt", "transcribe", "ok")

	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if t := strings.TrimSpace(seg.Text); t != "" {
			parts = append(parts, strings.ToLower(t))
		}
	}
	text := strings.Join(parts, " ")
	if text == "" {
		return
	}
	slog.Debug("session: utterance transcribed", "text", text)
	s.handleUtterance(ctx, text)
}

// handleUtterance routes transcribed text: stop phrases, confirmation
// answers, and regular command processing.
func (s *Session) handleUtterance(ctx context.Context, text string) {
	if isStopPhrase(text) {
		s.speak(ctx, msgGoodbye)
		s.enterStandby("stop phrase")
		return
	}

	if s.state.load() == StateAwaitingConfirmation {
		s.resolveConfirmation(ctx, text)
		return
	}

	ctx, span := observe.StartSpan(ctx, "session.command")
	defer span.End()

	start := s.now()
	out := s.processor.ProcessCommand(ctx, text)
	s.metrics.CommandDuration.Record(ctx, s.now().Sub(start).Seconds())
	span.SetAttributes(observe.Attr("command", out.Command))

	if out.NeedsConfirmation {
		s.confirmDeadline = s.now().Add(s.cfg.ConfirmationTimeout)
		s.state.store(StateAwaitingConfirmation)
	}
	s.recordCommandOutcome(ctx, out)
	if out.Message != "" {
		s.speak(ctx, out.Message)
	}
}

// resolveConfirmation settles a pending execution with the user's answer.
// Affirmative answers run the parked command; anything else cancels it
// without comment.
func (s *Session) resolveConfirmation(ctx context.Context, text string) {
	s.state.store(StateActive)
	if !isAffirmation(text) {
		slog.Info("session: confirmation declined", "text", text)
		s.executor.Cancel()
		return
	}

	out, had, err := s.executor.Confirm(ctx)
	if !had {
		return
	}
	if err != nil {
		slog.Error("session: confirmed execution failed", "error", err)
		return
	}
	s.recordCommandOutcome(ctx, out)
	if out.Message != "" {
		s.speak(ctx, out.Message)
	}
}

func (s *Session) recordCommandOutcome(ctx context.Context, out command.Outcome) {
	switch {
	case out.Executed:
		s.metrics.RecordCommand(ctx, out.Command, "executed")
	case out.NeedsConfirmation:
		// Counted when the confirmation resolves.
	case out.Command == "":
		s.metrics.RecordCommand(ctx, "", "no_match")
	default:
		s.metrics.RecordCommand(ctx, out.Command, "failed")
	}
}

func (s *Session) speak(ctx context.Context, text string) {
	start := s.now()
	err := s.speaker.Speak(ctx, text)
	s.metrics.TTSDuration.Record(ctx, s.now().Sub(start).Seconds())
	if err != nil {
		slog.Error("session: speech output failed", "error", err, "text", text)
		s.metrics.RecordProviderRequest(ctx, "tts", "speak", "error")
		s.metrics.RecordProviderError(ctx, "tts", "speak")
		return
	}
	s.metrics.RecordProviderRequest(ctx, "tts", "speak", "ok")
}

func isStopPhrase(text string) bool {
	for _, p := range stopPhrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func isAffirmation(text string) bool {
	for _, token := range strings.Fields(text) {
		for _, a := range affirmations {
			if strings.Trim(token, ".,!?") == a {
				return true
			}
		}
	}
	return false
}
