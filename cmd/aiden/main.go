// Command aiden is the main entry point for the Aiden voice assistant.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/in2theCODE/MyCODEagent/internal/config"
	"github.com/in2theCODE/MyCODEagent/internal/observe"
	"github.com/in2theCODE/MyCODEagent/internal/registry"
	"github.com/in2theCODE/MyCODEagent/internal/resilience"
	"github.com/in2theCODE/MyCODEagent/internal/voice/command"
	"github.com/in2theCODE/MyCODEagent/internal/voice/session"
	"github.com/in2theCODE/MyCODEagent/internal/voice/wake"
	"github.com/in2theCODE/MyCODEagent/pkg/provider/capture"
	paudio "github.com/in2theCODE/MyCODEagent/pkg/provider/capture/portaudio"
	"github.com/in2theCODE/MyCODEagent/pkg/provider/stt"
	"github.com/in2theCODE/MyCODEagent/pkg/provider/stt/whisper"
	"github.com/in2theCODE/MyCODEagent/pkg/provider/tts"
	"github.com/in2theCODE/MyCODEagent/pkg/provider/tts/console"
	"github.com/in2theCODE/MyCODEagent/pkg/provider/tts/elevenlabs"
)

func main() {
	os.Exit(run())
}

// logLevel is swapped at runtime when the config file's log_level changes.
var logLevel = new(slog.LevelVar)

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// .env is optional; real deployments inject secrets via the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "aiden: load .env: %v\n", err)
	}

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "aiden: config file %q not found, copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "aiden: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logLevel.Set(slogLevel(cfg.Server.LogLevel))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	slog.Info("aiden starting",
		"config", *configPath,
		"wake_word", cfg.Voice.WakeWord,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Telemetry ─────────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "aiden"})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	providers, err := buildProviders(cfg, reg)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		return 1
	}

	// ── Voice commands ────────────────────────────────────────────────────────
	table, skipped, err := command.Load(cfg.Voice.CommandsFile)
	if err != nil {
		slog.Error("failed to load voice commands", "file", cfg.Voice.CommandsFile, "err", err)
		return 1
	}
	if skipped > 0 {
		slog.Warn("skipped malformed voice command records", "file", cfg.Voice.CommandsFile, "skipped", skipped)
	}
	slog.Info("voice commands loaded", "file", cfg.Voice.CommandsFile, "count", table.Len())

	ops := registry.NewTable()
	if err := registerBuiltinOps(ops); err != nil {
		slog.Error("failed to register operations", "err", err)
		return 1
	}

	matcher := command.NewMatcher(table, command.NewHistory())
	executor := command.NewExecutor(ops)
	processor := command.NewProcessor(matcher, executor)

	// ── Session ───────────────────────────────────────────────────────────────
	sess := session.New(session.Config{
		WakePhrase:          cfg.Voice.WakeWord,
		SampleRate:          cfg.Voice.SampleRate,
		FrameSize:           cfg.Voice.FrameSize,
		SilenceThreshold:    cfg.Voice.SilenceThreshold,
		SilenceCycles:       cfg.Voice.SilenceCycles,
		ConfirmationTimeout: cfg.Voice.ConfirmationTimeout,
		Wake: wake.Config{
			Phrase:          cfg.Voice.WakeWord,
			CoarseThreshold: cfg.Voice.WakeCoarseThreshold,
			StrictThreshold: cfg.Voice.WakeStrictThreshold,
			MatchThreshold:  cfg.Voice.WakeMatchThreshold,
		},
	}, session.Deps{
		Capture:     providers.Capture,
		Transcriber: providers.STT,
		Speaker:     providers.TTS,
		Processor:   processor,
		Executor:    executor,
	})

	// ── Config watcher ────────────────────────────────────────────────────────
	// Only the log level is hot-reloaded; provider and audio changes need a
	// restart.
	watcher, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
		d := config.Diff(old, new)
		if d.LogLevelChanged {
			logLevel.Set(slogLevel(d.NewLogLevel))
			slog.Info("log level changed", "level", d.NewLogLevel)
		}
		if d.CommandsFileChanged || d.VoiceTuningChanged {
			slog.Warn("voice tuning or commands file changed; restart to apply")
		}
	})
	if err != nil {
		slog.Warn("config watcher unavailable", "err", err)
	} else {
		defer watcher.Stop()
	}

	printStartupSummary(cfg, table.Len())

	// ── Run ───────────────────────────────────────────────────────────────────
	if err := sess.Start(ctx); err != nil {
		slog.Error("failed to start session", "err", err)
		return 1
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Server.MetricsAddr != "" {
		srv := &http.Server{
			Addr:    cfg.Server.MetricsAddr,
			Handler: metricsHandler(),
		}
		g.Go(func() error {
			slog.Info("metrics server listening", "addr", cfg.Server.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	slog.Info("ready, press Ctrl+C to shut down")

	<-ctx.Done()
	slog.Info("shutdown signal received, stopping")

	if err := sess.Stop(); err != nil {
		slog.Warn("session stop error", "err", err)
	}
	if err := g.Wait(); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// providerSet holds the instantiated pipeline providers.
type providerSet struct {
	STT     stt.Transcriber
	TTS     tts.Speaker
	Capture capture.Provider
}

// registerBuiltinProviders wires the provider factories that ship with Aiden
// into reg.
func registerBuiltinProviders(reg *config.Registry) {
	reg.RegisterSTT("whisper", func(entry config.ProviderEntry) (stt.Transcriber, error) {
		var opts []whisper.Option
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, whisper.WithLanguage(lang))
		}
		return whisper.New(entry.Model, opts...)
	})

	reg.RegisterTTS("elevenlabs", func(entry config.ProviderEntry) (tts.Speaker, error) {
		var opts []elevenlabs.Option
		if entry.Model != "" {
			opts = append(opts, elevenlabs.WithModel(entry.Model))
		}
		if entry.VoiceID != "" {
			opts = append(opts, elevenlabs.WithVoiceID(entry.VoiceID))
		}
		if entry.BaseURL != "" {
			opts = append(opts, elevenlabs.WithBaseURL(entry.BaseURL))
		}
		return elevenlabs.New(entry.APIKey, opts...)
	})

	reg.RegisterTTS("console", func(config.ProviderEntry) (tts.Speaker, error) {
		return console.New(os.Stdout), nil
	})

	reg.RegisterCapture("portaudio", func(config.ProviderEntry) (capture.Provider, error) {
		return paudio.New()
	})
}

// buildProviders instantiates the providers named in cfg. A missing STT or
// capture provider is fatal; speech output degrades to the console speaker.
func buildProviders(cfg *config.Config, reg *config.Registry) (*providerSet, error) {
	ps := &providerSet{}

	transcriber, err := reg.CreateSTT(cfg.Providers.STT)
	if err != nil {
		return nil, fmt.Errorf("create stt provider %q: %w", cfg.Providers.STT.Name, err)
	}
	// No secondary STT backend ships yet; the breaker still sheds load from a
	// backend that keeps erroring.
	ps.STT = resilience.NewSTTFallback(transcriber, cfg.Providers.STT.Name, resilience.FallbackConfig{})
	slog.Info("provider created", "kind", "stt", "name", cfg.Providers.STT.Name)

	ttsName := cfg.Providers.TTS.Name
	if ttsName == "" {
		ttsName = "console"
	}
	speaker, err := reg.CreateTTS(config.ProviderEntry{Name: ttsName, APIKey: cfg.Providers.TTS.APIKey,
		BaseURL: cfg.Providers.TTS.BaseURL, Model: cfg.Providers.TTS.Model,
		VoiceID: cfg.Providers.TTS.VoiceID, Options: cfg.Providers.TTS.Options})
	if err != nil {
		return nil, fmt.Errorf("create tts provider %q: %w", ttsName, err)
	}
	slog.Info("provider created", "kind", "tts", "name", ttsName)

	// A network speaker always degrades to console output rather than going
	// mute when its API is down.
	if ttsName != "console" {
		fb := resilience.NewTTSFallback(speaker, ttsName, resilience.FallbackConfig{})
		fb.AddFallback("console", console.New(os.Stdout))
		ps.TTS = fb
	} else {
		ps.TTS = speaker
	}

	captureName := cfg.Providers.Capture.Name
	if captureName == "" {
		captureName = "portaudio"
	}
	capturer, err := reg.CreateCapture(config.ProviderEntry{Name: captureName})
	if err != nil {
		return nil, fmt.Errorf("create capture provider %q: %w", captureName, err)
	}
	ps.Capture = capturer
	slog.Info("provider created", "kind", "capture", "name", captureName)

	return ps, nil
}

// ── Operations ────────────────────────────────────────────────────────────────

// registerBuiltinOps wires the operations the stock voice-command template
// refers to.
func registerBuiltinOps(ops *registry.Table) error {
	handlers := map[string]registry.Handler{
		"get_time": func(context.Context, []string, map[string]string) (registry.Result, error) {
			return registry.Result{
				Success: true,
				Output:  time.Now().Format("3:04 PM"),
			}, nil
		},
		"system_status": func(context.Context, []string, map[string]string) (registry.Result, error) {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			return registry.Result{
				Success: true,
				Output:  fmt.Sprintf("%d goroutines, %d MB in use", runtime.NumGoroutine(), m.Alloc/1024/1024),
			}, nil
		},
		"create_note": func(_ context.Context, args []string, _ map[string]string) (registry.Result, error) {
			text := strings.Join(args, " ")
			if text == "" {
				return registry.Result{Success: false, Error: "the note was empty"}, nil
			}
			f, err := os.OpenFile("notes.txt", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
			if err != nil {
				return registry.Result{}, err
			}
			defer f.Close()
			if _, err := fmt.Fprintf(f, "%s\t%s\n", time.Now().Format(time.RFC3339), text); err != nil {
				return registry.Result{}, err
			}
			return registry.Result{Success: true, Output: text}, nil
		},
		"shutdown_system": func(context.Context, []string, map[string]string) (registry.Result, error) {
			// Demo stub. A real deployment would invoke the platform's
			// shutdown here.
			return registry.Result{Success: true, Output: "shutdown requested"}, nil
		},
	}

	for name, h := range handlers {
		if err := ops.Register(name, h); err != nil {
			return err
		}
	}
	return nil
}

// ── Metrics endpoint ──────────────────────────────────────────────────────────

func metricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	return observe.Middleware(observe.DefaultMetrics())(mux)
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config, commands int) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║          Aiden - startup summary      ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printRow("Wake word", cfg.Voice.WakeWord)
	printRow("STT", providerLabel(cfg.Providers.STT))
	printRow("TTS", providerLabel(cfg.Providers.TTS))
	printRow("Capture", providerLabel(cfg.Providers.Capture))
	printRow("Commands", fmt.Sprintf("%d", commands))
	if cfg.Server.MetricsAddr != "" {
		printRow("Metrics addr", cfg.Server.MetricsAddr)
	}
	fmt.Println("╚═══════════════════════════════════════╝")
}

func providerLabel(entry config.ProviderEntry) string {
	if entry.Name == "" {
		return "(not configured)"
	}
	if entry.Model != "" {
		return entry.Name + " / " + entry.Model
	}
	return entry.Name
}

func printRow(key, value string) {
	if len(value) > 20 {
		value = value[:17] + "..."
	}
	fmt.Printf("║  %-13s : %-20s ║\n", key, value)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// optString extracts a string value from a provider Options map.
// Returns "" if the map is nil, the key is absent, or the value is not a string.
func optString(opts map[string]any, key string) string {
	if opts == nil {
		return ""
	}
	s, _ := opts[key].(string)
	return s
}
