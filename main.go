// Command livescribe transcribes microphone audio to text in real time.
//
// Audio is segmented by an energy-based voice activity detector, each
// segment is run through a whisper backend, and the results are printed
// either as a redrawn transcript view or as a plain line stream for
// piping into downstream tools.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"go.aimuz.me/livescribe/audiocapture"
	"go.aimuz.me/livescribe/config"
	"go.aimuz.me/livescribe/history"
	"go.aimuz.me/livescribe/livetranscribe"
	"go.aimuz.me/livescribe/stt"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "livescribe",
		Short:   "Real-time microphone transcription",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Long: `livescribe listens to the microphone and transcribes speech as it
happens. By default it redraws the accumulated transcript in place; with
--pipe it emits one plain text line per utterance, suitable for chaining
into a downstream analyzer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	f := cmd.Flags()
	f.String("provider", "", `speech backend: "whisper-local" or "whisper-api"`)
	f.String("model", "", "path to a ggml whisper model (whisper-local)")
	f.String("api-key", "", "API key (whisper-api)")
	f.String("language", "", `transcription language code, "auto" to detect`)
	f.Int("energy-threshold", 0, "VAD energy threshold, 0 = calibrate from ambient noise")
	f.Float64("record-timeout", 0, "maximum utterance segment duration in seconds")
	f.Float64("phrase-timeout", 0, "silence in seconds that starts a new transcript line")
	f.String("microphone", "", `input device name substring, "list" to show devices`)
	f.Bool("pipe", false, "stream plain text lines instead of redrawing the transcript")
	f.Bool("timestamps", false, "prefix streamed lines with the time of transcription")
	f.Bool("history", false, "persist finalized lines to the local history store")

	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		cfg = config.Default()
	}
	mergeFlags(cmd, cfg)

	dev, err := audiocapture.NewDevice()
	if err != nil {
		return err
	}
	defer dev.Close()

	if cfg.Microphone == "list" {
		names, err := audiocapture.Devices()
		if err != nil {
			return err
		}
		fmt.Println("Available microphone devices:")
		for _, name := range names {
			fmt.Println("-", name)
		}
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	provider, err := stt.New(stt.Config{
		Provider:  cfg.Provider,
		ModelPath: cfg.ModelPath,
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Model:     cfg.APIModel,
	})
	if err != nil {
		return err
	}
	defer provider.Close()

	rec := livetranscribe.NewRecorder(dev, livetranscribe.Config{
		SampleRate:    16000,
		FrameSize:     1024,
		DeviceName:    cfg.Microphone,
		RecordTimeout: secondsToDuration(cfg.RecordTimeout),
		PhraseTimeout: secondsToDuration(cfg.PhraseTimeout),
	})

	if cfg.EnergyThreshold > 0 {
		rec.SetEnergyThreshold(cfg.EnergyThreshold)
	} else {
		if err := rec.Calibrate(); err != nil {
			return err
		}
	}

	var sink livetranscribe.Sink
	if cfg.Pipe {
		sink = &livetranscribe.StreamSink{W: os.Stdout, Timestamps: cfg.Timestamps}
	} else {
		sink = &livetranscribe.InteractiveSink{W: os.Stdout}
	}

	var lines livetranscribe.LineWriter
	if cfg.History {
		dir, err := cfg.ResolveHistoryDir()
		if err != nil {
			return err
		}
		session := uuid.NewString()
		store, err := history.Open(dir, session)
		if err != nil {
			slog.Warn("open history store", "error", err)
		} else {
			defer store.Close()
			lines = store
			slog.Info("history enabled", "session", session, "dir", dir)
		}
	}

	if err := rec.Start(); err != nil {
		return err
	}
	defer rec.Stop()

	if !cfg.Pipe {
		fmt.Println("Listening. Press Ctrl+C to stop.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	disp := livetranscribe.NewDispatcher(livetranscribe.DispatcherConfig{
		Queue:         rec.Segments(),
		Provider:      provider,
		Sink:          sink,
		History:       lines,
		Language:      cfg.Language,
		SampleRate:    16000,
		PhraseTimeout: secondsToDuration(cfg.PhraseTimeout),
	})
	return disp.Run(ctx)
}

// mergeFlags overlays explicitly set CLI flags onto the loaded config.
func mergeFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("provider") {
		cfg.Provider, _ = f.GetString("provider")
	}
	if f.Changed("model") {
		cfg.ModelPath, _ = f.GetString("model")
	}
	if f.Changed("api-key") {
		cfg.APIKey, _ = f.GetString("api-key")
	}
	if f.Changed("language") {
		cfg.Language, _ = f.GetString("language")
	}
	if f.Changed("energy-threshold") {
		cfg.EnergyThreshold, _ = f.GetInt("energy-threshold")
	}
	if f.Changed("record-timeout") {
		cfg.RecordTimeout, _ = f.GetFloat64("record-timeout")
	}
	if f.Changed("phrase-timeout") {
		cfg.PhraseTimeout, _ = f.GetFloat64("phrase-timeout")
	}
	if f.Changed("microphone") {
		cfg.Microphone, _ = f.GetString("microphone")
	}
	if f.Changed("pipe") {
		cfg.Pipe, _ = f.GetBool("pipe")
	}
	if f.Changed("timestamps") {
		cfg.Timestamps, _ = f.GetBool("timestamps")
	}
	if f.Changed("history") {
		cfg.History, _ = f.GetBool("history")
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
