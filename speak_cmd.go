package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/narrator/internal/config"
	"github.com/dgnsrekt/narrator/internal/queue"
	"github.com/dgnsrekt/narrator/internal/store"
	"github.com/dgnsrekt/narrator/internal/synth"
	"github.com/dgnsrekt/narrator/internal/transcript"
)

var speakCmd = &cobra.Command{
	Use:     "speak [VIDEO_URL]",
	Short:   "Synthesize a video's transcript into an audio file",
	Example: "narrator speak https://youtu.be/dQw4w9WgXcQ\ncat transcript.txt | narrator speak -",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSpeak(cmd, args[0])
	},
}

func runSpeak(cmd *cobra.Command, arg string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFlags(cmd, &cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	src, err := loadSource(ctx, cfg, arg)
	if err != nil {
		return err
	}

	cleaned := transcript.Clean(src.Transcript, transcript.DefaultCleanOptions())
	if cleaned == "" {
		return errors.New("transcript is empty after cleanup")
	}

	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	synthesizer := synth.New(engine,
		synth.WithShortTextLimit(cfg.ShortTextLimit),
		synth.WithChunkSize(cfg.ChunkSize),
		synth.WithChunkInterval(cfg.ChunkInterval),
	)

	st, err := store.NewDiskStore(cfg.OutputDir)
	if err != nil {
		return err
	}
	if removed, err := st.Sweep(time.Now()); err != nil {
		log.Warn("Artifact sweep failed", "error", err)
	} else if removed > 0 {
		log.Info("Removed expired audio", "count", removed)
	}

	// Ad-hoc text piped through stdin is kept for a day; extracted
	// transcripts keep the long retention.
	ttl := store.QueueArtifactTTL
	if arg == "-" {
		ttl = store.AdhocArtifactTTL
	}

	q := queue.New(synthesizer, st, queue.Config{
		CycleDelay:   cfg.CycleDelay,
		FailureDelay: cfg.FailureDelay,
		ArtifactTTL:  ttl,
	})
	defer q.Close()

	title := src.Title
	if titleFlag != "" {
		title = titleFlag
	}

	id := q.Enqueue(queue.EnqueueRequest{
		Title:      title,
		Transcript: cleaned,
		Language:   cfg.Language,
		SourceURL:  arg,
		UserID:     cfg.UserID,
	})
	log.Info("Narrating", "title", title, "language", cfg.Language, "engine", cfg.Engine)

	// Subscribing after Enqueue is safe: the subscription delivers the
	// current snapshot immediately, so a fast completion is not missed.
	done := make(chan queue.Job, 1)
	unsubscribe := q.Subscribe(func(s queue.Snapshot) {
		for _, job := range s.Jobs {
			if job.ID != id || (job.Status != queue.StatusCompleted && job.Status != queue.StatusFailed) {
				continue
			}
			select {
			case done <- job:
			default:
			}
		}
	})
	defer unsubscribe()

	select {
	case <-ctx.Done():
		return errors.New("interrupted")
	case job := <-done:
		if job.Status == queue.StatusFailed {
			return fmt.Errorf("synthesis failed: %s", job.Error)
		}
		path := st.Path(job.UserID, *job.Audio)
		fmt.Printf("Wrote %s (%s)\n", path, humanize.Bytes(uint64(job.Audio.Size)))
		return nil
	}
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("language") {
		cfg.Language = languageFlag
	}
	if cmd.Flags().Changed("engine") {
		cfg.Engine = engineFlag
	}
	if cmd.Flags().Changed("output") {
		cfg.OutputDir = outputFlag
	}
	if cmd.Flags().Changed("user") {
		cfg.UserID = userFlag
	}
}

// loadSource produces the raw transcript: from stdin for "-", otherwise
// through the extraction chain.
func loadSource(ctx context.Context, cfg config.Config, arg string) (transcript.Source, error) {
	if arg == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return transcript.Source{}, fmt.Errorf("read stdin: %w", err)
		}
		return transcript.Source{Title: "stdin", Transcript: string(data)}, nil
	}

	var extractors []transcript.Extractor
	if cfg.TranscriptAPI != "" {
		extractors = append(extractors, transcript.NewSidecarExtractor(cfg.TranscriptAPI))
	}
	extractors = append(extractors, transcript.NewTimedtextExtractor(captionLanguage(cfg.Language)))

	src, err := transcript.NewChain(extractors...).Extract(ctx, arg)
	if err != nil {
		if errors.Is(err, transcript.ErrTranscriptUnavailable) {
			log.Debug("Extraction failed", "error", err)
			return transcript.Source{}, fmt.Errorf("no transcript available for %s", arg)
		}
		return transcript.Source{}, err
	}
	return src, nil
}

// captionLanguage reduces a configured language to the two-letter code
// the caption endpoint expects.
func captionLanguage(lang string) string {
	locale := queue.ResolveVoice(lang).Locale
	if i := strings.Index(locale, "-"); i > 0 {
		return locale[:i]
	}
	return "en"
}

// buildEngine constructs the synthesis backend. A configured backup
// region wraps the primary Azure engine with automatic regional
// fallback.
func buildEngine(cfg config.Config) (synth.Engine, error) {
	switch cfg.Engine {
	case "mock":
		return synth.NewMockEngine(), nil
	case "", "azure":
		primary, err := synth.NewAzureEngine(cfg.AzureRegion, cfg.AzureKey)
		if err != nil {
			if errors.Is(err, synth.ErrMissingCredentials) {
				return nil, errors.New("azure engine requires NARRATOR_AZURE_REGION and NARRATOR_AZURE_KEY")
			}
			return nil, err
		}
		if cfg.AzureBackupRegion == "" {
			return primary, nil
		}
		backup, err := synth.NewAzureEngine(cfg.AzureBackupRegion, cfg.AzureKey)
		if err != nil {
			return nil, err
		}
		return synth.NewFallbackEngine(primary, backup, 3), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
	}
}
