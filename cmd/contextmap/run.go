package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ykai16/context-cartographer/engine"
	"github.com/ykai16/context-cartographer/history"
	"github.com/ykai16/context-cartographer/maintenance"
	"github.com/ykai16/context-cartographer/merge"
	"github.com/ykai16/context-cartographer/report"
	"github.com/ykai16/context-cartographer/transcript"
)

const defaultOutBase = ".context/session_summary"

type runOptions struct {
	out      string
	model    string
	format   string
	keepDays int
	maxSteps int
}

func newRunCmd() *cobra.Command {
	opts := runOptions{}
	cmd := &cobra.Command{
		Use:   "run <log_file>",
		Short: "Analyze a session log and update the context map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd.Context(), args[0], &opts)
		},
	}
	cmd.Flags().StringVar(&opts.out, "out", "", "output path for the report (default "+defaultOutBase+".<ext>)")
	cmd.Flags().StringVar(&opts.model, "model", "", "model name hint for the summarization engine")
	cmd.Flags().StringVar(&opts.format, "format", "markdown", "report format: markdown or html")
	cmd.Flags().IntVar(&opts.keepDays, "keep-days", 2, "delete session logs older than this many days")
	cmd.Flags().IntVar(&opts.maxSteps, "max-steps", report.DefaultMaxDetailedSteps, "full-detail steps retained before compaction")
	return cmd
}

func runPipeline(ctx context.Context, logFile string, opts *runOptions) error {
	logger := log.New(os.Stderr, "", 0)

	renderer, err := selectRenderer(opts.format)
	if err != nil {
		return err
	}
	compaction := &report.CompactionConfig{MaxDetailedSteps: opts.maxSteps}
	compaction.ApplyDefaults()
	if err := compaction.Validate(); err != nil {
		return err
	}

	logPath, err := filepath.Abs(logFile)
	if err != nil {
		logPath = logFile
	}

	// Housekeeping runs first and never affects the outcome.
	cleanup := maintenance.NewCleanup(filepath.Dir(logPath), &maintenance.CleanupConfig{
		MaxAge:    time.Duration(opts.keepDays) * 24 * time.Hour,
		OnCleanup: func(count int) { fmt.Printf("🧹 Cleaned up %d old log files.\n", count) },
		OnError:   func(err error) { logger.Printf("⚠️  Cleanup warning: %v", err) },
	})
	cleanup.Run()

	fmt.Println("🧠 Analyzing session context...")

	compressed, err := transcript.ReadAndCompress(logPath, nil)
	if err != nil {
		logger.Printf("⚠️  Could not read log: %v", err)
		return nil
	}
	if compressed == "" {
		fmt.Println("⚠️  Empty transcript. Nothing to analyze.")
		return nil
	}

	outPath := opts.out
	if outPath == "" {
		outPath = defaultOutBase + renderer.Ext()
	}
	// Any unreadable previous report degrades to a first run; the document
	// is about to be rebuilt and overwritten anyway.
	store := report.NewStore(outPath)
	prev, err := store.Load()
	if err != nil {
		logger.Printf("⚠️  Previous report unreadable, starting fresh: %v", err)
	}

	started := time.Now()
	run := &history.Run{
		Project:         projectName(),
		LogPath:         logPath,
		Model:           opts.model,
		Format:          opts.format,
		TranscriptBytes: len(compressed),
		StartedAt:       started,
	}

	var rep *report.Report
	eng, err := engine.Detect(opts.model)
	if err != nil {
		logger.Printf("⚠️  %v. Generating placeholder report.", err)
		rep = merge.Placeholder(prev, logPath, logSize(logPath), started)
	} else {
		run.Engine = eng.Name()
		orchestrator, err := merge.New(merge.Config{
			Engine:     eng,
			Compaction: compaction,
			Logger:     logger,
		})
		if err != nil {
			return err
		}
		rep, run.Succeeded = orchestrator.Merge(ctx, prev, compressed)
	}

	if rep.Project == "" {
		rep.Project = run.Project
	}

	doc, err := report.RenderWithin(rep, renderer, compaction)
	if err != nil {
		if !errors.Is(err, report.ErrCeilingExceeded) {
			return err
		}
		logger.Printf("⚠️  %v", err)
	}
	if err := store.Write(doc); err != nil {
		return err
	}

	run.ReportBytes = len(doc)
	run.Duration = time.Since(started)
	recordHistory(ctx, run, logger)

	fmt.Printf("✨ Context map saved to: %s\n", outPath)
	return nil
}

func selectRenderer(format string) (report.Renderer, error) {
	switch format {
	case "markdown", "md":
		return report.NewMarkdownRenderer(), nil
	case "html":
		return report.NewHTMLRenderer(), nil
	default:
		return nil, fmt.Errorf("unknown format %q, must be markdown or html", format)
	}
}

// recordHistory archives the run in Postgres when a DSN is configured.
// History is supplemental: every failure is logged and swallowed.
func recordHistory(ctx context.Context, run *history.Run, logger *log.Logger) {
	dsn := os.Getenv(history.EnvHistoryDSN)
	if dsn == "" {
		return
	}

	store, err := history.Connect(ctx, dsn)
	if err != nil {
		logger.Printf("⚠️  Run history unavailable: %v", err)
		return
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		logger.Printf("⚠️  Run history unavailable: %v", err)
		return
	}
	if err := store.RecordRun(ctx, run); err != nil {
		logger.Printf("⚠️  Could not record run: %v", err)
	}
}

func projectName() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Base(dir)
}

func logSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
