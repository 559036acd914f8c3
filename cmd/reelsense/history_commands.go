package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelsense/internal/history"
	"reelsense/internal/services"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent analysis runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := requireHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, runViews(runs))
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}
			fmt.Fprintln(out, renderRunTable(runs))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultListLimit, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print runs as JSON")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	cmd.AddCommand(newHistoryPruneCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run (an unambiguous id prefix is enough)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := requireHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, history.ErrAmbiguousID) {
					return services.Wrap(services.ErrValidation, "history", "show", err.Error(), nil)
				}
				return err
			}
			if run == nil {
				return services.Wrap(services.ErrNotFound, "history", "show", fmt.Sprintf("run %q not found", args[0]), nil)
			}
			if jsonOutput {
				return writeJSON(cmd, newRunView(*run))
			}
			fmt.Fprint(cmd.OutOrStdout(), renderRunDetail(*run))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run as JSON")
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Drop cached transcriptions older than a cutoff",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return services.Wrap(services.ErrValidation, "history", "prune", "--older-than must be positive", nil)
			}
			store, err := requireHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			removed, err := store.PruneTranscriptions(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached transcription(s)\n", removed)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age cutoff for cached transcriptions")
	return cmd
}

func requireHistory(ctx *commandContext) (*history.Store, error) {
	store, err := ctx.openHistory()
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, services.Wrap(services.ErrConfiguration, "history", "open", "run history is disabled (history.enabled = false)", nil)
	}
	return store, nil
}

type runView struct {
	ID                string  `json:"id"`
	AudioPath         string  `json:"audio_path"`
	Status            string  `json:"status"`
	Transcriber       string  `json:"transcriber,omitempty"`
	Model             string  `json:"model,omitempty"`
	Language          string  `json:"language,omitempty"`
	Sentiment         string  `json:"sentiment,omitempty"`
	Polarity          float64 `json:"polarity"`
	TempoBPM          float64 `json:"tempo_bpm"`
	DurationSeconds   float64 `json:"duration_seconds"`
	ConceptsGenerated int     `json:"concepts_generated"`
	OutputPath        string  `json:"output_path,omitempty"`
	Error             string  `json:"error,omitempty"`
	StartedAt         string  `json:"started_at"`
	FinishedAt        string  `json:"finished_at,omitempty"`
}

func newRunView(run history.Run) runView {
	view := runView{
		ID:                run.ID,
		AudioPath:         run.AudioPath,
		Status:            string(run.Status),
		Transcriber:       run.Transcriber,
		Model:             run.Model,
		Language:          run.Language,
		Sentiment:         run.Sentiment,
		Polarity:          run.Polarity,
		TempoBPM:          run.TempoBPM,
		DurationSeconds:   run.DurationSeconds,
		ConceptsGenerated: run.ConceptsGenerated,
		OutputPath:        run.OutputPath,
		Error:             run.ErrorMessage,
		StartedAt:         run.StartedAt.Format(time.RFC3339),
	}
	if !run.FinishedAt.IsZero() {
		view.FinishedAt = run.FinishedAt.Format(time.RFC3339)
	}
	return view
}

func runViews(runs []history.Run) []runView {
	views := make([]runView, 0, len(runs))
	for _, run := range runs {
		views = append(views, newRunView(run))
	}
	return views
}

func renderRunTable(runs []history.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			truncate(baseName(run.AudioPath), 32),
			string(run.Status),
			dashIfEmpty(run.Sentiment),
			fmt.Sprintf("%.1f", run.TempoBPM),
			fmt.Sprintf("%d", run.ConceptsGenerated),
		})
	}
	return renderTable(
		[]string{"ID", "Started", "File", "Status", "Sentiment", "BPM", "Concepts"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	)
}

func renderRunDetail(run history.Run) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run:         %s\n", run.ID)
	fmt.Fprintf(&b, "Audio:       %s\n", run.AudioPath)
	fmt.Fprintf(&b, "Status:      %s\n", run.Status)
	fmt.Fprintf(&b, "Started:     %s\n", run.StartedAt.Local().Format(time.RFC1123))
	if elapsed := run.Elapsed(); elapsed > 0 {
		fmt.Fprintf(&b, "Elapsed:     %s\n", elapsed.Round(time.Second))
	}
	if run.Transcriber != "" {
		fmt.Fprintf(&b, "Transcriber: %s (%s, %s)\n", run.Transcriber, dashIfEmpty(run.Model), dashIfEmpty(run.Language))
	}
	if run.Status == history.StatusCompleted {
		fmt.Fprintf(&b, "Duration:    %.2fs\n", run.DurationSeconds)
		fmt.Fprintf(&b, "Tempo:       %.1f BPM\n", run.TempoBPM)
		fmt.Fprintf(&b, "Sentiment:   %s (polarity %.3f)\n", dashIfEmpty(run.Sentiment), run.Polarity)
		fmt.Fprintf(&b, "Concepts:    %d\n", run.ConceptsGenerated)
	}
	if run.OutputPath != "" {
		fmt.Fprintf(&b, "Output:      %s\n", run.OutputPath)
	}
	if run.ErrorMessage != "" {
		fmt.Fprintf(&b, "Error:       %s\n", run.ErrorMessage)
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
