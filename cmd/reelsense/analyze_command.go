package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"reelsense/internal/analysis"
	"reelsense/internal/config"
	"reelsense/internal/services"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var (
		modelSize  string
		outputPath string
		count      int
		noConcepts bool
		apiKey     string
		language   string
		backend    string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <audio-file>",
		Short: "Transcribe a song, score its lyrics, extract features, and suggest reel concepts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if modelSize != "" && !config.ValidModelSize(modelSize) {
				return services.Wrap(services.ErrValidation, "analyze", "flags",
					fmt.Sprintf("--model must be one of %s", strings.Join(config.ModelSizes, ", ")), nil)
			}
			if cmd.Flags().Changed("count") && count < 1 {
				return services.Wrap(services.ErrValidation, "analyze", "flags", "--count must be at least 1", nil)
			}

			audioPath, err := filepath.Abs(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("resolve audio path: %w", err)
			}
			if outputPath != "" {
				if outputPath, err = config.ExpandPath(outputPath); err != nil {
					return fmt.Errorf("resolve output path: %w", err)
				}
			}

			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			analyzer := analysis.NewAnalyzer(cfg, logger, analysis.WithHistory(store))
			result, err := analyzer.Analyze(cmd.Context(), audioPath, analysis.Options{
				ModelSize:    modelSize,
				Language:     language,
				Backend:      backend,
				ConceptCount: count,
				SkipConcepts: noConcepts,
				APIKey:       apiKey,
			})
			if err != nil {
				return err
			}

			written, err := analyzer.Save(cmd.Context(), result, outputPath)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, renderSummary(result, shouldColorize(out)))
			fmt.Fprintf(out, "\nResults saved to %s\n", written)
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelSize, "model", "m", "", "Whisper model size: base, small, medium, large (default from config)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output JSON path (default <output_dir>/integrated_analysis_<name>.json)")
	cmd.Flags().IntVarP(&count, "count", "c", 0, "Number of reel concepts to generate (default from config)")
	cmd.Flags().BoolVar(&noConcepts, "no-concepts", false, "Skip reel concept generation")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "OpenRouter API key (overrides config and OPENROUTER_API_KEY)")
	cmd.Flags().StringVar(&language, "language", "", "Transcription language code (default from config)")
	cmd.Flags().StringVar(&backend, "backend", "", "Transcription backend: whisperx or openai")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the analysis document as JSON instead of a summary")
	return cmd
}
