package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"reelsense/internal/analysis"
	"reelsense/internal/concepts"
	"reelsense/internal/config"
	"reelsense/internal/services"
)

func newConceptsCommand(ctx *commandContext) *cobra.Command {
	var (
		count      int
		outputPath string
		apiKey     string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "concepts <analysis.json>",
		Short: "Generate reel concepts from a saved analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("count") && count < 1 {
				return services.Wrap(services.ErrValidation, "concepts", "flags", "--count must be at least 1", nil)
			}
			inputPath, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve analysis path: %w", err)
			}
			result, err := analysis.ReadResult(inputPath)
			if err != nil {
				return err
			}

			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			analyzer := analysis.NewAnalyzer(cfg, logger)
			generated, err := analyzer.GenerateConcepts(cmd.Context(), result, analysis.Options{ConceptCount: count, APIKey: apiKey})
			if err != nil {
				return err
			}

			target := outputPath
			if target == "" {
				target = concepts.DefaultPath(cfg.Paths.OutputDir, time.Now())
			} else if target, err = config.ExpandPath(target); err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}
			if err := concepts.Save(generated, target); err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, generated)
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, renderConcepts(generated, shouldColorize(out)))
			fmt.Fprintf(out, "\nConcepts saved to %s\n", target)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "c", 0, "Number of concepts to generate (default from config)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output JSON path (default <output_dir>/tiktok_concepts_<timestamp>.json)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "OpenRouter API key (overrides config and OPENROUTER_API_KEY)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print concepts as JSON")
	return cmd
}
