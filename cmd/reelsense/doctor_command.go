package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reelsense/internal/preflight"
	"reelsense/internal/services"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools, directories, and API access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			results := preflight.RunAll(cmd.Context(), cfg)
			lines := renderSectionHeader("Environment", colorize)
			for _, r := range results {
				lines = append(lines, renderStatusLine(r.Name, checkKind(r), r.Detail, colorize))
			}
			fmt.Fprintln(out, strings.Join(lines, "\n"))

			if preflight.AnyFailed(results) {
				return services.Wrap(services.ErrConfiguration, "doctor", "", "one or more required checks failed", nil)
			}
			fmt.Fprintln(out, "\nReady to analyze")
			return nil
		},
	}
}

func checkKind(r preflight.Result) statusKind {
	switch {
	case r.Passed:
		return statusOK
	case r.Optional:
		return statusWarn
	default:
		return statusError
	}
}
