package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mcat/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var toolsFlag string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "检查外部工具与目录/Check external tools and directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			source := ctx.configPath
			if !ctx.configExists {
				source += " (not found, defaults used)"
			}
			fmt.Fprintln(out, renderStatusLine("Config", statusInfo, source, colorize))

			results := preflight.Run(cfg, ctx.locateOptions(toolsFlag))
			renderResults(out, results, colorize)
			fmt.Fprintln(out, renderStatusLine("FLAC output", statusInfo, yesNo(cfg.Output.FLAC), colorize))

			if failed := preflight.Failed(results); len(failed) > 0 {
				return errors.New("环境检查失败/Environment check failed: " + strings.Join(failed, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&toolsFlag, "dolby-tools", "", "杜比工具目录/Dolby tools bundle directory")
	return cmd
}
