package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var logFormatFlag string
	var flags convertFlags

	ctx := newCommandContext(&configFlag, &logLevelFlag, &logFormatFlag)

	rootCmd := &cobra.Command{
		Use:   "mcat [input...]",
		Short: "将杜比全景声音频转换为多声道 WAV 文件/Convert Dolby Atmos audio to multi-channel WAV files",
		Long: `mcat decodes E-AC3 or TrueHD bitstreams into one mono WAV per channel using the
Dolby GStreamer plugins, then optionally merges them into a multi-channel WAV
and re-encodes that to FLAC.

Without an input, mcat runs in lazy mode: every E-AC3/TrueHD file in the
current directory is converted, merged and cleaned up as 9.1.6.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, ctx, &flags, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format (console, json)")
	flags.register(rootCmd)

	rootCmd.AddCommand(newLayoutsCommand())
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newInspectCommand())
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
