package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mcat/internal/channels"
)

func newLayoutsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "layouts",
		Short:       "列出支持的声道配置/List supported channel layouts",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), renderLayouts(channels.Supported()))
			return nil
		},
	}
}

func renderLayouts(layouts []channels.Layout) string {
	headers := []string{"Layout", "ID", "Channels", "Labels"}
	aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignLeft}
	rows := make([][]string, 0, len(layouts)+1)
	for _, l := range layouts {
		rows = append(rows, []string{l.Name, strconv.Itoa(l.ID), strconv.Itoa(l.Count()), l.Flatten()})
	}
	rows = append(rows, []string{channels.AutoName, "-", "1-" + strconv.Itoa(channels.MaxProbeChannels), strings.Join([]string{"Ch01", "Ch02", "..."}, " ")})
	return renderTable(headers, rows, aligns)
}
