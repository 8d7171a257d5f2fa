package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/use-agent/harvest/config"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the enabled sources",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load()
		initLogger(cfg.Log)

		svc, err := buildService(cfg)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tKIND\tFORMATS\tTIMEOUT\tURL")
		for _, d := range svc.Sources() {
			formats := make([]string, len(d.SupportedFormats))
			for i, f := range d.SupportedFormats {
				formats[i] = string(f)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.ID, d.Kind, strings.Join(formats, ","), d.Timeout, d.SourceURL)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
