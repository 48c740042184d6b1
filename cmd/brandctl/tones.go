package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"instagenie/internal/prompt"
)

func newTonesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tones",
		Short: "List tones and variation hints",
		Args:  cobra.NoArgs,
		RunE:  runTones,
	}
}

func runTones(cmd *cobra.Command, _ []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tNAME\tDESCRIPTION")
	for _, t := range prompt.Tones() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.Key, t.Name, t.Description)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "\nVariation hints:")
	for i, h := range prompt.VariationHints() {
		fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, h)
	}
	return nil
}
