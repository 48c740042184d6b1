// Package main is brandctl, an operator tool for checking palette
// extraction and prompt assembly without calling the image model.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "brandctl",
		Short:         "Inspect InstaGenie palettes and prompts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newPaletteCmd(), newPromptCmd(), newTonesCmd())
	return root
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
