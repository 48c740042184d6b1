package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"instagenie/internal/palette"
)

type paletteFlags struct {
	method string
	count  int
}

func newPaletteCmd() *cobra.Command {
	var flags paletteFlags

	cmd := &cobra.Command{
		Use:   "palette <image>",
		Short: "Extract the brand palette from a logo",
		Long:  "Prints the palette as JSON. Images that cannot be read produce the default palette and a warning on stderr.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPalette(cmd, flags, args[0])
		},
	}

	cmd.Flags().StringVarP(&flags.method, "method", "m", string(palette.MethodDominantColor), "Quantizer: dominantcolor or kmeans")
	cmd.Flags().IntVarP(&flags.count, "count", "n", palette.DefaultSwatchCount, "Number of swatches")
	return cmd
}

func runPalette(cmd *cobra.Command, flags paletteFlags, path string) error {
	ex := palette.New(palette.Options{
		Method:      palette.ParseMethod(flags.method),
		SwatchCount: flags.count,
		Logger:      slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelError})),
	}).Extract(path)

	if ex.Fallback {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: using default palette: %v\n", ex.Err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(ex.Palette)
}
