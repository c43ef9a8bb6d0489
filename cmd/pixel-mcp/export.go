package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/ironsheep/pixel-slider-mcp/internal/engine"
	"github.com/ironsheep/pixel-slider-mcp/internal/imaging"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Compute every pixelation level of an image and write them out",
	Long: `export runs the pixelation engine to completion and writes every level to
a directory, one file per level, or to a zstd-compressed tar archive when the
output path ends in .tar.zst.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringP("input", "i", "", "Input image file")
	exportCmd.Flags().StringP("output", "o", "", "Output directory or .tar.zst archive")
	exportCmd.Flags().String("format", "", "Level file format: png, jpeg or bmp (default from config)")
	exportCmd.Flags().Int("quality", 0, "JPEG quality (1-100, default from config)")
	exportCmd.Flags().String("prefix", "level", "File name prefix")
	exportCmd.Flags().Int("workers", 0, "Background workers (default from config)")
	exportCmd.MarkFlagRequired("input")
	exportCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	quality, _ := cmd.Flags().GetInt("quality")
	prefix, _ := cmd.Flags().GetString("prefix")
	workers, _ := cmd.Flags().GetInt("workers")

	exportOpts := cfg.ExportOptions()
	exportOpts.Prefix = prefix
	if format != "" {
		f, err := imaging.ParseExportFormat(format)
		if err != nil {
			return err
		}
		exportOpts.Format = f
	}
	if quality != 0 {
		exportOpts.JPEGQuality = quality
	}

	img, err := imaging.LoadFile(inputPath)
	if err != nil {
		return err
	}

	opts := cfg.EngineOptions()
	if workers > 0 {
		opts.Workers = workers
	}
	opts.NotifyAll = true
	opts.Listener = func(ev engine.Event) {
		if ev.Err != nil {
			log.Printf("level %d failed: %v", ev.Level, ev.Err)
		}
	}

	eng, err := engine.New(img.Image, opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	start := time.Now()
	if err := eng.Start(ctx); err != nil {
		return err
	}
	if err := eng.Wait(context.Background()); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return fmt.Errorf("interrupted")
	}

	status := eng.Status()
	if status.Failed > 0 {
		return fmt.Errorf("%d of %d levels failed", status.Failed, status.Plan.MaxLevel)
	}

	plan := eng.Plan()
	levels := make([]imaging.Level, 0, plan.Levels())
	for level := 0; level <= plan.MaxLevel; level++ {
		levelImg, ok := eng.Cached(level)
		if !ok {
			return fmt.Errorf("level %d was not computed", level)
		}
		levels = append(levels, imaging.Level{Level: level, BlockSize: plan.BlockSize(level), Image: levelImg})
	}

	res, err := imaging.Export(outputPath, levels, exportOpts)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d levels to %s (%d bytes) in %s\n",
		len(res.Files), res.Path, res.Bytes, time.Since(start).Round(time.Millisecond))
	return nil
}
