package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ironsheep/pixel-slider-mcp/internal/engine"
	"github.com/ironsheep/pixel-slider-mcp/internal/imaging"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the pixelation levels of an image",
	Args:  cobra.NoArgs,
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringP("input", "i", "", "Input image file")
	planCmd.Flags().Bool("json", false, "Print the plan as JSON")
	planCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(planCmd)
}

// planOutput is the JSON form of the plan command.
type planOutput struct {
	Info       imaging.ImageInfo `json:"info"`
	Plan       engine.Plan       `json:"plan"`
	BlockSizes []int             `json:"block_sizes"`
}

func runPlan(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	asJSON, _ := cmd.Flags().GetBool("json")

	img, err := imaging.LoadFile(inputPath)
	if err != nil {
		return err
	}
	plan := engine.NewPlan(img.Info.Width, cfg.Engine.MaxLevelCount)

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(&planOutput{Info: img.Info, Plan: plan, BlockSizes: plan.BlockSizes()})
	}

	fmt.Fprintf(out, "File:       %s\n", img.Info.Path)
	fmt.Fprintf(out, "Dimensions: %d x %d (%s)\n", img.Info.Width, img.Info.Height, img.Info.Format)
	fmt.Fprintf(out, "Levels:     %d (block size unit %.3f)\n", plan.MaxLevel, plan.BlockSizeUnit)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "level\tblock size\t")
	for level, bs := range plan.BlockSizes() {
		fmt.Fprintf(tw, "%d\t%d\t\n", level, bs)
	}
	return tw.Flush()
}
