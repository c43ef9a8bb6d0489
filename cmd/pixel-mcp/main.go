package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/pixel-slider-mcp/internal/config"
	"github.com/ironsheep/pixel-slider-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// cfg is loaded before any command runs.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "pixel-mcp",
	Short: "MCP server for progressive image pixelation",
	Long: `pixel-mcp computes every pixelation level of an image in the background
and serves them over the Model Context Protocol on stdin/stdout. The level
the client selects is always computed next.

Environment variables:
  PIXEL_MCP_CONFIG=FILE        Configuration file (TOML)
  PIXEL_MCP_LOG_LEVEL=debug    Enable debug logging`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runServe,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file (TOML)")
}

// setup loads the configuration and configures logging.
func setup(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")

	var err error
	cfg, err = config.Load(path)
	if err != nil {
		return err
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	server.Version = Version
	if cfg.Debug() {
		log.Printf("Pixel MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
