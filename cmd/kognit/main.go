package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pomilon/kognit/internal/archive"
	"github.com/pomilon/kognit/internal/config"
	"github.com/pomilon/kognit/internal/logger"
	"github.com/pomilon/kognit/internal/pipeline"
	"github.com/pomilon/kognit/internal/refinery"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "kognit",
		Short: "Developer profile harvester and identity synthesizer",
	}

	root.AddCommand(profileCmd(), harvestCmd(), schemaCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) *config.Config {
	cfg := config.Load()
	if token, _ := cmd.Flags().GetString("token"); token != "" {
		cfg.GitHubToken = token
	}
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		cfg.LLMModel = model
	}
	_ = logger.Initialize(cfg.LogLevel)
	return cfg
}

func profileCmd() *cobra.Command {
	var (
		mode     string
		scraping string
		output   string
		custom   string
		humor    int
		roast    bool
		search   bool
		yes      bool
	)

	cmd := &cobra.Command{
		Use:   "profile [login]",
		Short: "Harvest a GitHub profile and generate an identity report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(cmd)
			defer logger.Sync()

			if !yes && !confirmUsage() {
				return fmt.Errorf("aborted")
			}

			m, err := parseMode(mode)
			if err != nil {
				return err
			}
			forceBrowser, err := parseScraping(scraping, cfg)
			if err != nil {
				return err
			}

			if output == "" {
				output = args[0] + ".html"
			}
			return pipeline.Run(context.Background(), cfg, pipeline.Options{
				Login:              args[0],
				Mode:               m,
				ForceBrowser:       forceBrowser,
				Search:             search,
				Humor:              humor,
				Roast:              roast,
				CustomInstructions: custom,
				OutputPath:         output,
			})
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "summary", "Analysis mode: summary, deep-dive, connections, full-dive")
	cmd.Flags().StringVar(&scraping, "scraping-mode", "auto", "Acquisition mode: auto, api, browser")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output HTML path (default <login>.html)")
	cmd.Flags().StringVar(&custom, "custom", "", "Extra instructions for the narrative")
	cmd.Flags().IntVar(&humor, "humor", 0, "Humor level 0-10")
	cmd.Flags().BoolVar(&roast, "roast", false, "Roast mode (sarcastic tone)")
	cmd.Flags().BoolVar(&search, "search", false, "Include a web search pass")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the usage confirmation prompt")
	cmd.Flags().String("token", "", "GitHub token (overrides GITHUB_TOKEN)")
	cmd.Flags().String("model", "", "Model name (overrides LLM_MODEL)")
	return cmd
}

func harvestCmd() *cobra.Command {
	var (
		scraping string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "harvest [login]",
		Short: "Fetch a profile and dump it (no generation pass)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(cmd)
			defer logger.Sync()

			forceBrowser, err := parseScraping(scraping, cfg)
			if err != nil {
				return err
			}
			return pipeline.Harvest(context.Background(), cfg, pipeline.Options{
				Login:        args[0],
				ForceBrowser: forceBrowser,
				OutputPath:   output,
			})
		},
	}
	cmd.Flags().StringVar(&scraping, "scraping-mode", "auto", "Acquisition mode: auto, api, browser")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path; .json dumps the raw record, otherwise markdown (default stdout)")
	cmd.Flags().String("token", "", "GitHub token (overrides GITHUB_TOKEN)")
	cmd.Flags().String("model", "", "Model name (overrides LLM_MODEL)")
	return cmd
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Initialize/update the SurrealDB archive schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg := loadConfig(cmd)
			defer logger.Sync()

			if !cfg.ArchiveEnabled() {
				return fmt.Errorf("SURREAL_URL is not configured")
			}
			db, err := archive.NewClient(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(ctx) }()

			if err := db.InitSchema(ctx); err != nil {
				return err
			}
			fmt.Println("Schema initialized")
			return nil
		},
	}
}

func parseMode(s string) (refinery.Mode, error) {
	switch s {
	case "summary":
		return refinery.ModeSummary, nil
	case "deep-dive":
		return refinery.ModeDeepDive, nil
	case "connections":
		return refinery.ModeConnections, nil
	case "full-dive":
		return refinery.ModeFullDive, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want summary, deep-dive, connections, or full-dive)", s)
	}
}

func parseScraping(s string, cfg *config.Config) (bool, error) {
	switch s {
	case "auto":
		return false, nil
	case "api":
		if cfg.GitHubToken == "" {
			return false, fmt.Errorf("--scraping-mode=api requires a GitHub token")
		}
		return false, nil
	case "browser":
		return true, nil
	default:
		return false, fmt.Errorf("unknown scraping mode %q (want auto, api, or browser)", s)
	}
}

func confirmUsage() bool {
	fmt.Println("This tool aggregates public information about a person.")
	fmt.Println("Use it only on yourself or with the subject's consent.")
	fmt.Print("Continue? [y/N] ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
