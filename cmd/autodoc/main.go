package main

import (
	"autodoc/internal/config"
	"autodoc/internal/docgen"
	"autodoc/internal/llm"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Update flags
	replaceExisting  bool
	skipConstructors bool
	excludeDirs      string
	excludeFiles     string
	dryRun           bool
	modelOverride    string

	// Logger
	logger *zap.Logger
)

var (
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "autodoc <path>",
	Short: "Generate Go doc comments with an LLM",
	Long: `autodoc walks a Go source tree, finds functions without doc comments,
asks the configured model to write one, and splices the result back into
the file in gofmt form.

The API key comes from the environment (ANTHROPIC_API_KEY, OPENAI_API_KEY
or GEMINI_API_KEY), from a .env file in the working directory, or from
the config file written by "autodoc configure".`,
	Args: cobra.ExactArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip logger init for the wizard (it has its own UI)
		if cmd.Name() == "configure" {
			return nil
		}

		// Initialize logger
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runUpdate,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Config file path")

	// Update flags
	rootCmd.Flags().BoolVar(&replaceExisting, "replace-existing-docstrings", false, "Regenerate doc comments that already exist")
	rootCmd.Flags().BoolVar(&skipConstructors, "skip-constructor-docstrings", false, "Leave init and New* functions undocumented")
	rootCmd.Flags().StringVar(&excludeDirs, "exclude-directories", "", "Comma-separated directory names to skip")
	rootCmd.Flags().StringVar(&excludeFiles, "exclude-files", "", "Comma-separated file names to skip")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print generated comments without writing files")
	rootCmd.Flags().StringVar(&modelOverride, "model", "", "Override the configured model")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if err := config.LoadDotEnv(); err != nil {
		logger.Warn("failed to load .env file", zap.Error(err))
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if modelOverride != "" {
		cfg.LLM.Model = modelOverride
	}

	if cfg.LLM.APIKey == "" {
		fmt.Fprintln(os.Stderr, errStyle.Render("No API key configured."))
		fmt.Fprintln(os.Stderr, hintStyle.Render(`Set ANTHROPIC_API_KEY, OPENAI_API_KEY or GEMINI_API_KEY, add it to .env, or run "autodoc configure".`))
		return fmt.Errorf("no API key configured")
	}

	client, err := llm.NewClientFromConfig(ctx, cfg, logger)
	if err != nil {
		return err
	}

	gen := docgen.New(client, docgen.Options{
		ReplaceExisting:  replaceExisting,
		SkipConstructors: skipConstructors,
		ExcludeDirs:      splitList(excludeDirs),
		ExcludeFiles:     splitList(excludeFiles),
		DryRun:           dryRun,
	}, logger)

	return gen.UpdatePath(ctx, args[0])
}

// splitList turns a comma-separated flag value into trimmed, non-empty
// entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
