package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"behave/internal/analysis"
	"behave/internal/config"
	"behave/internal/crawler"
	"behave/internal/generator"
	"behave/internal/index"
	"behave/internal/ir"
	"behave/internal/knowledge"
	"behave/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:           "behave",
		Short:         "Turn LLM-produced ASTs into verifiable behavioral models",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	configPath string
	dbPath     string
	logLevel   string

	outPath  string
	save     bool
	useLLM   bool
	langName string
	format   string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "behave.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the model database (SQLite), overrides storage.path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")

	analyzeCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the model document to this file")
	analyzeCmd.Flags().BoolVar(&save, "save", false, "Store the model in the database")
	analyzeCmd.Flags().BoolVar(&useLLM, "llm", false, "Ask the configured LLM for annotations")

	generateCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the model document to this file")
	generateCmd.Flags().BoolVar(&save, "save", false, "Store the model in the database")
	generateCmd.Flags().StringVar(&langName, "lang", "", "Source language, detected from the extension when empty")

	scanCmd.Flags().BoolVar(&useLLM, "llm", false, "Ask the configured LLM for annotations")

	showCmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json, report or markdown")
	showCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the markdown report to this file")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Build a behavioral model from a saved LLM answer (stdin when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg, cmd.ErrOrStderr())
		ctx := cmd.Context()

		source := "stdin"
		var raw []byte
		if len(args) > 0 {
			source = args[0]
			raw, err = os.ReadFile(args[0])
		} else {
			raw, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		var gen knowledge.Generator
		if useLLM {
			if gen, err = initGenerator(ctx, cfg); err != nil {
				return err
			}
		}

		m, err := initPipeline(cfg, logger, gen).Run(ctx, pipeline.Input{Raw: string(raw), SourceRef: source})
		if err != nil {
			return err
		}
		return emitModel(cmd, cfg, m)
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate <source-file>",
	Short: "Ask the configured LLM for an AST of a source file and build its behavioral model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg, cmd.ErrOrStderr())
		ctx := cmd.Context()

		src, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read source: %w", err)
		}

		var lang knowledge.Language
		if langName != "" {
			var ok bool
			if lang, ok = knowledge.ParseLanguage(langName); !ok {
				return fmt.Errorf("unsupported language: %s", langName)
			}
		}

		gen, err := initGenerator(ctx, cfg)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "🧠 Generating AST with %s (%s)...\n", cfg.AI.Provider, cfg.AI.Model)
		m, err := initPipeline(cfg, logger, gen).FromSource(ctx, pipeline.SourceInput{
			Source:   string(src),
			Path:     args[0],
			Language: lang,
		})
		if err != nil {
			return err
		}
		return emitModel(cmd, cfg, m)
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan [dir]",
	Short: "Build and store behavioral models for every saved LLM answer under a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) > 0 {
			root = args[0]
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg, cmd.ErrOrStderr())
		ctx := cmd.Context()

		store, err := initStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		var gen knowledge.Generator
		if useLLM {
			if gen, err = initGenerator(ctx, cfg); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "📂 Scanning directory: %s\n", root)
		start := time.Now()

		idx := index.NewIndexer(crawler.NewCrawler(), initPipeline(cfg, logger, gen), store, logger)
		report, err := idx.IndexDir(ctx, root)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "✅ Scan finished in %v: %d stored, %d cached, %d rejected.\n",
			time.Since(start).Round(time.Millisecond), len(report.Stored), len(report.Cached), len(report.Rejected))
		for _, e := range report.Stored {
			fmt.Fprintf(out, "  + %s  %s  %.4f\n", e.ModelID, e.Path, e.Score)
		}
		for _, r := range report.Rejected {
			fmt.Fprintf(out, "  ! %s: %s\n", r.Path, r.Reason)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a stored behavioral model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := initStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		m, err := store.GetModel(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to load model %s: %w", args[0], err)
		}
		switch format {
		case "json":
			return writeJSON(cmd.OutOrStdout(), m)
		case "report":
			return printReport(cmd.OutOrStdout(), m)
		case "markdown", "md":
			gen := generator.NewMarkdownGenerator()
			if outPath != "" {
				if err := gen.WriteFile(m, outPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "📝 Report written to %s\n", outPath)
				return nil
			}
			_, err := io.WriteString(cmd.OutOrStdout(), gen.Generate(m))
			return err
		default:
			return fmt.Errorf("unsupported format: %s", format)
		}
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored behavioral models",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := initStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		models, err := store.ListModels(cmd.Context())
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSOURCE\tSCORE\tRATING\tCREATED")
		for _, m := range models {
			fmt.Fprintf(tw, "%s\t%s\t%.4f\t%s\t%s\n", m.ID, m.SourceRef, m.Score, m.Rating, m.CreatedAt.Format(time.RFC3339))
		}
		return tw.Flush()
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a stored behavioral model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := initStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.DeleteModel(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete model %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted %s\n", args[0])
		return nil
	},
}

// emitModel stores and writes a freshly built model as the flags ask. The
// document goes to stdout unless --out was given.
func emitModel(cmd *cobra.Command, cfg *config.Config, m *ir.BehavioralModel) error {
	if save {
		store, err := initStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.SaveModel(cmd.Context(), m); err != nil {
			return fmt.Errorf("failed to save model: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "💾 Stored model %s in %s\n", m.ID, cfg.Storage.Path)
	}

	if outPath != "" {
		if err := index.SaveModel(m, outPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✅ Model written to %s (score %.4f, %s)\n", outPath, m.QualityScore, m.Rating())
		return nil
	}
	return writeJSON(cmd.OutOrStdout(), m)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(w io.Writer, m *ir.BehavioralModel) error {
	r := analysis.Analyze(m.AST, m.CFG)
	fmt.Fprintf(w, "Model:       %s (%s)\n", m.ID, m.SourceRef)
	fmt.Fprintf(w, "Score:       %.4f (%s)\n", m.QualityScore, m.Rating())
	fmt.Fprintf(w, "AST:         %s\n", r.ASTSummary)
	fmt.Fprintf(w, "CFG:         %s\n", r.CFGSummary)
	fmt.Fprintf(w, "AST nodes:   %d\n", r.ASTNodes)
	fmt.Fprintf(w, "Complexity:  %d (%d back edges, %d exception edges)\n", r.Complexity, r.BackEdges, r.ExceptionEdges)
	fmt.Fprintf(w, "Unreachable: %d\n", len(r.Unreachable))
	if m.CFG != nil {
		if err := m.CFG.Validate(); err != nil {
			fmt.Fprintf(w, "CFG check:   %v\n", err)
		}
	}
	for _, warn := range m.Warnings {
		fmt.Fprintf(w, "Warning:     %s\n", warn)
	}
	return nil
}
