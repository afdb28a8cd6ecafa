package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mshaim001-hue/ikap2/internal/api"
	"github.com/mshaim001-hue/ikap2/internal/config"
	"github.com/mshaim001-hue/ikap2/internal/converter"
	"github.com/mshaim001-hue/ikap2/internal/logger"
	"github.com/mshaim001-hue/ikap2/internal/models"
	"github.com/mshaim001-hue/ikap2/internal/statement"
	"github.com/mshaim001-hue/ikap2/internal/writer"
)

const version = "1.0.0"

var (
	outputPath   string
	jsonOutput   bool
	workbookDir  string
	includeMeta  bool
	servePort    string
	logLevelFlag string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ikap2 [statement.pdf ...]",
		Short: "Extract credit rows from bank statement PDFs",
		Long: `ikap2 converts bank statement PDFs to spreadsheets with Adobe PDF Services
and extracts the incoming (credit) transactions from them.

Examples:
  # Print credit rows as a table
  ikap2 statement.pdf

  # Save rows from several statements to one workbook
  ikap2 -o credits.xlsx jan.pdf feb.pdf

  # JSON for scripting
  ikap2 --json statement.pdf`,
		Version:       version,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		RunE:          runExtract,
	}

	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (overrides LOG_LEVEL)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Save rows to a .csv or .xlsx file")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print documents as JSON instead of a table")
	rootCmd.Flags().StringVar(&workbookDir, "save-workbook", "", "Directory to save the converted spreadsheets in")
	rootCmd.Flags().BoolVar(&includeMeta, "header", false, "Include statement metadata in the output file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)

	return rootCmd
}

// setup loads configuration and builds the logger and statement processor.
func setup() (*config.Config, zerolog.Logger, *statement.Processor, error) {
	cfg, warnings := config.Load()
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}
	log := logger.New(cfg.LogLevel)
	for _, w := range warnings {
		log.Warn().Msg(w)
	}

	if err := cfg.ValidateCredentials(); err != nil {
		return nil, log, nil, err
	}
	conv, err := converter.New(converter.Options{
		ClientID:       cfg.AdobeClientID,
		ClientSecret:   cfg.AdobeClientSecret,
		Region:         cfg.AdobeRegion,
		BaseURL:        cfg.AdobeBaseURL,
		ConnectTimeout: cfg.ConnectTimeout,
		ReadTimeout:    cfg.ReadTimeout,
		JobTimeout:     cfg.JobTimeout,
		PollInterval:   cfg.PollInterval,
		Logger:         log,
	})
	if err != nil {
		return nil, log, nil, err
	}
	return cfg, log, statement.New(conv, log), nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(outputPath)
	if err != nil {
		return err
	}

	_, log, proc, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var docs []models.DocumentResult
	for _, path := range args {
		doc, err := processFile(ctx, proc, path)
		if err != nil {
			return fmt.Errorf("processing %s: %w", path, err)
		}
		log.Info().Str("file", path).Int("transactions", len(doc.Transactions)).Msg("file processed")
		docs = append(docs, doc)
	}

	out := cmd.OutOrStdout()
	if !hasTransactions(docs) {
		fmt.Fprintln(out, "No credit rows found.")
		return nil
	}

	switch {
	case format != "":
		path := outputPath
		if filepath.Ext(path) == "" {
			path += ".csv"
		}
		if err := writeOutput(format, path, docs); err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved filtered data to %s\n", path)
	case jsonOutput:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(docs)
	default:
		tw := &writer.TableWriter{}
		for _, doc := range docs {
			if err := tw.Write(out, doc); err != nil {
				return err
			}
		}
	}
	return nil
}

func processFile(ctx context.Context, proc *statement.Processor, path string) (models.DocumentResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.DocumentResult{}, fmt.Errorf("reading input: %w", err)
	}

	name := filepath.Base(path)
	extraction, err := proc.ExtractNamed(ctx, name, data, name)
	if err != nil {
		return models.DocumentResult{}, err
	}

	if workbookDir != "" {
		if err := saveWorkbook(workbookDir, extraction); err != nil {
			return models.DocumentResult{}, err
		}
	}

	rows := statement.MergeTables(extraction.Tables)
	if rows == nil {
		rows = []models.FlatRow{}
	}
	return models.DocumentResult{
		SourceFile:   name,
		Metadata:     extraction.Metadata,
		Transactions: rows,
	}, nil
}

func saveWorkbook(dir string, extraction *models.StatementExtraction) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating workbook directory: %w", err)
	}
	path := filepath.Join(dir, extraction.WorkbookName)
	if err := os.WriteFile(path, extraction.Workbook, 0644); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

// outputFormat maps the --output suffix to a writer: "csv", "xlsx", or ""
// when no output file was requested.
func outputFormat(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case "", ".csv":
		return "csv", nil
	case ".xlsx", ".xls":
		return "xlsx", nil
	default:
		return "", fmt.Errorf("unsupported output format %q: use .csv or .xlsx", filepath.Ext(path))
	}
}

func writeOutput(format, path string, docs []models.DocumentResult) error {
	switch format {
	case "xlsx":
		w := &writer.XLSXWriter{IncludeHeader: includeMeta}
		return w.WriteToFile(path, docs)
	default:
		w := &writer.CSVWriter{IncludeHeader: includeMeta}
		return w.WriteToFile(path, docs)
	}
}

func hasTransactions(docs []models.DocumentResult) bool {
	for _, d := range docs {
		if len(d.Transactions) > 0 {
			return true
		}
	}
	return false
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, proc, err := setup()
	if err != nil {
		return err
	}
	port := cfg.Port
	if servePort != "" {
		port = servePort
	}

	h := &api.Handler{
		Extractor: proc,
		Workbooks: api.NewWorkbookStore(cfg.WorkbookCacheTTL),
		Log:       log,
	}
	app := api.NewApp(h, int(cfg.MaxUploadSizeBytes))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		_ = app.Shutdown()
	}()

	addr := ":" + port
	log.Info().Str("addr", addr).Str("version", version).Msg("server listening")
	return app.Listen(addr)
}
