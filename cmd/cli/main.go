package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"jobmetrics/adapters/excel"
	"jobmetrics/adapters/sqlstore"
	"jobmetrics/app"
	"jobmetrics/domain/core"
	"jobmetrics/domain/schema"
	"jobmetrics/internal"
	"jobmetrics/internal/config"
	"jobmetrics/internal/export"
	"jobmetrics/internal/ingest"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli holds what every command needs once configuration is loaded
type cli struct {
	cfg     *config.Config
	db      *sqlx.DB
	service *app.ReportService
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:           "jobmetrics",
		Short:         "Studio job workbook metrics",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.db != nil {
				c.db.Close()
			}
		},
	}

	rootCmd.AddCommand(
		newExportCmd(c),
		newMetricsCmd(c),
		newBatchCmd(c),
		newHeadersCmd(),
		newRunsCmd(c),
	)
	return rootCmd
}

func (c *cli) init(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	c.cfg = cfg
	internal.DefaultLogger.SetLevel(internal.ParseLogLevel(cfg.LogLevel))

	var cache *app.ReportCache
	if cfg.Pipeline.CacheEnabled {
		cache = app.NewReportCache(cfg.Pipeline.CacheSize)
	}

	if cfg.Database.Enabled() {
		db, err := sqlstore.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to open run store: %w", err)
		}
		c.db = db
		c.service = app.NewReportService(sqlstore.NewRunRepository(db), cache)
		return nil
	}
	c.service = app.NewReportService(nil, cache)
	return nil
}

// workbookArg returns the workbook path from args or EXCEL_FILE.
func (c *cli) workbookArg(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if c.cfg.Paths.ExcelFile != "" {
		return c.cfg.Paths.ExcelFile, nil
	}
	return "", fmt.Errorf("no workbook given and EXCEL_FILE is not set")
}

func (c *cli) buildReport(ctx context.Context, path string, ff *filterFlags, persist bool) (*app.ReportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	filter, err := ff.filter()
	if err != nil {
		return nil, err
	}
	return c.service.BuildReport(ctx, app.ReportRequest{
		Filename: filepath.Base(path),
		Data:     data,
		Filter:   filter,
		Persist:  persist,
	})
}

func newExportCmd(c *cli) *cobra.Command {
	var outDir string
	var persist bool
	ff := &filterFlags{}

	cmd := &cobra.Command{
		Use:   "export [workbook]",
		Short: "Write every metric table as CSV plus report.json",
		Long: `Build the report for a workbook and write one <table>.csv per metric
table, plus report.json, into the output directory.

Example: jobmetrics export trabajos.xlsx --out artifacts/ --years 2024`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.workbookArg(args)
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = c.cfg.Paths.ArtifactsDir
			}

			res, err := c.buildReport(cmd.Context(), path, ff, persist)
			if err != nil {
				return err
			}
			files, err := export.WriteCSV(res.Report, outDir)
			if err != nil {
				return err
			}

			jsonPath := filepath.Join(outDir, "report.json")
			f, err := os.Create(jsonPath)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", jsonPath, err)
			}
			defer f.Close()
			if err := export.WriteJSON(res.Report, f); err != nil {
				return fmt.Errorf("failed to write %s: %w", jsonPath, err)
			}

			out := cmd.OutOrStdout()
			for _, p := range append(files, jsonPath) {
				fmt.Fprintln(out, p)
			}
			if len(res.Report.Insufficient) > 0 {
				fmt.Fprintf(out, "insufficient data: %s\n", strings.Join(res.Report.Insufficient, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (default ARTIFACTS_DIR)")
	cmd.Flags().BoolVar(&persist, "persist", false, "Store the run when a run store is configured")
	ff.register(cmd)
	return cmd
}

func newMetricsCmd(c *cli) *cobra.Command {
	var facets bool
	var tableKey string
	var persist bool
	ff := &filterFlags{}

	cmd := &cobra.Command{
		Use:   "metrics [workbook]",
		Short: "Print the report as JSON",
		Long: `Build the report for a workbook and print it to stdout.

--facets prints only the filter options found in the workbook;
--table prints a single metric table as CSV.

Example: jobmetrics metrics trabajos.xlsx --job-types REFORMA --table by_cliente`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.workbookArg(args)
			if err != nil {
				return err
			}
			res, err := c.buildReport(cmd.Context(), path, ff, persist)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case facets:
				return writeJSON(out, res.Facets)
			case tableKey != "":
				t, ok := res.Report.Table(tableKey)
				if !ok {
					return fmt.Errorf("unknown table %q", tableKey)
				}
				return export.EncodeCSV(out, t)
			}
			return writeJSON(out, res)
		},
	}

	cmd.Flags().BoolVar(&facets, "facets", false, "Print only the available filter values")
	cmd.Flags().StringVar(&tableKey, "table", "", "Print one table as CSV")
	cmd.Flags().BoolVar(&persist, "persist", false, "Store the run when a run store is configured")
	ff.register(cmd)
	return cmd
}

func newBatchCmd(c *cli) *cobra.Command {
	var outDir string
	var parallel int
	ff := &filterFlags{}

	cmd := &cobra.Command{
		Use:   "batch <workbook...>",
		Short: "Export several workbooks concurrently",
		Long: `Build and export reports for several workbooks. Each workbook gets its own
sub-directory named after the file.

Example: jobmetrics batch 2023.xlsx 2024.xlsx --out artifacts/ --parallel 4`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir == "" {
				outDir = c.cfg.Paths.ArtifactsDir
			}
			if parallel <= 0 {
				parallel = c.cfg.Pipeline.BatchParallelism
			}
			filter, err := ff.filter()
			if err != nil {
				return err
			}

			items, err := app.NewBatchRunner(c.service, parallel).Run(cmd.Context(), args, outDir, filter)
			if err != nil {
				return err
			}

			failed := 0
			out := cmd.OutOrStdout()
			for _, it := range items {
				if it.Err != nil {
					failed++
					fmt.Fprintf(out, "FAIL %s: %v\n", it.Path, it.Err)
					continue
				}
				fmt.Fprintf(out, "ok   %s -> %s (%d tables, %d jobs)\n", it.Path, it.OutDir, len(it.Files), it.Result.CompletedRows)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d workbooks failed", failed, len(items))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (default ARTIFACTS_DIR)")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "Workbooks processed at once (default BATCH_PARALLELISM)")
	ff.register(cmd)
	return cmd
}

func newHeadersCmd() *cobra.Command {
	var sheet string
	var tokens []string

	cmd := &cobra.Command{
		Use:   "headers <workbook>",
		Short: "Show where the header row is and how its columns resolve",
		Long: `Scan a sheet for its header row and print the canonical name each header
resolves to. Useful when a workbook fails to load.

Example: jobmetrics headers trabajos.xlsx --sheet "TRABAJOS EN CURSO" --tokens CLIENTE,ESTADO`,
		Args: cobra.ExactArgs(1),
		// no configuration or store needed
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, err := excel.OpenFile(args[0])
			if err != nil {
				return err
			}
			rows, err := wb.Rows(sheet)
			if err != nil {
				return fmt.Errorf("%w (sheets: %s)", err, strings.Join(wb.SheetNames(), ", "))
			}
			idx, err := ingest.FindHeaderRow(rows, tokens)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "sheet %q: header at row %d (expected %d)\n", sheet, idx, schema.HeaderRowIndex)
			resolved := ingest.StandardizeColumns(rows[idx])
			for i, raw := range rows[idx] {
				fmt.Fprintf(out, "  %-28q -> %s\n", raw, resolved[i])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", schema.CompletedJobsSheet, "Sheet to scan")
	cmd.Flags().StringSliceVar(&tokens, "tokens", []string{schema.Client, schema.JobType}, "Tokens the header row must contain")
	return cmd
}

func newRunsCmd(c *cli) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List stored runs, or print one run's report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				id, err := core.ParseRunID(args[0])
				if err != nil {
					return err
				}
				rn, err := c.service.GetRun(cmd.Context(), id)
				if err != nil {
					return err
				}
				return writeJSON(out, rn)
			}

			runs, err := c.service.ListRuns(cmd.Context(), limit, 0)
			if err != nil {
				return err
			}
			for _, rn := range runs {
				fmt.Fprintln(out, rn.Summary())
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of runs to list")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
