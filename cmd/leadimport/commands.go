package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rpattn/leadflow/internal/config"
	"github.com/rpattn/leadflow/internal/ingestion"
	"github.com/rpattn/leadflow/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	configPath string
	policy     string
	asJSON     bool
}

// app is what every subcommand needs once config and store are open.
type app struct {
	service *ingestion.Service
	store   *store.Store
	logger  *zap.Logger
	out     io.Writer
	asJSON  bool
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "leadimport",
		Short:         "Import lead spreadsheets from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", ".", "Directory containing config.yaml")
	cmd.PersistentFlags().StringVar(&opts.policy, "policy", "", "Required-field policy override (company_or_org_number, company_and_org_number)")
	cmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "Print machine readable JSON")

	cmd.AddCommand(newImportCmd(&opts), newPreviewCmd(&opts), newHistoryCmd(&opts))
	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import a .csv or .xlsx file into the lead store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			req, closeFile, err := fileRequest(args[0])
			if err != nil {
				return err
			}
			defer closeFile()

			report, err := a.service.Import(cmd.Context(), req)
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(report)
			}
			a.printNotices(report.Notices)
			return nil
		},
	}
}

func newPreviewCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "preview FILE",
		Short: "Validate a file and show what an import would do, without writing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			req, closeFile, err := fileRequest(args[0])
			if err != nil {
				return err
			}
			defer closeFile()

			batch, err := a.service.Preview(cmd.Context(), req)
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(batch)
			}
			a.printNotices(ingestion.BuildNotices(batch, nil))
			return nil
		},
	}
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past import runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			records, err := a.service.History(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(records)
			}
			for _, r := range records {
				line := fmt.Sprintf("%s  %-9s  %s  total=%d valid=%d errors=%d skipped=%d",
					r.CreatedAt.Format("2006-01-02 15:04"), r.Status, r.FileName,
					r.TotalRows, r.ValidRows, r.ErrorRows, r.SkippedRows)
				if r.ErrorMessage != nil {
					line += "  " + *r.ErrorMessage
				}
				fmt.Fprintln(a.out, line)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of runs to skip")
	return cmd
}

func openApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.policy != "" {
		cfg.Import.RequiredPolicy = opts.policy
	}
	ingestCfg, err := cfg.Import.IngestionConfig()
	if err != nil {
		return nil, err
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cmd.Context(), cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	return &app{
		service: ingestion.NewService(ingestCfg, st.Leads, st.Audits, logger),
		store:   st,
		logger:  logger,
		out:     cmd.OutOrStdout(),
		asJSON:  opts.asJSON,
	}, nil
}

func (a *app) close() {
	a.store.Close()
	_ = a.logger.Sync()
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) printNotices(notices []ingestion.Notice) {
	for _, n := range notices {
		fmt.Fprintf(a.out, "[%s] %s: %s\n", n.Level, n.Title, n.Description)
		for _, detail := range n.Details {
			fmt.Fprintf(a.out, "  %s\n", detail)
		}
	}
}

func fileRequest(path string) (ingestion.Request, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return ingestion.Request{}, nil, fmt.Errorf("open %s: %w", path, err)
	}
	req := ingestion.Request{FileName: strings.TrimSpace(filepath.Base(path)), Data: f}
	return req, func() { _ = f.Close() }, nil
}
