package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pedidos/internal/config"
	"pedidos/internal/listener"
	"pedidos/internal/logging"
	"pedidos/internal/pipeline"
	"pedidos/internal/storage"
)

type app struct {
	cfg       config.Config
	verbose   bool
	noHistory bool
}

func newRootCmd(cfg config.Config) *cobra.Command {
	a := &app{cfg: cfg}

	root := &cobra.Command{
		Use:           "pedidos",
		Short:         "Extract order lines from PDF purchase orders into a spreadsheet",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.runProcess,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.InputDir, "input", cfg.InputDir, "folder with PDF orders")
	flags.StringVar(&a.cfg.OutputPath, "output", cfg.OutputPath, "xlsx output path")
	flags.StringVar(&a.cfg.DBPath, "db", cfg.DBPath, "run history database")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	flags.BoolVar(&a.cfg.DumpText, "dump", cfg.DumpText, "log every extracted text line (needs --verbose)")
	flags.BoolVar(&a.cfg.IncludeEML, "eml", cfg.IncludeEML, "also read PDF attachments from .eml files")
	flags.BoolVar(&a.noHistory, "no-history", false, "do not record runs")

	root.AddCommand(a.watchCmd(), a.historyCmd(), a.exportCmd(), a.extractCmd())
	return root
}

func (a *app) logger() *slog.Logger {
	level := a.cfg.LogLevel
	if a.verbose {
		level = "debug"
	}
	return logging.New(os.Stdout, level)
}

// openDB returns nil when history is disabled for the default command.
func (a *app) openDB() (*storage.DB, error) {
	if a.noHistory {
		return nil, nil
	}
	return a.requireDB()
}

func (a *app) requireDB() (*storage.DB, error) {
	if err := a.cfg.Require("DB_PATH", a.cfg.DBPath); err != nil {
		return nil, err
	}
	return storage.Open(a.cfg.DBPath)
}

func (a *app) runProcess(cmd *cobra.Command, _ []string) error {
	log := a.logger()
	db, err := a.openDB()
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	fmt.Printf("processing folder %s\n", a.cfg.InputDir)
	res, err := pipeline.NewProcessingService(db, a.cfg, log).ProcessFolder(cmd.Context())
	switch {
	case errors.Is(err, pipeline.ErrInputFolderMissing), errors.Is(err, pipeline.ErrNoPDFFiles):
		fmt.Printf("%v\n", err)
		return nil
	case err != nil:
		return err
	}

	if res.Exported == 0 {
		fmt.Printf("no data extracted from %d file(s), nothing exported\n", res.Files)
		return nil
	}
	fmt.Printf("done files=%d failed=%d items=%d weight=%s kg output=%s\n",
		res.Files, res.Failed, len(res.Items), res.TotalWeight.StringFixed(3), res.OutputPath)
	return nil
}

func (a *app) watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the input folder and process new PDFs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.requireDB()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return listener.NewService(db, a.cfg, a.logger()).Run(ctx)
		},
	}
	cmd.Flags().IntVar(&a.cfg.WatchIntervalSec, "interval", a.cfg.WatchIntervalSec, "seconds between scans")
	cmd.Flags().StringVar(&a.cfg.WatchOutputDir, "out-dir", a.cfg.WatchOutputDir, "folder for per-cycle exports")
	cmd.Flags().BoolVar(&a.cfg.WatchAutoExport, "export", a.cfg.WatchAutoExport, "export each cycle's items")
	return cmd
}

func (a *app) historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.requireDB()
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := db.ListRuns(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs recorded")
				return nil
			}
			for _, r := range runs {
				fmt.Printf("%s started=%s files=%d failed=%d items=%d weight=%s output=%s\n",
					r.ID, r.StartedAt, r.Files, r.Failed, r.Items, r.TotalWeight, r.OutputPath)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "max runs")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var runID, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Re-export the items of a recorded run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if runID == "" || out == "" {
				return fmt.Errorf("--run and --out are required")
			}
			db, err := a.requireDB()
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := pipeline.NewProcessingService(db, a.cfg, a.logger()).ExportRun(runID, out)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Printf("run %s has no items, nothing exported\n", runID)
				return nil
			}
			fmt.Printf("exported %d rows to %s\n", n, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&runID, "run", "", "run id")
	cmd.Flags().StringVar(&out, "out", "", "output xlsx path")
	return cmd
}

func (a *app) extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract FILE",
		Short: "Print the order lines found in one .pdf, .eml or .txt file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := pipeline.NewExtractor(a.logger(), a.cfg.DumpText).ExtractItemsFromFile(args[0])
			if err != nil {
				return err
			}
			for _, it := range items {
				fmt.Printf("%03d %s | %s | %s | %s | %s x %s mm | %.3f kg\n",
					it.LineNo, it.CustomerText(), it.DeliveryDateText(), it.BarCodeText(),
					it.MaterialText(), it.DiameterText(), it.LengthText(), it.Weight)
			}
			fmt.Printf("items=%d\n", len(items))
			return nil
		},
	}
}
