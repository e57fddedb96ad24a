package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"pedidos/internal/config"
	"pedidos/internal/logging"
	"pedidos/internal/pipeline"
	"pedidos/internal/storage"
)

// Service polls the input folder and processes PDFs it has not seen yet.
type Service struct {
	cfg       config.Config
	log       *slog.Logger
	processor *pipeline.ProcessingService
	now       func() time.Time
}

func NewService(db *storage.DB, cfg config.Config, log *slog.Logger) *Service {
	log = logging.OrDiscard(log)
	return &Service{
		cfg:       cfg,
		log:       log,
		processor: pipeline.NewProcessingService(db, cfg, log),
		now:       time.Now,
	}
}

func (s *Service) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.WatchIntervalSec) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	for {
		if _, err := s.RunCycle(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			s.log.Error("watch cycle failed", "err", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// RunCycle processes new files once. An empty or missing folder is not an
// error while watching.
func (s *Service) RunCycle(ctx context.Context) (pipeline.FolderResult, error) {
	opts := pipeline.FolderOptions{InputDir: s.cfg.InputDir, OnlyNew: true}
	if s.cfg.WatchAutoExport {
		opts.OutputPath = filepath.Join(s.cfg.WatchOutputDir, exportName(s.now()))
	}

	res, err := s.processor.Run(ctx, opts)
	if errors.Is(err, pipeline.ErrNoPDFFiles) || errors.Is(err, pipeline.ErrInputFolderMissing) {
		s.log.Debug("nothing to watch", "reason", err)
		return res, nil
	}
	if err != nil {
		return res, err
	}
	if res.RunID == "" {
		return res, nil
	}

	s.log.Info("watch cycle done",
		"run", res.RunID,
		"files", res.Files,
		"skipped", res.Skipped,
		"failed", res.Failed,
		"items", len(res.Items),
		"output", res.OutputPath,
	)
	return res, nil
}

// exportName is the per-cycle spreadsheet name, e.g. pedidos_20261017T093000.xlsx.
func exportName(t time.Time) string {
	return fmt.Sprintf("pedidos_%s.xlsx", t.Format("20060102T150405"))
}
