package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pedidos/internal"
	"pedidos/internal/config"
	"pedidos/internal/logging"
	"pedidos/internal/storage"
	"pedidos/internal/util"
)

var (
	ErrInputFolderMissing = errors.New("input folder not found")
	ErrNoPDFFiles         = errors.New("no pdf files found")
)

// ProcessingService runs the folder pipeline. db may be nil, in which case
// no run history is kept.
type ProcessingService struct {
	db        *storage.DB
	cfg       config.Config
	log       *slog.Logger
	extractor Extractor
}

func NewProcessingService(db *storage.DB, cfg config.Config, log *slog.Logger) *ProcessingService {
	log = logging.OrDiscard(log)
	return &ProcessingService{
		db:        db,
		cfg:       cfg,
		log:       log,
		extractor: NewExtractor(log, cfg.DumpText),
	}
}

type FolderOptions struct {
	InputDir   string
	OutputPath string
	// OnlyNew skips files whose content hash is already recorded.
	OnlyNew bool
}

type FolderResult struct {
	RunID       string
	Files       int
	Failed      int
	Skipped     int
	Items       []internal.OrderItem
	Exported    int
	OutputPath  string
	TotalWeight decimal.Decimal
}

func (s *ProcessingService) ProcessFolder(ctx context.Context) (FolderResult, error) {
	return s.Run(ctx, FolderOptions{InputDir: s.cfg.InputDir, OutputPath: s.cfg.OutputPath})
}

type inputFile struct {
	name    string
	blob    []byte
	hash    string
	readErr error
}

// Run processes every input file once. With OnlyNew, files already recorded
// are skipped before a run is opened, so a cycle with nothing new leaves no
// run row and returns an empty RunID.
func (s *ProcessingService) Run(ctx context.Context, opts FolderOptions) (FolderResult, error) {
	paths, err := s.ListInputFiles(opts.InputDir)
	if err != nil {
		return FolderResult{}, err
	}

	result := FolderResult{OutputPath: opts.OutputPath, TotalWeight: decimal.Zero}
	files, skipped, err := s.pendingFiles(paths, opts.OnlyNew)
	if err != nil {
		return result, err
	}
	result.Skipped = skipped
	if len(files) == 0 {
		s.log.Debug("no new files", "dir", opts.InputDir, "skipped", skipped)
		result.Items = []internal.OrderItem{}
		result.OutputPath = ""
		return result, nil
	}

	result.RunID = uuid.NewString()
	if s.db != nil {
		if err := s.db.InsertRun(result.RunID, opts.InputDir); err != nil {
			return FolderResult{}, err
		}
	}

	all := []internal.OrderItem{}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		name := file.name

		if file.readErr != nil {
			result.Failed++
			s.log.Error("cannot read file", "file", name, "err", file.readErr)
			s.recordDocument(result.RunID, name, "", nil, file.readErr)
			continue
		}

		result.Files++
		s.log.Info("processing file", "file", name)
		items, err := s.extractFile(name, file.blob)
		s.recordDocument(result.RunID, name, file.hash, items, err)
		if err != nil {
			result.Failed++
			s.log.Error("extraction failed", "file", name, "err", err)
			continue
		}
		if len(items) == 0 {
			s.log.Warn("no item matched the order line pattern", "file", name)
			continue
		}
		s.log.Info("items extracted", "file", name, "items", len(items))
		all = append(all, items...)
	}

	result.Items = all
	result.TotalWeight = TotalWeight(all)

	if opts.OutputPath != "" {
		columns := SelectColumns(s.cfg.Columns, s.cfg.Labels)
		n, err := ExportOrderItems(all, opts.OutputPath, columns, s.log)
		if err != nil {
			return result, fmt.Errorf("export %s: %w", opts.OutputPath, err)
		}
		result.Exported = n
	}
	if result.Exported == 0 {
		result.OutputPath = ""
	}

	if s.db != nil {
		run := internal.RunRow{
			ID:          result.RunID,
			OutputPath:  result.OutputPath,
			Files:       result.Files,
			Failed:      result.Failed,
			Items:       len(all),
			TotalWeight: result.TotalWeight.String(),
		}
		if err := s.db.FinishRun(run); err != nil {
			return result, err
		}
	}
	return result, nil
}

// ExportRun re-exports the items stored for a previous run.
func (s *ProcessingService) ExportRun(runID, outputPath string) (int, error) {
	if s.db == nil {
		return 0, errors.New("run history is not available")
	}
	run, err := s.db.GetRun(runID)
	if err != nil {
		return 0, err
	}
	if run == nil {
		return 0, fmt.Errorf("run not found: %s", runID)
	}
	items, err := s.db.GetRunItems(runID)
	if err != nil {
		return 0, err
	}
	return ExportOrderItems(items, outputPath, SelectColumns(s.cfg.Columns, s.cfg.Labels), s.log)
}

// ListInputFiles returns the PDFs (and .eml files when enabled) directly in
// dir, sorted by name.
func (s *ProcessingService) ListInputFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInputFolderMissing, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	suffixes := []string{".pdf"}
	if s.cfg.IncludeEML {
		suffixes = append(suffixes, ".eml")
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() || !util.HasSuffixFold(e.Name(), suffixes...) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)

	if len(out) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoPDFFiles, dir)
	}
	return out, nil
}

// pendingFiles reads and hashes every path. With onlyNew, files whose hash
// is already recorded are dropped and counted as skipped.
func (s *ProcessingService) pendingFiles(paths []string, onlyNew bool) ([]inputFile, int, error) {
	var out []inputFile
	skipped := 0
	for _, path := range paths {
		file := inputFile{name: filepath.Base(path)}
		file.blob, file.readErr = os.ReadFile(path)
		if file.readErr == nil {
			file.hash = contentHash(file.blob)
		}

		if onlyNew && s.db != nil && file.hash != "" {
			seen, err := s.db.HasDocumentHash(file.hash)
			if err != nil {
				return nil, 0, err
			}
			if seen {
				skipped++
				continue
			}
		}
		out = append(out, file)
	}
	return out, skipped, nil
}

func (s *ProcessingService) extractFile(name string, blob []byte) ([]internal.OrderItem, error) {
	if util.HasSuffixFold(name, ".eml") {
		return s.extractor.ExtractEmail(blob, name)
	}
	return s.extractor.ExtractPDFBytes(blob, name, internal.SourcePDF)
}

func (s *ProcessingService) recordDocument(runID, name, hash string, items []internal.OrderItem, extractErr error) {
	if s.db == nil {
		return
	}

	doc := internal.DocumentRow{RunID: runID, FileName: name, Hash: hash, ItemCount: len(items)}
	switch {
	case extractErr != nil:
		doc.Status = internal.DocumentFailed
		doc.Error = util.StringPtr(extractErr.Error())
	case len(items) == 0:
		doc.Status = internal.DocumentEmpty
	default:
		doc.Status = internal.DocumentExtracted
	}

	docID, err := s.db.InsertDocument(doc)
	if err != nil {
		s.log.Error("cannot record document", "file", name, "err", err)
		return
	}
	if len(items) == 0 {
		return
	}
	if err := s.db.InsertItems(runID, docID, items); err != nil {
		s.log.Error("cannot record items", "file", name, "err", err)
	}
}

func TotalWeight(items []internal.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.Weight))
	}
	return total
}

func contentHash(blob []byte) string {
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:])
}
