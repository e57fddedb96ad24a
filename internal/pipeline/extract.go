package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"pedidos/internal"
	"pedidos/internal/logging"
	"pedidos/internal/util"
)

var ErrWeightParse = errors.New("invalid weight")

// Extractor turns document text into order items. DumpText logs every
// extracted line at debug level.
type Extractor struct {
	Log      *slog.Logger
	DumpText bool
}

func NewExtractor(log *slog.Logger, dumpText bool) Extractor {
	return Extractor{Log: logging.OrDiscard(log), DumpText: dumpText}
}

// ExtractOrderItems is the whole-document recognizer: metadata once, then
// every candidate line in order. Lines with an unreadable weight are skipped.
func ExtractOrderItems(text, sourceFile string) []internal.OrderItem {
	return NewExtractor(nil, false).ExtractText(text, sourceFile, internal.SourceText)
}

func (e Extractor) ExtractText(text, sourceFile string, source internal.ItemSource) []internal.OrderItem {
	log := e.logger().With("file", sourceFile)
	if e.DumpText {
		e.dump(log, text)
	}

	meta := DetectDocumentMeta(text)
	out := []internal.OrderItem{}
	for i, line := range util.SplitLines(text) {
		if !IsCandidateLine(line) {
			continue
		}
		log.Debug("candidate line", "line", i+1, "text", line)

		item, err := parseOrderLine(line, meta)
		if err != nil {
			log.Warn("skipping candidate line", "line", i+1, "text", line, "err", err)
			continue
		}
		item.LineNo = i + 1
		item.Source = source
		item.SourceFile = sourceFile
		out = append(out, item)
	}

	if len(out) == 0 {
		log.Info("no order lines found")
	}
	return out
}

// ExtractPDF reads one PDF and extracts its items. The file is closed
// before returning whether or not extraction succeeds.
func (e Extractor) ExtractPDF(path string) ([]internal.OrderItem, error) {
	text, err := ReadPDFFile(path)
	if err != nil {
		return nil, err
	}
	return e.ExtractText(text, filepath.Base(path), internal.SourcePDF), nil
}

// ExtractOrderItemsFromPDF never fails: a PDF that cannot be opened or read
// is logged and yields no items.
func ExtractOrderItemsFromPDF(path string, log *slog.Logger) []internal.OrderItem {
	items, err := NewExtractor(log, false).ExtractPDF(path)
	if err != nil {
		logging.OrDiscard(log).Error("cannot read pdf", "file", filepath.Base(path), "err", err)
		return []internal.OrderItem{}
	}
	return items
}

func (e Extractor) ExtractPDFBytes(content []byte, name string, source internal.ItemSource) ([]internal.OrderItem, error) {
	text, err := ReadPDFBytes(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return e.ExtractText(text, name, source), nil
}

func (e Extractor) dump(log *slog.Logger, text string) {
	if strings.TrimSpace(text) == "" {
		log.Warn("document has no extractable text, it may contain only images")
		return
	}
	for i, line := range util.SplitLines(text) {
		log.Debug(fmt.Sprintf("line %03d: %s", i+1, line))
	}
}

func (e Extractor) logger() *slog.Logger {
	return logging.OrDiscard(e.Log)
}
