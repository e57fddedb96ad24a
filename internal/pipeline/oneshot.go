package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pedidos/internal"
)

// ExtractItemsFromFile picks the reader by extension: .pdf, .eml or plain text.
func (e Extractor) ExtractItemsFromFile(path string) ([]internal.OrderItem, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return e.ExtractPDF(path)
	case ".eml":
		blob, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return e.ExtractEmail(blob, filepath.Base(path))
	case ".txt", "":
		blob, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return e.ExtractText(string(blob), filepath.Base(path), internal.SourceText), nil
	default:
		return nil, fmt.Errorf("unsupported input type: %s", filepath.Ext(path))
	}
}
