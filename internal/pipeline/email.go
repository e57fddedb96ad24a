package pipeline

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jhillyerd/enmime"

	"pedidos/internal"
	"pedidos/internal/util"
)

// ExtractEmail extracts items from every PDF attached to a raw RFC 822
// message. A broken attachment is logged and skipped.
func (e Extractor) ExtractEmail(raw []byte, emailName string) ([]internal.OrderItem, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("read email %s: %w", emailName, err)
	}

	items := []internal.OrderItem{}
	found := 0
	for _, att := range append(env.Attachments, env.Inlines...) {
		filename := strings.TrimSpace(att.FileName)
		if !util.HasSuffixFold(filename, ".pdf") && att.ContentType != "application/pdf" {
			continue
		}
		if filename == "" {
			filename = "attachment.pdf"
		}
		found++

		name := filepath.Base(emailName) + "#" + filename
		extra, err := e.ExtractPDFBytes(att.Content, name, internal.SourceEmail)
		if err != nil {
			e.logger().Warn("skipping pdf attachment", "email", emailName, "attachment", filename, "err", err)
			continue
		}
		items = append(items, extra...)
	}

	if found == 0 {
		e.logger().Info("email has no pdf attachments", "email", emailName, "subject", env.GetHeader("Subject"))
	}
	return items, nil
}
