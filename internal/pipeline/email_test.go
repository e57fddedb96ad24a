package pipeline

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pedidos/internal"
)

func buildEmail(attachments map[string][]byte) []byte {
	var b strings.Builder
	b.WriteString("From: compras@example.com\r\nTo: vendas@example.com\r\nSubject: Pedido 4471\r\n")
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: multipart/mixed; boundary=\"BOUNDARY\"\r\n\r\n")
	b.WriteString("--BOUNDARY\r\nContent-Type: text/plain; charset=utf-8\r\n\r\nSegue o pedido em anexo.\r\n")
	for name, blob := range attachments {
		b.WriteString("--BOUNDARY\r\n")
		b.WriteString("Content-Type: application/pdf; name=\"" + name + "\"\r\n")
		b.WriteString("Content-Disposition: attachment; filename=\"" + name + "\"\r\n")
		b.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
		enc := base64.StdEncoding.EncodeToString(blob)
		for len(enc) > 76 {
			b.WriteString(enc[:76] + "\r\n")
			enc = enc[76:]
		}
		b.WriteString(enc + "\r\n")
	}
	b.WriteString("--BOUNDARY--\r\n")
	return []byte(b.String())
}

func TestExtractEmailPDFAttachment(t *testing.T) {
	raw := buildEmail(map[string][]byte{
		"pedido.pdf": buildPDF([]string{"CLIENTE: 9 - ACME", "V-55 FIO DE ACO 3 x 9 mm 7 kg"}),
	})

	items, err := NewExtractor(nil, false).ExtractEmail(raw, "mail.eml")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("len=%d", len(items))
	}
	if items[0].SourceFile != "mail.eml#pedido.pdf" || items[0].Source != internal.SourceEmail {
		t.Fatalf("source=%q %q", items[0].SourceFile, items[0].Source)
	}
	if items[0].CustomerText() != "ACME" || items[0].Weight != 7 {
		t.Fatalf("item=%+v", items[0])
	}
}

func TestExtractEmailWithoutPDF(t *testing.T) {
	items, err := NewExtractor(nil, false).ExtractEmail(buildEmail(nil), "mail.eml")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Fatalf("len=%d", len(items))
	}
}

func TestExtractItemsFromFile(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "pedido.txt")
	if err := os.WriteFile(txt, []byte(sampleOrder), 0o644); err != nil {
		t.Fatal(err)
	}
	e := NewExtractor(nil, false)

	items, err := e.ExtractItemsFromFile(txt)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 3 || items[0].Source != internal.SourceText {
		t.Fatalf("items=%d", len(items))
	}

	if _, err := e.ExtractItemsFromFile(filepath.Join(dir, "x.docx")); err == nil {
		t.Fatal("expected unsupported type error")
	}
}
