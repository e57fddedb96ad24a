package util

import "testing"

func TestSplitLinesKeepsBlankLines(t *testing.T) {
	lines := SplitLines("a\r\n\nb\n")
	if len(lines) != 4 {
		t.Fatalf("len=%d", len(lines))
	}
	if lines[0] != "a" || lines[1] != "" || lines[2] != "b" {
		t.Fatalf("lines=%q", lines)
	}
}

func TestHyphenateSpaces(t *testing.T) {
	if got := HyphenateSpaces("V 1,23"); got != "V-1,23" {
		t.Fatalf("got %q", got)
	}
}

func TestHasSuffixFold(t *testing.T) {
	if !HasSuffixFold("PEDIDO.PDF", ".pdf") {
		t.Fatal("expected match")
	}
	if HasSuffixFold("pedido.pdf.bak", ".pdf") {
		t.Fatal("unexpected match")
	}
}
