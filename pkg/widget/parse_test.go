package widget

import (
	"testing"
)

func TestParseBlocks(t *testing.T) {
	content := "intro\n```widget:nav\n{\"depth\": 2}\n```\nmiddle\n```widget:footer\n```\nend"

	blocks := ParseBlocks(content)
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}

	if blocks[0].Name != "nav" {
		t.Errorf("blocks[0].Name = %q", blocks[0].Name)
	}
	if got := blocks[0].Params["depth"]; got != float64(2) {
		t.Errorf("blocks[0].Params[depth] = %v", got)
	}
	if blocks[0].ParseErr != "" {
		t.Errorf("blocks[0].ParseErr = %q", blocks[0].ParseErr)
	}

	if blocks[1].Name != "footer" {
		t.Errorf("blocks[1].Name = %q", blocks[1].Name)
	}
	if blocks[1].Params != nil {
		t.Errorf("empty body should have nil params, got %v", blocks[1].Params)
	}

	// Offsets point at the exact block text.
	for i, b := range blocks {
		if content[b.Start:b.End] != b.FullMatch {
			t.Errorf("blocks[%d] offsets do not cover FullMatch", i)
		}
	}
	if blocks[0].End > blocks[1].Start {
		t.Error("blocks out of document order")
	}
}

func TestParseBlocksMalformedJSON(t *testing.T) {
	blocks := ParseBlocks("```widget:chart\n{not json}\n```")
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if blocks[0].ParseErr == "" {
		t.Error("expected ParseErr for malformed JSON body")
	}
	if blocks[0].Params != nil {
		t.Errorf("Params = %v, want nil", blocks[0].Params)
	}
}

func TestParseBlocksIgnoresOtherFences(t *testing.T) {
	content := "```go\nfmt.Println()\n```\n\n```widget:nav\n```\n"
	blocks := ParseBlocks(content)
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if blocks[0].Name != "nav" {
		t.Errorf("Name = %q", blocks[0].Name)
	}
}

func TestParseBlocksNone(t *testing.T) {
	if blocks := ParseBlocks("plain text, no widgets"); blocks != nil {
		t.Errorf("got %v, want nil", blocks)
	}
}

func TestParseBlocksCRLF(t *testing.T) {
	blocks := ParseBlocks("```widget:nav\r\n{\"a\": 1}\r\n```")
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if blocks[0].ParseErr != "" {
		t.Errorf("ParseErr = %q", blocks[0].ParseErr)
	}
	if got := blocks[0].Params["a"]; got != float64(1) {
		t.Errorf("Params[a] = %v", got)
	}
}
