package knowledge

import (
	"strings"
	"testing"
)

func TestCleanHTMLStripsMarkupAndChrome(t *testing.T) {
	html := `<html><head><title>Fees</title><style>body{}</style></head>
	<body><nav>menu</nav><p>Pix is  free.</p><script>alert(1)</script>
	<footer>footer text</footer></body></html>`

	got := CleanHTML(html)
	if !strings.Contains(got, "Pix is free.") {
		t.Errorf("CleanHTML = %q, want body text with collapsed whitespace", got)
	}
	for _, chrome := range []string{"menu", "alert", "footer text", "body{}"} {
		if strings.Contains(got, chrome) {
			t.Errorf("CleanHTML = %q retained %q", got, chrome)
		}
	}
}

func TestChunkTextBoundsChunkSize(t *testing.T) {
	p := NewProcessor(nil, nil)
	p.chunkSize = 50
	p.chunkOverlap = 10

	text := strings.Repeat("word ", 100)
	chunks := p.chunkText(text)

	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want text split into several", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > p.chunkSize+10 {
			t.Errorf("chunk %d is %d bytes, want about %d", i, len(chunk), p.chunkSize)
		}
	}
}

func TestChunkTextEmpty(t *testing.T) {
	p := NewProcessor(nil, nil)
	if chunks := p.chunkText("   "); chunks != nil {
		t.Errorf("got %v for blank text, want nil", chunks)
	}
}

func TestSeedCorpusIsBilingual(t *testing.T) {
	docs := Seed()
	if len(docs) == 0 {
		t.Fatal("seed corpus is empty")
	}

	languages := make(map[string]bool)
	ids := make(map[string]bool)
	for _, doc := range docs {
		if doc.SourceID == "" || doc.Content == "" {
			t.Errorf("document %q missing id or content", doc.Title)
		}
		if ids[doc.SourceID] {
			t.Errorf("duplicate source id %q", doc.SourceID)
		}
		ids[doc.SourceID] = true
		languages[doc.Language] = true
	}

	if !languages["en"] || !languages["pt"] {
		t.Errorf("seed corpus languages = %v, want both en and pt", languages)
	}
}
