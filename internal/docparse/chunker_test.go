package docparse

import (
	"strings"
	"testing"
)

func TestSplitSentences_NormalizesWhitespace(t *testing.T) {
	got := splitSentences("First  sentence.\n\nSecond\tone! Third?")
	want := []string{"First sentence.", "Second one!", "Third?"}

	if len(got) != len(want) {
		t.Fatalf("Expected %d sentences, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sentence %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestSplitSentences_TrailingFragment(t *testing.T) {
	got := splitSentences("Complete sentence. trailing fragment without terminator")
	if len(got) != 2 {
		t.Fatalf("Expected 2 sentences, got %d: %v", len(got), got)
	}
	if got[1] != "trailing fragment without terminator" {
		t.Errorf("Trailing fragment: got %q", got[1])
	}
}

func TestSplitSentences_KeepsIntraTokenPunctuation(t *testing.T) {
	got := splitSentences("Visit https://example.com/late for details. Pi is roughly 3.14 in short.")
	want := []string{
		"Visit https://example.com/late for details.",
		"Pi is roughly 3.14 in short.",
	}

	if len(got) != len(want) {
		t.Fatalf("Expected %d sentences, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sentence %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestSplitSentences_Empty(t *testing.T) {
	if got := splitSentences("   \n\t "); got != nil {
		t.Errorf("Expected nil for blank input, got %v", got)
	}
}

func TestChunkText_FitsInOneChunk(t *testing.T) {
	p := NewParser(800, 100)
	chunks := p.chunkText("Short first sentence. Short second sentence.")

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "Short first sentence. Short second sentence." {
		t.Errorf("Chunk content: got %q", chunks[0])
	}
}

func TestChunkText_SentenceOverlap(t *testing.T) {
	p := NewParser(50, 10)
	// Lengths: 14, 14, 17, 11. The first window fits three sentences (47
	// chars with joining spaces); the second starts from the carried third
	// sentence.
	text := "One two three. Four five six. Seven eight nine. Ten eleven."

	chunks := p.chunkText(text)
	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "One two three. Four five six. Seven eight nine." {
		t.Errorf("Chunk 0: got %q", chunks[0])
	}
	if !strings.HasPrefix(chunks[1], "Seven eight nine.") {
		t.Errorf("Chunk 1 should start with the carried sentence, got %q", chunks[1])
	}
	for i, c := range chunks {
		if len(c) > 50 {
			t.Errorf("Chunk %d exceeds size budget: %d chars", i, len(c))
		}
	}
}

func TestChunkText_HardCutOversizedSentence(t *testing.T) {
	p := NewParser(10, 3)
	sentence := "abcdefghijklmnopqrstuvwxy" // 25 chars, no terminator

	chunks := p.chunkText(sentence)
	if len(chunks) != 4 {
		t.Fatalf("Expected 4 chunks, got %d: %v", len(chunks), chunks)
	}

	// Adjacent pieces overlap by exactly chunkOverlap characters.
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		if !strings.HasPrefix(chunks[i], prev[len(prev)-3:]) {
			t.Errorf("Chunk %d does not overlap chunk %d by 3 chars: %q vs %q",
				i, i-1, chunks[i], prev)
		}
	}
	if rebuilt := chunks[len(chunks)-1]; !strings.HasSuffix(sentence, rebuilt) {
		t.Errorf("Last chunk %q is not a suffix of the sentence", rebuilt)
	}
}

func TestChunkText_HardCutBoundaryCarriesOverlap(t *testing.T) {
	p := NewParser(20, 3)
	// 26-char sentence forces a hard cut; the window after it must start
	// with the cut sentence's overlap tail.
	chunks := p.chunkText("abcdefghijklmnopqrstuvwxy. Next one.")

	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "abcdefghijklmnopqrst" {
		t.Errorf("Chunk 0: got %q", chunks[0])
	}
	if chunks[1] != "rstuvwxy." {
		t.Errorf("Chunk 1: got %q", chunks[1])
	}
	if chunks[2] != "xy. Next one." {
		t.Errorf("Chunk 2 should carry the hard-cut tail, got %q", chunks[2])
	}
}

func TestChunkText_Empty(t *testing.T) {
	p := NewParser(800, 100)
	if chunks := p.chunkText(""); chunks != nil {
		t.Errorf("Expected nil for empty text, got %v", chunks)
	}
}
