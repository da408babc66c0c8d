package docparse

import (
	"regexp"
	"strings"
)

// sentenceEndRe marks a sentence boundary: one or more terminators followed
// by whitespace or end of text. The whitespace requirement keeps URLs,
// decimals, and dotted abbreviations inside a single sentence.
var sentenceEndRe = regexp.MustCompile(`[.!?]+(\s+|$)`)

// splitSentences normalizes whitespace and splits text into sentences.
// A trailing fragment without a terminator counts as a sentence.
func splitSentences(text string) []string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil
	}

	var sentences []string
	last := 0
	for _, loc := range sentenceEndRe.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[last:loc[1]]); s != "" {
			sentences = append(sentences, s)
		}
		last = loc[1]
	}
	if tail := strings.TrimSpace(text[last:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

// chunkText splits text into sentence-respecting windows of at most chunkSize
// characters. Consecutive windows share trailing sentences amounting to at
// least chunkOverlap characters. A single sentence longer than chunkSize is
// hard-cut into fixed windows overlapping by exactly chunkOverlap.
func (p *Parser) chunkText(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	i := 0
	for i < len(sentences) {
		if len(sentences[i]) > p.chunkSize {
			chunks = append(chunks, p.hardCut(sentences[i])...)
			// Carry the overlap tail across the hard-cut boundary by
			// prepending it to the next sentence.
			if p.chunkOverlap > 0 && i+1 < len(sentences) {
				tail := sentences[i]
				if len(tail) > p.chunkOverlap {
					tail = tail[len(tail)-p.chunkOverlap:]
				}
				sentences[i+1] = tail + " " + sentences[i+1]
			}
			i++
			continue
		}

		// Greedily fill the window with whole sentences.
		size := 0
		j := i
		for ; j < len(sentences); j++ {
			add := len(sentences[j])
			if j > i {
				add++ // joining space
			}
			if size+add > p.chunkSize {
				break
			}
			size += add
		}
		chunks = append(chunks, strings.Join(sentences[i:j], " "))
		if j >= len(sentences) {
			break
		}

		// Carry trailing sentences into the next window until the overlap
		// budget is met, always advancing by at least one sentence.
		next := j
		carried := 0
		for next > i+1 && carried < p.chunkOverlap {
			carried += len(sentences[next-1]) + 1
			next--
		}
		i = next
	}
	return chunks
}

// hardCut slices an oversized sentence into chunkSize windows stepping by
// chunkSize-chunkOverlap, so adjacent pieces overlap by exactly chunkOverlap.
func (p *Parser) hardCut(s string) []string {
	step := p.chunkSize - p.chunkOverlap
	if step <= 0 {
		step = p.chunkSize
	}

	var out []string
	for start := 0; ; start += step {
		end := start + p.chunkSize
		if end >= len(s) {
			out = append(out, s[start:])
			return out
		}
		out = append(out, s[start:end])
	}
}
