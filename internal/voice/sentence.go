package voice

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// sentenceScanner incrementally segments streamed reply text into sentence
// units for synthesis. A sentence ends after a run of terminal punctuation
// followed by whitespace; the punctuation stays attached to its sentence and
// the separating whitespace is discarded. Text whose terminator has not yet
// been followed by whitespace stays buffered, because the terminator might
// still be mid-sentence (ellipses, decimals split across tokens).
type sentenceScanner struct {
	pending string
}

func isSentenceTerminal(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？':
		return true
	}
	return false
}

// Feed appends one streamed delta and returns the sentences completed by it,
// in order.
func (s *sentenceScanner) Feed(delta string) []string {
	text := s.pending + delta

	var out []string
	start := 0
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isSentenceTerminal(r) {
			i += size
			continue
		}

		end := i + size
		for end < len(text) {
			r2, size2 := utf8.DecodeRuneInString(text[end:])
			if !isSentenceTerminal(r2) {
				break
			}
			end += size2
		}

		next := end
		for next < len(text) {
			r3, size3 := utf8.DecodeRuneInString(text[next:])
			if !unicode.IsSpace(r3) {
				break
			}
			next += size3
		}

		if next == end {
			// Terminator not yet followed by whitespace; wait for more text.
			i = end
			continue
		}

		if seg := text[start:end]; strings.TrimSpace(seg) != "" {
			out = append(out, seg)
		}
		start = next
		i = next
	}

	s.pending = text[start:]
	return out
}

// Flush returns whatever incomplete sentence remains and resets the scanner.
func (s *sentenceScanner) Flush() string {
	rest := strings.TrimSpace(s.pending)
	s.pending = ""
	return rest
}
