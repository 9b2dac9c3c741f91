package llm

import (
	"regexp"
	"strings"
)

// Reasoning spans are delimited by a paired marker the model emits before its
// visible reply. Nothing between the markers may reach display or history.
const (
	thinkStartMarker = "<think>"
	thinkEndMarker   = "</think>"
)

var thinkSpanPattern = regexp.MustCompile(`(?s)` + thinkStartMarker + `.*?` + thinkEndMarker)

// StripReasoning removes every reasoning span from a complete reply.
func StripReasoning(text string) string {
	return strings.TrimSpace(thinkSpanPattern.ReplaceAllString(text, ""))
}

// thinkFilter incrementally excludes reasoning spans from a token stream.
// Text is withheld while a marker could still complete across token
// boundaries, so no span character is ever released.
type thinkFilter struct {
	pending string
	inSpan  bool
}

// Feed consumes one delta and returns the text that is now safe to release.
func (f *thinkFilter) Feed(delta string) string {
	f.pending += delta
	var out strings.Builder

	for {
		if f.inSpan {
			idx := strings.Index(f.pending, thinkEndMarker)
			if idx < 0 {
				// Span content is dropped; keep only a tail that could be a
				// partial end marker.
				f.pending = markerTail(f.pending, thinkEndMarker)
				return out.String()
			}
			f.pending = f.pending[idx+len(thinkEndMarker):]
			f.inSpan = false
			continue
		}

		idx := strings.Index(f.pending, thinkStartMarker)
		if idx < 0 {
			hold := len(partialMarkerSuffix(f.pending, thinkStartMarker))
			out.WriteString(f.pending[:len(f.pending)-hold])
			f.pending = f.pending[len(f.pending)-hold:]
			return out.String()
		}
		out.WriteString(f.pending[:idx])
		f.pending = f.pending[idx+len(thinkStartMarker):]
		f.inSpan = true
	}
}

// Flush releases whatever is held once the stream ends. An unterminated span
// stays excluded; a dangling partial start marker becomes literal text.
func (f *thinkFilter) Flush() string {
	if f.inSpan {
		f.pending = ""
		return ""
	}
	out := f.pending
	f.pending = ""
	return out
}

// markerTail keeps the longest suffix of s that is a proper prefix of marker.
func markerTail(s, marker string) string {
	return partialMarkerSuffix(s, marker)
}

func partialMarkerSuffix(s, marker string) string {
	max := len(marker) - 1
	if max > len(s) {
		max = len(s)
	}
	for n := max; n > 0; n-- {
		if strings.HasPrefix(marker, s[len(s)-n:]) {
			return s[len(s)-n:]
		}
	}
	return ""
}
