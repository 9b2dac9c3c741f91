package llm

import (
	"strings"
	"testing"
)

func feedAll(f *thinkFilter, deltas ...string) string {
	var out strings.Builder
	for _, d := range deltas {
		out.WriteString(f.Feed(d))
	}
	out.WriteString(f.Flush())
	return out.String()
}

func TestThinkFilterPassThroughWithoutSpan(t *testing.T) {
	got := feedAll(&thinkFilter{}, "Hello", " there", "!")
	if got != "Hello there!" {
		t.Fatalf("filtered = %q, want %q", got, "Hello there!")
	}
}

func TestThinkFilterExcludesSpan(t *testing.T) {
	got := feedAll(&thinkFilter{}, "<think>internal reasoning</think>Hi there")
	if got != "Hi there" {
		t.Fatalf("filtered = %q, want %q", got, "Hi there")
	}
}

func TestThinkFilterSpanSplitAcrossDeltas(t *testing.T) {
	got := feedAll(&thinkFilter{}, "<thi", "nk>secret ", "stuff</th", "ink>visible")
	if got != "visible" {
		t.Fatalf("filtered = %q, want %q", got, "visible")
	}
	if strings.Contains(got, "secret") {
		t.Fatalf("span content leaked: %q", got)
	}
}

func TestThinkFilterSpanInMiddle(t *testing.T) {
	got := feedAll(&thinkFilter{}, "before <think>x</think>after")
	if got != "before after" {
		t.Fatalf("filtered = %q, want %q", got, "before after")
	}
}

func TestThinkFilterUnterminatedSpanDropped(t *testing.T) {
	got := feedAll(&thinkFilter{}, "ok <think>never closed")
	if got != "ok " {
		t.Fatalf("filtered = %q, want %q", got, "ok ")
	}
}

func TestThinkFilterDanglingPartialMarkerIsLiteral(t *testing.T) {
	got := feedAll(&thinkFilter{}, "value <thr")
	if got != "value <thr" {
		t.Fatalf("filtered = %q, want %q", got, "value <thr")
	}
}

func TestStripReasoning(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"<think>a\nb</think>Hello", "Hello"},
		{"Hello", "Hello"},
		{"  <think>x</think>  Hi  ", "Hi"},
		{"a<think>1</think>b<think>2</think>c", "abc"},
	}
	for _, tc := range cases {
		if got := StripReasoning(tc.in); got != tc.want {
			t.Fatalf("StripReasoning(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
