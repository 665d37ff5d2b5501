package inference

import (
	"strings"
	"unicode/utf8"
)

// DefaultStopSequences end generation when they appear in the output.
var DefaultStopSequences = []string{"<|im_end|>", "<|im_start|>", "</s>", "<|endoftext|>"}

// stopFilter turns runtime pieces into emitted fragments. Text after a
// stop sequence is dropped. A trailing run that could still become a stop
// sequence, or an incomplete UTF-8 sequence, is held until the next piece
// decides it.
type stopFilter struct {
	stops []string
	held  string
}

func newStopFilter(stops []string) *stopFilter {
	f := &stopFilter{}
	for _, s := range stops {
		if s != "" {
			f.stops = append(f.stops, s)
		}
	}
	return f
}

// push appends piece to the output and returns the fragment that is safe to
// emit and whether a stop sequence was reached.
func (f *stopFilter) push(piece string) (fragment string, stop bool) {
	s := f.held + piece
	f.held = ""
	if i := f.firstStop(s); i >= 0 {
		return s[:i], true
	}
	n := f.partialStop(s)
	if u := incompleteSuffix(s); u > n {
		n = u
	}
	f.held = s[len(s)-n:]
	return s[:len(s)-n], false
}

// flush returns any held-back bytes.
func (f *stopFilter) flush() string {
	s := f.held
	f.held = ""
	return s
}

// firstStop returns the earliest index of any stop sequence in s, or -1.
func (f *stopFilter) firstStop(s string) int {
	first := -1
	for _, seq := range f.stops {
		if i := strings.Index(s, seq); i >= 0 && (first < 0 || i < first) {
			first = i
		}
	}
	return first
}

// partialStop returns the length of the longest suffix of s that is a proper
// prefix of a stop sequence.
func (f *stopFilter) partialStop(s string) int {
	best := 0
	for _, seq := range f.stops {
		for n := min(len(seq)-1, len(s)); n > best; n-- {
			if strings.HasSuffix(s, seq[:n]) {
				best = n
				break
			}
		}
	}
	return best
}

// incompleteSuffix returns the length of a trailing UTF-8 sequence that
// needs more bytes, or 0.
func incompleteSuffix(s string) int {
	for i := 1; i <= utf8.UTFMax-1 && i <= len(s); i++ {
		b := s[len(s)-i]
		if b < utf8.RuneSelf {
			return 0
		}
		if utf8.RuneStart(b) {
			if utf8.FullRuneInString(s[len(s)-i:]) {
				return 0
			}
			return i
		}
	}
	return 0
}
