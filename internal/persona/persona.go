// Package persona derives a heuristic profile of the user's writing from
// their messages: language, message length, emoji use, style, tone and
// recurring phrases.
package persona

import (
	"errors"
	"sort"
	"strings"

	"memoryd/internal/memstore"
)

// ErrNoMessages is returned when there is nothing to analyze.
var ErrNoMessages = errors.New("no messages to analyze")

const maxPhrases = 10

var (
	formalWords   = []string{"пожалуйста", "благодарю", "уважаемый", "please", "thank you", "regards"}
	casualWords   = []string{"привет", "ок", "круто", "классно", "hi", "hey", "cool", "awesome"}
	positiveWords = []string{"спасибо", "отлично", "хорошо", "thank", "great", "good", "nice"}
)

// Analyze builds a persona from user messages. Word lists match substrings
// of the lowercased message.
func Analyze(messages []string) (memstore.Persona, error) {
	n := len(messages)
	if n == 0 {
		return memstore.Persona{}, ErrNoMessages
	}
	var (
		totalBytes   int
		emoji        int
		cyrillic     bool
		formal       int
		casual       int
		positive     int
		questions    int
		phraseCounts = map[string]int{}
	)
	for _, m := range messages {
		totalBytes += len(m)
		lower := strings.ToLower(m)
		for _, r := range m {
			if isEmoji(r) {
				emoji++
			}
			if !cyrillic && isCyrillic(r) {
				cyrillic = true
			}
		}
		formal += countContained(lower, formalWords)
		casual += countContained(lower, casualWords)
		positive += countContained(lower, positiveWords)
		if strings.ContainsRune(m, '?') {
			questions++
		}
		words := strings.Fields(m)
		for i := 0; i+1 < len(words); i++ {
			p := strings.ToLower(words[i] + " " + words[i+1])
			if len(p) > 5 {
				phraseCounts[p]++
			}
		}
	}

	p := memstore.Persona{
		AvgMessageLength: float64(totalBytes) / float64(n),
		Language:         "en",
		EmojiUsage:       emojiUsage(float64(emoji) / float64(n)),
		WritingStyle:     "neutral",
		Tone:             "neutral",
		CommonPhrases:    commonPhrases(phraseCounts),
		TopicsOfInterest: []string{},
		MessagesAnalyzed: n,
	}
	if cyrillic {
		p.Language = "ru"
	}
	switch {
	case formal > casual*2:
		p.WritingStyle = "formal"
	case casual > formal*2:
		p.WritingStyle = "casual"
	}
	switch {
	case positive > n/2:
		p.Tone = "friendly"
	case questions > n/2:
		p.Tone = "inquisitive"
	}
	return p, nil
}

func emojiUsage(ratio float64) string {
	switch {
	case ratio < 0.1:
		return "none"
	case ratio < 0.5:
		return "minimal"
	case ratio < 1.0:
		return "moderate"
	}
	return "heavy"
}

func countContained(s string, words []string) int {
	c := 0
	for _, w := range words {
		if strings.Contains(s, w) {
			c++
		}
	}
	return c
}

// commonPhrases keeps bigrams seen more than twice, most frequent first.
func commonPhrases(counts map[string]int) []string {
	type pc struct {
		phrase string
		n      int
	}
	var list []pc
	for p, c := range counts {
		if c > 2 {
			list = append(list, pc{p, c})
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].n != list[j].n {
			return list[i].n > list[j].n
		}
		return list[i].phrase < list[j].phrase
	})
	out := make([]string, 0, min(len(list), maxPhrases))
	for i := 0; i < len(list) && i < maxPhrases; i++ {
		out = append(out, list[i].phrase)
	}
	return out
}

func isCyrillic(r rune) bool {
	return (r >= 'а' && r <= 'я') || (r >= 'А' && r <= 'Я') || r == 'ё' || r == 'Ё'
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F600 && r <= 0x1F64F,
		r >= 0x1F300 && r <= 0x1F5FF,
		r >= 0x1F680 && r <= 0x1F6FF,
		r >= 0x1F900 && r <= 0x1F9FF,
		r >= 0x2600 && r <= 0x26FF,
		r >= 0x2700 && r <= 0x27BF,
		r >= 0x1FA00 && r <= 0x1FA6F:
		return true
	}
	return false
}

// Summary is the one-line description used in prompts.
func Summary(p memstore.Persona) string {
	return "Style: " + p.WritingStyle + ", Tone: " + p.Tone + ", Language: " + p.Language
}
