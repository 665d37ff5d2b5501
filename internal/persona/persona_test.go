package persona

import (
	"errors"
	"testing"
)

func TestAnalyzeEmpty(t *testing.T) {
	if _, err := Analyze(nil); !errors.Is(err, ErrNoMessages) {
		t.Fatalf("got %v", err)
	}
}

func TestAnalyzeCasualEnglish(t *testing.T) {
	msgs := []string{
		"hey, what's up 😀",
		"cool, see you later",
		"see you later then",
		"ok see you later",
	}
	p, err := Analyze(msgs)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if p.Language != "en" || p.WritingStyle != "casual" || p.MessagesAnalyzed != 4 {
		t.Fatalf("unexpected persona %+v", p)
	}
	if p.EmojiUsage != "minimal" {
		t.Fatalf("emoji usage %s", p.EmojiUsage)
	}
	if len(p.CommonPhrases) != 2 || p.CommonPhrases[0] != "see you" || p.CommonPhrases[1] != "you later" {
		t.Fatalf("phrases %q", p.CommonPhrases)
	}
}

func TestAnalyzeRussianFormalFriendly(t *testing.T) {
	msgs := []string{
		"Пожалуйста, помогите, спасибо",
		"Благодарю, отлично",
	}
	p, err := Analyze(msgs)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if p.Language != "ru" || p.WritingStyle != "formal" || p.Tone != "friendly" || p.EmojiUsage != "none" {
		t.Fatalf("unexpected persona %+v", p)
	}
}

func TestAnalyzeInquisitiveAndLength(t *testing.T) {
	p, err := Analyze([]string{"why?", "how so?", "ok"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if p.Tone != "inquisitive" {
		t.Fatalf("tone=%s", p.Tone)
	}
	if p.AvgMessageLength != 13.0/3 {
		t.Fatalf("avg=%v", p.AvgMessageLength)
	}
}

func TestEmojiUsageThresholds(t *testing.T) {
	cases := map[float64]string{0: "none", 0.09: "none", 0.1: "minimal", 0.49: "minimal", 0.5: "moderate", 0.99: "moderate", 1: "heavy", 3: "heavy"}
	for r, want := range cases {
		if got := emojiUsage(r); got != want {
			t.Fatalf("%v: got %s want %s", r, got, want)
		}
	}
}

func TestSummary(t *testing.T) {
	p, _ := Analyze([]string{"hello"})
	if got := Summary(p); got != "Style: neutral, Tone: neutral, Language: en" {
		t.Fatalf("summary %q", got)
	}
}
