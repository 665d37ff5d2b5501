package assemble

import "strings"

// DefaultSystemPrompt is used when no system prompt is configured.
const DefaultSystemPrompt = "You are a smart conversational assistant with long-term memory. " +
	"Answer briefly and to the point. " +
	"Reply only with meaningful text, without percentages, similarity formulas or service labels."

// memorySuffix follows the base prompt in every assembled system turn.
const memorySuffix = "\nYou remember all previous conversations and use that information." +
	" Reply only with the answer to the user, without percentages, similarity scores or metadata.\n\n"

// SanitizeSystemPrompt returns DefaultSystemPrompt when s is empty or asks
// the model to compare messages for similarity, which makes it answer with
// scores instead of replies. Otherwise s is returned unchanged.
func SanitizeSystemPrompt(s string) string {
	t := strings.TrimSpace(s)
	if t == "" || isSimilarityPrompt(t) {
		return DefaultSystemPrompt
	}
	return s
}

func isSimilarityPrompt(t string) bool {
	lower := strings.ToLower(t)
	switch {
	case strings.Contains(lower, "сходство") &&
		(strings.Contains(lower, "сравни") || strings.Contains(lower, "процент") || strings.Contains(t, "%")):
		return true
	case strings.Contains(lower, "сравни два сообщения"):
		return true
	case strings.Contains(lower, "similarity") && (strings.Contains(lower, "compare") || strings.Contains(t, "%")):
		return true
	}
	return false
}
