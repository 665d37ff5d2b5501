package assemble

import "strings"

// Roles of the turn-delimited prompt format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one prior message of the conversation.
type Turn struct {
	Role    string
	Content string
}

func writeTurn(b *strings.Builder, role, content string) {
	b.WriteString("<|im_start|>")
	b.WriteString(role)
	b.WriteByte('\n')
	b.WriteString(content)
	b.WriteString("<|im_end|>\n")
}

// RenderChatML renders system, history and the new user turn, ending with
// an open assistant turn. History roles other than user and assistant are
// rendered as user.
func RenderChatML(system string, history []Turn, user string) string {
	var b strings.Builder
	b.Grow(len(system) + len(user) + 128 + 64*len(history))
	writeTurn(&b, RoleSystem, system)
	for _, t := range history {
		role := t.Role
		if role != RoleAssistant {
			role = RoleUser
		}
		writeTurn(&b, role, t.Content)
	}
	writeTurn(&b, RoleUser, user)
	b.WriteString("<|im_start|>")
	b.WriteString(RoleAssistant)
	b.WriteByte('\n')
	return b.String()
}
