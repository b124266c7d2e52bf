// Package prompt renders generation prompts from the detected language and
// intent, the assembled context block, and a bounded history window.
package prompt

import (
	"fmt"
	"strings"

	"github.com/merchant-assistant/backend/internal/lang"
	"github.com/merchant-assistant/backend/internal/retrieval"
	"github.com/merchant-assistant/backend/internal/session"
)

type Builder struct {
	historyWindow int
}

func NewBuilder(historyWindow int) *Builder {
	if historyWindow < 0 {
		historyWindow = 0
	}
	return &Builder{historyWindow: historyWindow}
}

// Prompt is a rendered system/user message pair for the completion backend.
type Prompt struct {
	System string
	User   string
}

// Build renders the generation prompt. An empty context block selects the
// no-grounding template, which instructs the model to clarify or admit the
// limits of its knowledge instead of answering freely.
func (b *Builder) Build(language lang.Language, intent lang.Intent, contextBlock []retrieval.Hit, history []session.Turn, utterance string) Prompt {
	tpl := templateFor(language)

	var system strings.Builder
	if len(contextBlock) == 0 {
		system.WriteString(tpl.noGrounding)
	} else {
		system.WriteString(tpl.system)
	}
	if hint, ok := tpl.intentHints[intent]; ok {
		system.WriteString("\n")
		system.WriteString(hint)
	}

	var user strings.Builder

	if len(contextBlock) > 0 {
		user.WriteString(tpl.contextHeader)
		user.WriteString("\n")
		for i, hit := range contextBlock {
			// Passage text goes in verbatim with its source attached so the
			// model can attribute what it quotes.
			fmt.Fprintf(&user, "\n[%s %d: %s]\n%s\n", tpl.sourcePrefix, i+1, hit.Passage.SourceDocumentID, hit.Passage.Text)
		}
		user.WriteString("\n")
	}

	window := history
	if len(window) > b.historyWindow {
		window = window[len(window)-b.historyWindow:]
	}
	if len(window) > 0 {
		user.WriteString(tpl.historyHeader)
		user.WriteString("\n")
		for _, turn := range window {
			fmt.Fprintf(&user, "User: %s\nAssistant: %s\n", turn.Utterance, turn.Answer)
		}
		user.WriteString("\n")
	}

	user.WriteString(tpl.questionLabel)
	user.WriteString(" ")
	user.WriteString(utterance)

	return Prompt{
		System: system.String(),
		User:   user.String(),
	}
}

// WithLanguageDirective re-renders a prompt with an explicit instruction to
// answer in the requested language. Used for the single re-prompt after a
// language-mismatch check.
func (b *Builder) WithLanguageDirective(p Prompt, language lang.Language) Prompt {
	tpl := templateFor(language)
	return Prompt{
		System: p.System + "\n" + tpl.languageDirective,
		User:   p.User,
	}
}
