package prompt

import "github.com/merchant-assistant/backend/internal/lang"

// Fixed user-visible strings. These are the only things shown when the
// backend is down or the language is unsupported; they must never be
// generated.

const (
	apologyEN = "I'm sorry, I'm having trouble answering right now. Please try again in a moment."
	apologyPT = "Desculpe, estou com dificuldades para responder agora. Por favor, tente novamente em instantes."

	unsupportedMessage = "Sorry, I can only chat in English or Portuguese. / Desculpe, só consigo conversar em inglês ou português."
)

// Apology returns the fixed backend-failure message in the turn's language.
func Apology(l lang.Language) string {
	if l == lang.Portuguese {
		return apologyPT
	}
	return apologyEN
}

// Unsupported is the fixed reply for utterances in a language the assistant
// does not support. No generation call is made for these turns.
func Unsupported() string {
	return unsupportedMessage
}
