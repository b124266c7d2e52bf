package lang

import (
	"strings"

	"github.com/jdkato/prose/v2"
)

// fillerWords are conversational noise stripped before retrieval. Greetings
// are included: they carry no retrieval signal even when the intent is a real
// question ("hi, how much is the card machine?").
var fillerWords = map[string]bool{
	"please": true, "hey": true, "hi": true, "hello": true,
	"thanks": true, "thank": true, "hmm": true, "uh": true, "um": true,
	"ok": true, "okay": true, "well": true,
	"olá": true, "ola": true, "oi": true, "obrigado": true, "obrigada": true,
	"favor": true, "tchau": true,
}

// referenceCues signal an elliptical follow-up that leans on the previous
// turn ("what about debit?", "e o preço?").
var referenceCues = map[string]bool{
	"it": true, "that": true, "this": true, "they": true, "them": true,
	"one": true, "about": true, "and": true,
	"e": true, "isso": true, "esse": true, "essa": true, "ele": true,
	"ela": true, "disso": true, "também": true, "tambem": true,
}

// topicStopWords are dropped when lifting topic terms out of the prior turn.
// Union of the per-language stop word lists plus generic question words.
var topicStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "to": true, "for": true, "with": true,
	"in": true, "on": true, "at": true, "of": true, "is": true, "are": true,
	"does": true, "do": true, "did": true, "how": true, "much": true,
	"what": true, "which": true, "when": true, "where": true, "why": true,
	"i": true, "you": true, "my": true, "your": true, "can": true,
	"de": true, "da": true, "o": true, "um": true, "uma": true,
	"para": true, "com": true, "em": true, "no": true, "na": true,
	"que": true, "qual": true, "quanto": true, "como": true, "é": true,
	"eu": true, "você": true, "voce": true, "meu": true, "minha": true,
}

// Normalize canonicalizes an utterance for retrieval: lowercase, punctuation
// stripped, whitespace collapsed, filler removed. When the utterance is a
// short elliptical follow-up and a prior turn exists, the prior turn's topic
// terms are appended so the retriever sees the full subject. Idempotent:
// running Normalize over its own output is a no-op, because canonical text
// already contains every topic term it would add.
func Normalize(utterance string, prior *Prior) string {
	tokens := tokenize(lowercase(utterance))

	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if fillerWords[tok] {
			continue
		}
		kept = append(kept, tok)
	}

	canonical := strings.Join(kept, " ")

	if prior == nil || !isFollowUp(canonical) {
		return canonical
	}

	present := make(map[string]bool, len(kept))
	for _, tok := range kept {
		present[tok] = true
	}

	for _, term := range topicTerms(prior.Query) {
		if present[term] {
			continue
		}
		canonical += " " + term
		present[term] = true
	}

	return canonical
}

// isFollowUp reports whether the canonical query looks like an elliptical
// reference to the previous turn: short, and containing a reference cue.
func isFollowUp(canonical string) bool {
	tokens := strings.Fields(canonical)
	if len(tokens) == 0 || len(tokens) > 6 {
		return false
	}
	for _, tok := range tokens {
		if referenceCues[tok] {
			return true
		}
	}
	return false
}

// topicTerms lifts the content words out of a prior canonical query.
func topicTerms(priorQuery string) []string {
	tokens := tokenize(lowercase(priorQuery))

	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if topicStopWords[tok] || fillerWords[tok] || referenceCues[tok] {
			continue
		}
		terms = append(terms, tok)
	}
	if len(terms) > 4 {
		terms = terms[:4]
	}
	return terms
}

func lowercase(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// tokenize splits text into word tokens, dropping punctuation. The prose
// tokenizer handles contractions and accented words better than a naive
// split; if it fails we degrade to whitespace fields so normalization stays
// total.
func tokenize(text string) []string {
	if text == "" {
		return nil
	}

	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return strings.Fields(stripPunct(text))
	}

	tokens := make([]string, 0, 8)
	for _, tok := range doc.Tokens() {
		word := stripPunct(tok.Text)
		if word == "" {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

func stripPunct(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '?' || r == '!' || r == '.' || r == ',' || r == ';' ||
			r == ':' || r == '"' || r == '\'' || r == '(' || r == ')' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
