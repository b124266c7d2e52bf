// Package lang classifies utterances by language and intent and produces
// canonical queries for retrieval. Everything here is pure and deterministic:
// the same input always yields the same output, and nothing touches the
// network or the clock.
package lang

import "regexp"

// Language is the closed set of languages the assistant understands.
// Anything else maps to Other and gets the fixed unsupported-language reply.
type Language int

const (
	English Language = iota
	Portuguese
	Other
)

func (l Language) String() string {
	switch l {
	case English:
		return "en"
	case Portuguese:
		return "pt"
	default:
		return "other"
	}
}

// ParseLanguage maps a language code back to the enum. Unknown codes come
// back as Other.
func ParseLanguage(code string) Language {
	switch code {
	case "en":
		return English
	case "pt", "pt-BR":
		return Portuguese
	default:
		return Other
	}
}

var englishPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(hello|hi|hey|good morning|good afternoon|good evening|thanks|thank you|please|bye|goodbye|you|your|are|is|my|our|what|which|when|where|why|does|did|do)\b`),
	regexp.MustCompile(`\b(card|payment|payments|fee|fees|rate|rates|account|money|receive|sell|buy|terminal|charge|charges|cost|costs|price|pricing)\b`),
	regexp.MustCompile(`\b(how|much|want|can|need|have|be|get|use|work|works)\b`),
	regexp.MustCompile(`\b(no|yes|maybe|sure|right|wrong)\b`),
}

var portuguesePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(olá|ola|oi|bom dia|boa tarde|boa noite|obrigado|obrigada|por favor|tchau|até|vocês|você|está|estou|são|sou|meu|minha|nosso|nossa|qual|quais|quando|onde)\b`),
	regexp.MustCompile(`\b(maquininha|cartão|cartao|pagamento|pagamentos|taxa|taxas|pix|boleto|conta|dinheiro|receber|vender|comprar|preço|preco|custo|custa)\b`),
	regexp.MustCompile(`\b(como|quanto|fazer|quero|posso|preciso|tenho|ser|estar|funciona)\b`),
	regexp.MustCompile(`\b(não|nao|sim|talvez|claro|certo|errado)\b`),
}

// foreignPatterns catch languages we recognize but do not support. A match
// here that outweighs both supported languages degrades to Other rather than
// a best-effort answer.
var foreignPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(hola|gracias|cuánto|cuanto cuesta|cuesta|usted|ustedes|señor|dinero|precio|quiero|necesito)\b`),
	regexp.MustCompile(`\b(bonjour|merci|combien|coûte|vous|je|s'il|pourquoi|comment allez)\b`),
	regexp.MustCompile(`\b(hallo|danke|wie viel|kostet|bitte|ich möchte|warum)\b`),
}

var englishStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "to": true, "for": true,
	"with": true, "in": true, "on": true, "at": true, "of": true,
}

var portugueseStopWords = map[string]bool{
	"de": true, "da": true, "do": true, "a": true, "o": true,
	"um": true, "uma": true, "para": true, "com": true, "em": true,
	"no": true, "na": true,
}

// DetectLanguage scores the text against per-language pattern sets, the way
// the knowledge corpus itself distinguishes en from pt content. Returns the
// winning language and a confidence in [0,1]. Text that matches nothing
// falls back to English with zero confidence; text dominated by a foreign
// pattern set returns Other.
func DetectLanguage(text string) (Language, float64) {
	lower := lowercase(text)
	words := tokenize(lower)
	if len(words) == 0 {
		return English, 0
	}

	enScore := patternScore(lower, words, englishPatterns, englishStopWords)
	ptScore := patternScore(lower, words, portuguesePatterns, portugueseStopWords)
	foreignScore := patternScore(lower, words, foreignPatterns, nil)

	if foreignScore > enScore && foreignScore > ptScore {
		return Other, confidence(foreignScore)
	}
	if enScore == 0 && ptScore == 0 {
		return English, 0
	}
	// Portuguese wins ties: its markers (diacritics, domain words) are the
	// rarer signal, so an equal score means the pt evidence is stronger.
	if ptScore >= enScore {
		return Portuguese, confidence(ptScore)
	}
	return English, confidence(enScore)
}

func patternScore(lower string, words []string, patterns []*regexp.Regexp, stopWords map[string]bool) float64 {
	score := 0
	for _, p := range patterns {
		score += 2 * len(p.FindAllString(lower, -1))
	}
	for _, w := range words {
		if stopWords[w] {
			score++
		}
	}
	return float64(score) / float64(len(words))
}

func confidence(score float64) float64 {
	c := score / 0.5
	if c > 1 {
		c = 1
	}
	return c
}
