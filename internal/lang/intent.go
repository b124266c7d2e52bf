package lang

import "regexp"

// Intent is the closed set of coarse question categories the pipeline
// branches on. Adding a value here forces the prompt templates and the
// classifier table below through the compiler.
type Intent int

const (
	IntentChitchat Intent = iota
	IntentGreeting
	IntentProduct
	IntentPricing
	IntentHowTo
	IntentOutOfScope
)

func (i Intent) String() string {
	switch i {
	case IntentGreeting:
		return "greeting"
	case IntentProduct:
		return "product_question"
	case IntentPricing:
		return "pricing_question"
	case IntentHowTo:
		return "howto_question"
	case IntentOutOfScope:
		return "out_of_scope"
	default:
		return "chitchat"
	}
}

// intentRules are checked in order; the first match wins, which keeps
// classification deterministic when an utterance matches several categories
// ("how much does InfinitePay charge" is pricing, not product).
var intentRules = []struct {
	intent  Intent
	pattern *regexp.Regexp
}{
	{IntentPricing, regexp.MustCompile(`\b(price|prices|pricing|fee|fees|rate|rates|cost|costs|charge|charges|how much|taxa|taxas|preço|preco|custo|custa|quanto custa|mensalidade)\b`)},
	{IntentHowTo, regexp.MustCompile(`\b(how do i|how to|how can i|how does .* work|set ?up|install|activate|configure|como (faço|faco|posso|funciona|ativo|configuro)|começar|comecar)\b`)},
	{IntentProduct, regexp.MustCompile(`\b(infinitepay|infinitetap|jim|stratus|maquininha|card machine|card reader|terminal|pix|boleto|tap|blockchain|product|products|produto|produtos)\b`)},
	{IntentOutOfScope, regexp.MustCompile(`\b(weather|sports|football|soccer|movie|movies|politics|election|recipe|recipes|clima|tempo hoje|futebol|filme|filmes|política|politica|eleição|receita)\b`)},
	{IntentGreeting, regexp.MustCompile(`\b(hi|hello|hey|good morning|good afternoon|good evening|olá|ola|oi|bom dia|boa tarde|boa noite)\b`)},
}

// DetectIntent classifies the utterance against the rule table. Utterances
// matching nothing degrade to chitchat rather than failing; a short
// follow-up with a reference cue inherits the prior turn's intent so that
// "e o preço?" style turns keep their topic.
func DetectIntent(text string, prior *Prior) Intent {
	lower := lowercase(text)

	for _, rule := range intentRules {
		if rule.pattern.MatchString(lower) {
			return rule.intent
		}
	}

	if prior != nil && isFollowUp(lower) {
		return prior.Intent
	}

	return IntentChitchat
}
