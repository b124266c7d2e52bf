package prompt

import "github.com/merchant-assistant/backend/internal/lang"

// template is the per-language scaffolding of a generation prompt. The
// switch in templateFor is exhaustive over the supported languages, so
// adding a language is a compile-checked change, not a silent fallthrough.
type template struct {
	system            string
	noGrounding       string
	contextHeader     string
	historyHeader     string
	questionLabel     string
	intentHints       map[lang.Intent]string
	sourcePrefix      string
	languageDirective string
}

var englishTemplate = template{
	system: `You are the merchant assistant for a payments company. Answer the merchant's question using ONLY the reference passages provided below. Never invent fees, prices, product names or features that are not in the passages. If the passages do not contain the answer, say so plainly. Keep answers short, warm and practical. Answer in English.`,

	noGrounding: `You are the merchant assistant for a payments company. No reference material matched the merchant's question, so do NOT attempt a factual answer. Either ask one short clarifying question, or explain that this is outside what you can help with and name the topics you do cover (products, pricing, getting started). Answer in English.`,

	contextHeader: "Reference passages:",
	historyHeader: "Recent conversation:",
	questionLabel: "Merchant's question:",
	sourcePrefix:  "source",

	intentHints: map[lang.Intent]string{
		lang.IntentPricing:  "The merchant is asking about fees or pricing. Quote exact rates from the passages.",
		lang.IntentProduct:  "The merchant is asking about a product. Describe only what the passages state.",
		lang.IntentHowTo:    "The merchant wants steps. Give a short numbered list grounded in the passages.",
		lang.IntentGreeting: "The merchant is greeting you. Greet back briefly and offer help.",
	},

	languageDirective: "IMPORTANT: Respond in English only.",
}

var portugueseTemplate = template{
	system: `Você é o assistente de lojistas de uma empresa de pagamentos. Responda à pergunta usando APENAS os trechos de referência abaixo. Nunca invente taxas, preços, nomes de produtos ou recursos que não estejam nos trechos. Se os trechos não contiverem a resposta, diga isso claramente. Respostas curtas, calorosas e práticas. Responda em português.`,

	noGrounding: `Você é o assistente de lojistas de uma empresa de pagamentos. Nenhum material de referência corresponde à pergunta, então NÃO tente uma resposta factual. Faça uma pergunta curta de esclarecimento, ou explique que o assunto está fora do que você cobre e cite os temas que cobre (produtos, taxas, como começar). Responda em português.`,

	contextHeader: "Trechos de referência:",
	historyHeader: "Conversa recente:",
	questionLabel: "Pergunta do lojista:",
	sourcePrefix:  "fonte",

	intentHints: map[lang.Intent]string{
		lang.IntentPricing:  "O lojista pergunta sobre taxas ou preços. Cite as taxas exatas dos trechos.",
		lang.IntentProduct:  "O lojista pergunta sobre um produto. Descreva apenas o que os trechos afirmam.",
		lang.IntentHowTo:    "O lojista quer um passo a passo. Liste passos curtos baseados nos trechos.",
		lang.IntentGreeting: "O lojista está cumprimentando. Cumprimente de volta e ofereça ajuda.",
	},

	languageDirective: "IMPORTANTE: Responda somente em português.",
}

func templateFor(l lang.Language) template {
	switch l {
	case lang.Portuguese:
		return portugueseTemplate
	default:
		return englishTemplate
	}
}
