// Package knowledge holds the seed corpus for the merchant knowledge base and
// the tooling that turns documents into indexed passages.
package knowledge

// Document is one source document of the knowledge base. Documents are
// chunked into passages before indexing; SourceID survives onto every chunk
// so answers can attribute what they quote.
type Document struct {
	SourceID string
	Title    string
	Content  string
	Language string
	Product  string
	Tags     []string
}

// Seed returns the built-in company and product corpus. The seed tool indexes
// these before any external documents are ingested.
func Seed() []Document {
	return []Document{
		{
			SourceID: "cloudwalk_mission",
			Title:    "CloudWalk Mission",
			Content:  "Our mission is to create the best payment network on Earth. Then other planets. We are democratizing the financial industry, empowering entrepreneurs through technological, inclusive and life-changing solutions.",
			Language: "en",
			Tags:     []string{"mission", "company", "about"},
		},
		{
			SourceID: "infinitepay_overview",
			Title:    "InfinitePay Overview",
			Content:  "InfinitePay is a powerful financial platform democratizing access to world-class payment products and software, currently serving millions of clients in Brazil. Launched in 2019, it represented the most disruptive wave of innovation in the Brazilian payments industry.",
			Language: "en",
			Product:  "infinitepay",
			Tags:     []string{"infinitepay", "brazil", "payments"},
		},
		{
			SourceID: "infinitepay_fees",
			Title:    "InfinitePay Fees",
			Content:  "InfinitePay offers the lowest fees in Brazil: 0.00% for Pix, 0.75% for Debit, 2.69% for Credit (1x), and 8.99% for Credit (12x). These are final rates including anticipation. No monthly fees or hidden costs.",
			Language: "en",
			Product:  "infinitepay",
			Tags:     []string{"fees", "rates", "pricing"},
		},
		{
			SourceID: "infinitepay_maquininha",
			Title:    "InfinitePay Maquininha Smart",
			Content:  "The Maquininha Smart is available for just 12x R$ 16.58 or R$ 199. It includes: Pix with zero fees, receipt printing, long battery life, inventory management, free shipping, and no rental fees or loyalty requirements.",
			Language: "en",
			Product:  "infinitepay",
			Tags:     []string{"maquininha", "hardware", "terminal"},
		},
		{
			SourceID: "infinitetap_overview",
			Title:    "InfiniteTap - Phone as Card Reader",
			Content:  "InfiniteTap transforms your smartphone into a card reader in less than 5 minutes. Works on Android and iOS with NFC. Zero investment required, accepts payments up to 12x installments.",
			Language: "en",
			Product:  "infinitepay",
			Tags:     []string{"tap", "nfc", "mobile"},
		},
		{
			SourceID: "jim_overview",
			Title:    "JIM Overview",
			Content:  "JIM brings the power of instant payments for everyone in the US. Combining cutting edge technology with unparalleled design, JIM enables sellers to accept payments, receive money instantly, and access a next generation AI assistant.",
			Language: "en",
			Product:  "jim",
			Tags:     []string{"jim", "usa", "instant"},
		},
		{
			SourceID: "jim_features",
			Title:    "JIM Features and Pricing",
			Content:  "JIM offers: 1.99% per transaction (lowest in market), instant payouts in seconds, no hardware needed (phone only), accepts all major cards and digital wallets, AI-powered business insights. No hidden fees, no monthly charges.",
			Language: "en",
			Product:  "jim",
			Tags:     []string{"jim", "fees", "instant"},
		},
		{
			SourceID: "stratus_overview",
			Title:    "STRATUS Blockchain",
			Content:  "STRATUS is a high performance, secure, scalable, and open-source blockchain designed for global payment networks. It processes up to 1,800 transactions per second (TPS) with potential for infinite growth through sharding and multi-raft consensus models.",
			Language: "en",
			Product:  "stratus",
			Tags:     []string{"stratus", "blockchain", "infrastructure"},
		},
		{
			SourceID: "cloudwalk_ai",
			Title:    "CloudWalk AI Capabilities",
			Content:  "CloudWalk leverages AI across multiple fronts: fraud detection with 3-layer system (transactional, behavioral, relational), credit assessment using actual behavior data, customer support automation handling substantial chats without human intervention, and merchant vector space for business analysis.",
			Language: "en",
			Tags:     []string{"ai", "fraud", "credit"},
		},
		{
			SourceID: "cloudwalk_support",
			Title:    "CloudWalk Support Excellence",
			Content:  "CloudWalk provides RA1000-rated support, the highest quality rating in Brazil. Our support team is always ready to help with questions and resolve problems quickly and efficiently.",
			Language: "en",
			Tags:     []string{"support", "ra1000", "service"},
		},
		{
			SourceID: "infinitepay_overview_pt",
			Title:    "Visão Geral InfinitePay",
			Content:  "InfinitePay é uma poderosa plataforma financeira democratizando o acesso a produtos de pagamento de classe mundial, atualmente atendendo milhões de clientes no Brasil. Lançada em 2019, representou a onda mais disruptiva de inovação no setor de pagamentos brasileiro.",
			Language: "pt",
			Product:  "infinitepay",
			Tags:     []string{"infinitepay", "brasil", "pagamentos"},
		},
		{
			SourceID: "infinitepay_taxas_pt",
			Title:    "Taxas InfinitePay",
			Content:  "InfinitePay oferece as menores taxas do Brasil: 0,00% no Pix, 0,75% no Débito, 2,69% no Crédito à vista, e 8,99% no Crédito 12x. São taxas finais já com antecipação. Sem mensalidade ou custos escondidos.",
			Language: "pt",
			Product:  "infinitepay",
			Tags:     []string{"taxas", "preços", "custos"},
		},
		{
			SourceID: "infinitepay_maquininha_pt",
			Title:    "Maquininha Smart InfinitePay",
			Content:  "A Maquininha Smart está disponível por apenas 12x de R$ 16,58 ou R$ 199. Inclui Pix com taxa zero, impressão de comprovante, bateria de longa duração, gestão de estoque, frete grátis, sem aluguel e sem fidelidade.",
			Language: "pt",
			Product:  "infinitepay",
			Tags:     []string{"maquininha", "hardware", "terminal"},
		},
	}
}
