package lang

import "testing"

func TestDetectLanguageEnglish(t *testing.T) {
	cases := []string{
		"How much does InfinitePay charge?",
		"What payment cards do you accept?",
		"hello, can I receive money instantly?",
	}
	for _, c := range cases {
		got, conf := DetectLanguage(c)
		if got != English {
			t.Errorf("DetectLanguage(%q) = %v, want English", c, got)
		}
		if conf <= 0 {
			t.Errorf("DetectLanguage(%q) confidence = %v, want > 0", c, conf)
		}
	}
}

func TestDetectLanguagePortuguese(t *testing.T) {
	cases := []string{
		"Quanto custa a maquininha?",
		"Olá, qual é a taxa do Pix?",
		"Quero receber pagamentos com cartão",
	}
	for _, c := range cases {
		got, conf := DetectLanguage(c)
		if got != Portuguese {
			t.Errorf("DetectLanguage(%q) = %v, want Portuguese", c, got)
		}
		if conf <= 0 {
			t.Errorf("DetectLanguage(%q) confidence = %v, want > 0", c, conf)
		}
	}
}

func TestDetectLanguageForeign(t *testing.T) {
	cases := []string{
		"Hola, cuánto cuesta la máquina?",
		"Bonjour, combien ça coûte? merci",
	}
	for _, c := range cases {
		got, _ := DetectLanguage(c)
		if got != Other {
			t.Errorf("DetectLanguage(%q) = %v, want Other", c, got)
		}
	}
}

func TestDetectLanguageAmbiguousDegradesToEnglish(t *testing.T) {
	got, conf := DetectLanguage("xyzzy plugh")
	if got != English {
		t.Errorf("DetectLanguage = %v, want English fallback", got)
	}
	if conf != 0 {
		t.Errorf("confidence = %v, want 0 for unmatched text", conf)
	}
}

func TestDetectLanguageDeterministic(t *testing.T) {
	utterance := "Quanto custa a maquininha?"
	first, firstConf := DetectLanguage(utterance)
	for i := 0; i < 50; i++ {
		got, conf := DetectLanguage(utterance)
		if got != first || conf != firstConf {
			t.Fatalf("run %d: got (%v, %v), want (%v, %v)", i, got, conf, first, firstConf)
		}
	}
}

func TestDetectIntent(t *testing.T) {
	cases := []struct {
		utterance string
		want      Intent
	}{
		{"How much does InfinitePay charge?", IntentPricing},
		{"Qual é a taxa do Pix?", IntentPricing},
		{"How do I set up my account?", IntentHowTo},
		{"Como funciona o InfiniteTap?", IntentHowTo},
		{"What is JIM?", IntentProduct},
		{"Tell me about the maquininha", IntentProduct},
		{"What's the weather today?", IntentOutOfScope},
		{"hello!", IntentGreeting},
		{"bom dia", IntentGreeting},
		{"something else entirely", IntentChitchat},
	}
	for _, c := range cases {
		got := DetectIntent(c.utterance, nil)
		if got != c.want {
			t.Errorf("DetectIntent(%q) = %v, want %v", c.utterance, got, c.want)
		}
	}
}

func TestDetectIntentPricingBeatsProduct(t *testing.T) {
	// Mentions a product but asks about price; pricing rules run first.
	got := DetectIntent("How much does InfinitePay charge?", nil)
	if got != IntentPricing {
		t.Errorf("got %v, want IntentPricing", got)
	}
}

func TestDetectIntentFollowUpInheritsPrior(t *testing.T) {
	prior := &Prior{Query: "what is jim", Intent: IntentProduct}

	got := DetectIntent("and that one?", prior)
	if got != IntentProduct {
		t.Errorf("follow-up intent = %v, want inherited IntentProduct", got)
	}

	// Without a prior the same utterance is chitchat.
	got = DetectIntent("and that one?", nil)
	if got != IntentChitchat {
		t.Errorf("no-prior intent = %v, want IntentChitchat", got)
	}
}

func TestClassify(t *testing.T) {
	cls := Classify("Quanto custa a maquininha?", nil)
	if cls.Language != Portuguese {
		t.Errorf("language = %v, want Portuguese", cls.Language)
	}
	if cls.Intent != IntentPricing {
		t.Errorf("intent = %v, want IntentPricing", cls.Intent)
	}
	if cls.LanguageConfidence <= 0 {
		t.Errorf("confidence = %v, want > 0", cls.LanguageConfidence)
	}
}
