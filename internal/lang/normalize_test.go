package lang

import (
	"strings"
	"testing"
)

func TestNormalizeStripsFillerAndPunctuation(t *testing.T) {
	got := Normalize("Hello, how much does InfinitePay charge?", nil)
	want := "how much does infinitepay charge"
	if got != want {
		t.Errorf("Normalize = %q, want %q", got, want)
	}
}

func TestNormalizeTotality(t *testing.T) {
	cases := []string{"", "   ", "???", "olá!!!"}
	for _, c := range cases {
		// Must not panic and must return something well-formed.
		got := Normalize(c, nil)
		if got != strings.TrimSpace(got) {
			t.Errorf("Normalize(%q) = %q has surrounding whitespace", c, got)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	prior := &Prior{Query: "how much does infinitepay charge", Intent: IntentPricing}

	cases := []struct {
		utterance string
		prior     *Prior
	}{
		{"Hello, how much does InfinitePay charge?", nil},
		{"E o preço?", prior},
		{"Quanto custa a maquininha, por favor?", nil},
	}

	for _, c := range cases {
		once := Normalize(c.utterance, c.prior)
		twice := Normalize(once, c.prior)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", c.utterance, once, twice)
		}
	}
}

func TestNormalizeResolvesFollowUp(t *testing.T) {
	prior := &Prior{Query: "how much does infinitepay charge", Intent: IntentPricing}

	got := Normalize("E o preço?", prior)
	if !strings.Contains(got, "infinitepay") {
		t.Errorf("Normalize(%q) = %q, want prior topic term appended", "E o preço?", got)
	}
}

func TestNormalizeIgnoresPriorForFullQuestions(t *testing.T) {
	prior := &Prior{Query: "what is jim", Intent: IntentProduct}

	// A complete question must not pick up the previous topic.
	got := Normalize("How much does the Maquininha Smart cost in total?", prior)
	if strings.Contains(got, "jim") {
		t.Errorf("Normalize = %q leaked prior topic into a full question", got)
	}
}

func TestNormalizeOnlyLooksBackOneTurn(t *testing.T) {
	// The prior carries exactly one turn; terms from older turns can only
	// survive if the previous canonical query itself retained them.
	prior := &Prior{Query: "jim fees", Intent: IntentPricing}

	got := Normalize("and the limits?", prior)
	if !strings.Contains(got, "jim") {
		t.Errorf("Normalize = %q, want immediate prior topic", got)
	}
	if strings.Contains(got, "stratus") {
		t.Errorf("Normalize = %q contains terms from no known turn", got)
	}
}
