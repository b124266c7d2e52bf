package lang

// Prior carries the one piece of history the classifier and normalizer are
// allowed to look at: the immediately preceding turn. Bounding the lookback
// to a single turn keeps both functions O(1) in conversation length.
type Prior struct {
	Query  string
	Intent Intent
}

type Classification struct {
	Language           Language
	LanguageConfidence float64
	Intent             Intent
}

// Classify detects the utterance's language and intent. Pure function: no
// I/O, no randomness, no mutation of its inputs.
func Classify(utterance string, prior *Prior) Classification {
	language, conf := DetectLanguage(utterance)
	intent := DetectIntent(utterance, prior)

	return Classification{
		Language:           language,
		LanguageConfidence: conf,
		Intent:             intent,
	}
}
