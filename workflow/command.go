package workflow

import "strings"

// submitPhrases are the spoken commands that mean "send it". Only
// conjunction-prefixed full phrases count, so ordinary sentences that
// happen to end in "enter" are left alone. The misrecognized variants
// cover what speech models typically make of "press enter".
var submitPhrases = []string{
	"and press enter",
	"and hit enter",
	"and press return",
	"and hit return",
	"then press enter",
	"then hit enter",
	// common misrecognitions
	"and present enter",
	"and presence enter",
	"and pressing enter",
	"and president enter",
	"then present enter",
	"then pressing enter",
}

// DetectSubmitCommand checks whether text ends with a submit phrase,
// ignoring case and trailing punctuation. When one matches it returns
// the text with the phrase stripped and true; otherwise the input
// unchanged and false.
func DetectSubmitCommand(text string) (string, bool) {
	trimmed := strings.TrimRight(text, ".!?,; ")
	lower := strings.ToLower(trimmed)

	for _, phrase := range submitPhrases {
		if !strings.HasSuffix(lower, phrase) {
			continue
		}
		cleaned := strings.TrimRight(trimmed[:len(trimmed)-len(phrase)], " \t")
		return cleaned, true
	}
	return text, false
}
