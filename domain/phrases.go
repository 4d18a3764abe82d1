package domain

import (
	"github.com/abadojack/whatlanggo"
)

// Phrases holds the fixed system wording sent alongside a summary cycle.
type Phrases struct {
	SummaryPrefix   string
	RecommendPrompt string
}

const summarySeparator = "<br>"

var phrasebook = map[string]Phrases{
	"ko": {
		SummaryPrefix:   "지금까지 한 대화를 요약해봤어!",
		RecommendPrompt: "이것도 읽어봐라 멍멍!!",
	},
	"en": {
		SummaryPrefix:   "Here is what we talked about so far!",
		RecommendPrompt: "You might want to read these too!",
	},
}

// PhrasesFor picks the wording matching the language of text.
// Undetected or unsupported languages fall back to fallbackLang, then to Korean.
func PhrasesFor(text, fallbackLang string) Phrases {
	info := whatlanggo.Detect(text)
	if p, ok := phrasebook[info.Lang.Iso6391()]; ok && info.IsReliable() {
		return p
	}
	if p, ok := phrasebook[fallbackLang]; ok {
		return p
	}
	return phrasebook["ko"]
}

// SummaryMessage renders the body of a summary broadcast.
func (p Phrases) SummaryMessage(summary string) string {
	return p.SummaryPrefix + summarySeparator + summary
}
