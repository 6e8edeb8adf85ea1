package domain

import (
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is one of the two supported narration languages. Input text is
// written in one of them and translated to the other.
type Language struct {
	// Tag is the BCP 47 language tag (e.g. "en", "es").
	Tag string `json:"tag"`
	// Name is the English display name.
	Name string `json:"name"`
	// NativeName is the language's name in itself.
	NativeName string `json:"native_name"`
}

var (
	langEnglish = language.English
	langSpanish = language.Spanish
)

// Languages is the supported language pair.
var Languages = []Language{
	newLanguage(langEnglish),
	newLanguage(langSpanish),
}

func newLanguage(tag language.Tag) Language {
	return Language{
		Tag:        tag.String(),
		Name:       display.English.Languages().Name(tag),
		NativeName: display.Self.Name(tag),
	}
}

// LanguageByTag looks up a supported language. Returns nil if the tag does
// not name one of the supported languages.
func LanguageByTag(tag string) *Language {
	parsed, err := language.Parse(tag)
	if err != nil {
		return nil
	}
	for i := range Languages {
		if Languages[i].Tag == parsed.String() {
			return &Languages[i]
		}
	}
	return nil
}

// TargetLanguage returns the language a source language translates into:
// the other member of the supported pair.
func TargetLanguage(source Language) Language {
	if source.Tag == Languages[0].Tag {
		return Languages[1]
	}
	return Languages[0]
}
