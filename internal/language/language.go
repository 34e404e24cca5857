// Package language is the table of languages the CLI accepts and the
// providers are prompted with. Prompts use the English name, not the code:
// models follow "translate to Korean" far more reliably than "translate to
// ko".
package language

import (
	"sort"
)

// Language represents a supported language.
type Language struct {
	Code string
	Name string
}

// Languages is a map of supported languages code -> Language.
var Languages = map[string]Language{
	"ar":      {Code: "ar", Name: "Arabic"},
	"bg":      {Code: "bg", Name: "Bulgarian"},
	"cs":      {Code: "cs", Name: "Czech"},
	"da":      {Code: "da", Name: "Danish"},
	"de":      {Code: "de", Name: "German"},
	"el":      {Code: "el", Name: "Greek"},
	"en":      {Code: "en", Name: "English"},
	"es":      {Code: "es", Name: "Spanish"},
	"fi":      {Code: "fi", Name: "Finnish"},
	"fr":      {Code: "fr", Name: "French"},
	"hi":      {Code: "hi", Name: "Hindi"},
	"hu":      {Code: "hu", Name: "Hungarian"},
	"id":      {Code: "id", Name: "Indonesian"},
	"it":      {Code: "it", Name: "Italian"},
	"ja":      {Code: "ja", Name: "Japanese"},
	"ko":      {Code: "ko", Name: "Korean"},
	"ms":      {Code: "ms", Name: "Malay"},
	"nl":      {Code: "nl", Name: "Dutch"},
	"no":      {Code: "no", Name: "Norwegian"},
	"pl":      {Code: "pl", Name: "Polish"},
	"pt":      {Code: "pt", Name: "Portuguese"},
	"ro":      {Code: "ro", Name: "Romanian"},
	"ru":      {Code: "ru", Name: "Russian"},
	"sv":      {Code: "sv", Name: "Swedish"},
	"th":      {Code: "th", Name: "Thai"},
	"tr":      {Code: "tr", Name: "Turkish"},
	"uk":      {Code: "uk", Name: "Ukrainian"},
	"vi":      {Code: "vi", Name: "Vietnamese"},
	"zh":      {Code: "zh-Hans", Name: "Chinese (Simplified)"}, // Default to Simplified
	"zh-Hans": {Code: "zh-Hans", Name: "Chinese (Simplified)"},
	"zh-Hant": {Code: "zh-Hant", Name: "Chinese (Traditional)"},
}

// GetLanguage returns the language for a strict code match.
func GetLanguage(code string) (Language, bool) {
	lang, ok := Languages[code]
	return lang, ok
}

// LanguageEntry represents a map entry for listing.
type LanguageEntry struct {
	ID string // The map key (CLI flag)
	Language
}

// GetSupportedLanguages returns a list of supported languages sorted by Name and then ID.
func GetSupportedLanguages() []LanguageEntry {
	entries := make([]LanguageEntry, 0, len(Languages))
	for k, v := range Languages {
		entries = append(entries, LanguageEntry{ID: k, Language: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].ID < entries[j].ID
	})
	return entries
}
