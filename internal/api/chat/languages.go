package chat

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-travel-assistant/config"
)

const defaultLanguage = "en"

// LanguageTable maps a language tag to its display name and fallback apology.
type LanguageTable struct {
	languages   map[string]config.LanguageConfig
	template    string
	unknownName string
	defaultLang string
}

func NewLanguageTable(languages map[string]config.LanguageConfig, template, unknownName, defaultLang string) *LanguageTable {
	table := make(map[string]config.LanguageConfig, len(languages))
	for code, lang := range languages {
		table[strings.ToLower(code)] = lang
	}
	if defaultLang == "" {
		defaultLang = defaultLanguage
	}
	return &LanguageTable{
		languages:   table,
		template:    template,
		unknownName: unknownName,
		defaultLang: strings.ToLower(defaultLang),
	}
}

// Normalize lower-cases code and maps empty input to the default language.
func (l *LanguageTable) Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return l.defaultLang
	}
	return code
}

// Instruction returns the prefix asking the model to answer in code, or ""
// for the default language.
func (l *LanguageTable) Instruction(code string) string {
	code = l.Normalize(code)
	if code == l.defaultLang {
		return ""
	}
	name := l.unknownName
	if lang, ok := l.languages[code]; ok && lang.Name != "" {
		name = lang.Name
	}
	return fmt.Sprintf(l.template, name)
}

// Fallback returns the apology for code, or the default language's apology
// when code is unmapped.
func (l *LanguageTable) Fallback(code string) string {
	if lang, ok := l.languages[l.Normalize(code)]; ok && lang.Fallback != "" {
		return lang.Fallback
	}
	return l.languages[l.defaultLang].Fallback
}

func (l *LanguageTable) Len() int {
	return len(l.languages)
}
