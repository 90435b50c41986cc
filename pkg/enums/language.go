package enums

// Language is the UI language preference.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageHindi   Language = "hi"
)

// IsValid reports whether the value is a supported Language.
func (l Language) IsValid() bool {
	return l == LanguageEnglish || l == LanguageHindi
}

// ParseLanguage maps raw input to a Language, falling back to English.
func ParseLanguage(value string) Language {
	if l := Language(value); l.IsValid() {
		return l
	}
	return LanguageEnglish
}
