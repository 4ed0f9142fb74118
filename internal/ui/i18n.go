package ui

// Language is the interface language, persisted as a preference.
type Language string

const (
	LangEN Language = "en"
	LangFR Language = "fr"
)

// tr picks the label for the active interface language.
func tr(lang Language, en, fr string) string {
	if lang == LangFR {
		return fr
	}
	return en
}

// toggle flips the interface language.
func (l Language) toggle() Language {
	if l == LangFR {
		return LangEN
	}
	return LangFR
}
