package domain

const (
	LangEnglish = "en"
	LangTamil   = "ta"
)

// Localized is a bilingual text field. English is always the fallback.
type Localized struct {
	En string `json:"en"`
	Ta string `json:"ta,omitempty"`
}

func (l Localized) Get(lang string) string {
	if lang == LangTamil && l.Ta != "" {
		return l.Ta
	}
	return l.En
}

// NormalizeLang maps anything other than Tamil to English.
func NormalizeLang(lang string) string {
	if lang == LangTamil {
		return LangTamil
	}
	return LangEnglish
}
