package models

// Locale is a target output language.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleArabic  Locale = "ar"
	LocaleHindi   Locale = "hi"
	LocaleHebrew  Locale = "he"
)

// TargetLocales are the translation targets; English is the original.
func TargetLocales() []Locale {
	return []Locale{LocaleArabic, LocaleHindi, LocaleHebrew}
}

var localeNames = map[Locale]string{
	LocaleEnglish: "English",
	LocaleArabic:  "Arabic",
	LocaleHindi:   "Hindi",
	LocaleHebrew:  "Hebrew",
}

func (l Locale) Name() string {
	if name, ok := localeNames[l]; ok {
		return name
	}
	return string(l)
}

// ChartRef points at a contextually relevant chart image.
type ChartRef struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// FormattedContent is the presentation-ready rendering of a summary.
type FormattedContent struct {
	HTMLBody string     `json:"html_body"`
	Charts   []ChartRef `json:"charts,omitempty"`

	// Degraded marks per-locale fallback content substituted after a failed
	// translation.
	Degraded bool `json:"degraded,omitempty"`
}

// TranslatedContent maps locale codes to their renderings. A partial map is
// valid: locales that failed translation carry fallback content instead.
type TranslatedContent map[Locale]FormattedContent
