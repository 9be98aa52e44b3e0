package domain

import (
	"strings"
	"unicode"
)

// Language is a translation target for simplified drug text.
type Language struct {
	Code string
	Name string
}

// English is the language every prompt is answered in before translation.
var English = Language{Code: "en", Name: "English"}

// maxLanguageName bounds free-form language names passed to the model.
const maxLanguageName = 40

var languages = []Language{
	English,
	{Code: "es", Name: "Spanish"},
	{Code: "fr", Name: "French"},
	{Code: "de", Name: "German"},
	{Code: "it", Name: "Italian"},
	{Code: "pt", Name: "Portuguese"},
	{Code: "ru", Name: "Russian"},
	{Code: "zh", Name: "Chinese"},
	{Code: "ja", Name: "Japanese"},
	{Code: "ko", Name: "Korean"},
	{Code: "hi", Name: "Hindi"},
	{Code: "mr", Name: "Marathi"},
	{Code: "ar", Name: "Arabic"},
	{Code: "tr", Name: "Turkish"},
	{Code: "nl", Name: "Dutch"},
	{Code: "sv", Name: "Swedish"},
	{Code: "no", Name: "Norwegian"},
	{Code: "da", Name: "Danish"},
	{Code: "fi", Name: "Finnish"},
	{Code: "pl", Name: "Polish"},
	{Code: "cs", Name: "Czech"},
	{Code: "hu", Name: "Hungarian"},
	{Code: "ro", Name: "Romanian"},
	{Code: "bg", Name: "Bulgarian"},
	{Code: "el", Name: "Greek"},
	{Code: "he", Name: "Hebrew"},
	{Code: "th", Name: "Thai"},
	{Code: "vi", Name: "Vietnamese"},
	{Code: "id", Name: "Indonesian"},
	{Code: "ms", Name: "Malay"},
	{Code: "fil", Name: "Filipino"},
	{Code: "bn", Name: "Bengali"},
	{Code: "ur", Name: "Urdu"},
	{Code: "fa", Name: "Persian"},
	{Code: "uk", Name: "Ukrainian"},
	{Code: "be", Name: "Belarusian"},
	{Code: "sr", Name: "Serbian"},
	{Code: "hr", Name: "Croatian"},
	{Code: "sl", Name: "Slovenian"},
	{Code: "sk", Name: "Slovak"},
	{Code: "lt", Name: "Lithuanian"},
	{Code: "lv", Name: "Latvian"},
	{Code: "et", Name: "Estonian"},
	{Code: "is", Name: "Icelandic"},
	{Code: "mt", Name: "Maltese"},
	{Code: "ka", Name: "Georgian"},
	{Code: "hy", Name: "Armenian"},
	{Code: "az", Name: "Azerbaijani"},
	{Code: "kk", Name: "Kazakh"},
	{Code: "uz", Name: "Uzbek"},
	{Code: "ky", Name: "Kyrgyz"},
	{Code: "tg", Name: "Tajik"},
	{Code: "tk", Name: "Turkmen"},
	{Code: "mn", Name: "Mongolian"},
	{Code: "ne", Name: "Nepali"},
	{Code: "si", Name: "Sinhala"},
	{Code: "km", Name: "Khmer"},
	{Code: "lo", Name: "Lao"},
	{Code: "my", Name: "Burmese"},
	{Code: "am", Name: "Amharic"},
	{Code: "sw", Name: "Swahili"},
	{Code: "yo", Name: "Yoruba"},
	{Code: "zu", Name: "Zulu"},
	{Code: "af", Name: "Afrikaans"},
	{Code: "sq", Name: "Albanian"},
	{Code: "mk", Name: "Macedonian"},
	{Code: "bs", Name: "Bosnian"},
	{Code: "cnr", Name: "Montenegrin"},
}

// ParseLanguage resolves a language code or English name, ignoring case.
// An empty string means English. A name outside the known list is accepted
// as-is when it is short and made of letters, spaces and hyphens; anything
// else reports false.
func ParseLanguage(s string) (Language, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return English, true
	}
	for _, l := range languages {
		if strings.EqualFold(s, l.Code) || strings.EqualFold(s, l.Name) {
			return l, true
		}
	}
	if !isLanguageName(s) {
		return Language{}, false
	}
	return Language{Code: strings.ToLower(s), Name: s}, true
}

func isLanguageName(s string) bool {
	if len([]rune(s)) > maxLanguageName {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && r != ' ' && r != '-' {
			return false
		}
	}
	return true
}

// IsEnglish reports whether no translation pass is needed.
func (l Language) IsEnglish() bool {
	return l.Code == English.Code
}
