package process

import "strings"

// Language is a selectable target language.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Languages is sorted by name.
var Languages = []Language{
	{"ar", "Arabic"},
	{"as", "Assamese"},
	{"bn", "Bengali"},
	{"brx", "Bodo"},
	{"zh", "Chinese"},
	{"doi", "Dogri"},
	{"en", "English"},
	{"fr", "French"},
	{"de", "German"},
	{"gu", "Gujarati"},
	{"hi", "Hindi"},
	{"it", "Italian"},
	{"ja", "Japanese"},
	{"kn", "Kannada"},
	{"ks", "Kashmiri"},
	{"kok", "Konkani"},
	{"ko", "Korean"},
	{"mai", "Maithili"},
	{"ml", "Malayalam"},
	{"mni", "Manipuri"},
	{"mr", "Marathi"},
	{"ne", "Nepali"},
	{"or", "Odia"},
	{"pt", "Portuguese"},
	{"pa", "Punjabi"},
	{"ru", "Russian"},
	{"sa", "Sanskrit"},
	{"sat", "Santali"},
	{"sd", "Sindhi"},
	{"es", "Spanish"},
	{"ta", "Tamil"},
	{"te", "Telugu"},
	{"ur", "Urdu"},
}

// LookupLanguage finds a language by name or code, ignoring case.
func LookupLanguage(s string) (Language, bool) {
	s = strings.TrimSpace(s)
	for _, l := range Languages {
		if strings.EqualFold(l.Name, s) || strings.EqualFold(l.Code, s) {
			return l, true
		}
	}
	return Language{}, false
}

// InputTabs are the tabs that accept Process requests.
var InputTabs = []Tab{TabTranslator, TabScriptwriter, TabTextConverter}
