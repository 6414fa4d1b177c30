package locale

// Meta describes display metadata for a locale.
type Meta struct {
	Name string
	Flag string
}

// names holds native language names keyed by canonical spec.
// Region variants fall back to their base language in Describe.
var names = map[string]string{
	"ar":    "العربية",
	"bg":    "Български",
	"ca":    "Català",
	"cs":    "Čeština",
	"da":    "Dansk",
	"de":    "Deutsch",
	"de-AT": "Deutsch (Österreich)",
	"de-CH": "Deutsch (Schweiz)",
	"el":    "Ελληνικά",
	"en":    "English",
	"en-GB": "English (UK)",
	"en-US": "English (US)",
	"es":    "Español",
	"es-MX": "Español (México)",
	"et":    "Eesti",
	"fi":    "Suomi",
	"fr":    "Français",
	"fr-CA": "Français (Canada)",
	"he":    "עברית",
	"hi":    "हिन्दी",
	"hr":    "Hrvatski",
	"hu":    "Magyar",
	"id":    "Bahasa Indonesia",
	"it":    "Italiano",
	"ja":    "日本語",
	"ko":    "한국어",
	"lt":    "Lietuvių",
	"lv":    "Latviešu",
	"nb":    "Norsk bokmål",
	"nl":    "Nederlands",
	"pl":    "Polski",
	"pt":    "Português",
	"pt-BR": "Português (Brasil)",
	"ro":    "Română",
	"ru":    "Русский",
	"sk":    "Slovenčina",
	"sl":    "Slovenščina",
	"sr":    "Српски",
	"sv":    "Svenska",
	"th":    "ไทย",
	"tr":    "Türkçe",
	"uk":    "Українська",
	"vi":    "Tiếng Việt",
	"zh":    "中文",

	"zh-Hans": "简体中文",
	"zh-Hant": "繁體中文",
}

// defaultRegion gives a flag to bare languages whose region is implied.
var defaultRegion = map[string]string{
	"ar": "SA", "bg": "BG", "ca": "ES", "cs": "CZ", "da": "DK", "de": "DE",
	"el": "GR", "en": "US", "es": "ES", "et": "EE", "fi": "FI", "fr": "FR",
	"he": "IL", "hi": "IN", "hr": "HR", "hu": "HU", "id": "ID", "it": "IT",
	"ja": "JP", "ko": "KR", "lt": "LT", "lv": "LV", "nb": "NO", "nl": "NL",
	"pl": "PL", "pt": "PT", "ro": "RO", "ru": "RU", "sk": "SK", "sl": "SI",
	"sr": "RS", "sv": "SE", "th": "TH", "tr": "TR", "uk": "UA", "vi": "VN",
	"zh": "CN",
}

// Describe returns best-effort display metadata for a locale spec. The
// lookup tries the full spec, then language-Script, then the bare
// language; unknown locales echo the spec back with no flag.
func Describe(spec string) Meta {
	l := Parse(spec)
	m := Meta{Name: spec, Flag: FlagFor(l.Region)}
	if m.Flag == "" {
		m.Flag = FlagFor(defaultRegion[l.Language])
	}

	candidates := []string{
		l.String(),
		Locale{Language: l.Language, Script: l.Script}.String(),
		l.Language,
	}
	for _, c := range candidates {
		if name, ok := names[c]; ok {
			m.Name = name
			break
		}
	}
	return m
}

// FlagFor converts a two-letter region code to its emoji flag. Numeric
// regions and malformed codes have no flag.
func FlagFor(region string) string {
	if len(region) != 2 {
		return ""
	}
	var flag []rune
	for _, r := range region {
		switch {
		case r >= 'A' && r <= 'Z':
			flag = append(flag, 0x1F1E6+(r-'A'))
		case r >= 'a' && r <= 'z':
			flag = append(flag, 0x1F1E6+(r-'a'))
		default:
			return ""
		}
	}
	return string(flag)
}
