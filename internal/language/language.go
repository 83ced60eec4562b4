package language

import "strings"

type entry struct {
	code2   string // ISO 639-1 (2-letter)
	code3   string // ISO 639-2 primary (3-letter)
	alt3    string // ISO 639-2 alternate (e.g. "fre" vs "fra")
	display string // Human-readable name
}

// The table covers the languages the speech backend reports in practice plus
// the alternate bibliographic codes seen in container metadata.
var languages = []entry{
	{"en", "eng", "", "English"},
	{"es", "spa", "", "Spanish"},
	{"fr", "fra", "fre", "French"},
	{"de", "deu", "ger", "German"},
	{"it", "ita", "", "Italian"},
	{"pt", "por", "", "Portuguese"},
	{"ja", "jpn", "", "Japanese"},
	{"ko", "kor", "", "Korean"},
	{"zh", "zho", "chi", "Chinese"},
	{"ru", "rus", "", "Russian"},
	{"ar", "ara", "", "Arabic"},
	{"hi", "hin", "", "Hindi"},
	{"nl", "nld", "dut", "Dutch"},
	{"pl", "pol", "", "Polish"},
	{"sv", "swe", "", "Swedish"},
	{"da", "dan", "", "Danish"},
	{"no", "nor", "", "Norwegian"},
	{"fi", "fin", "", "Finnish"},
	{"tr", "tur", "", "Turkish"},
	{"el", "ell", "gre", "Greek"},
	{"he", "heb", "", "Hebrew"},
	{"hu", "hun", "", "Hungarian"},
	{"cs", "ces", "cze", "Czech"},
	{"sk", "slk", "slo", "Slovak"},
	{"ro", "ron", "rum", "Romanian"},
	{"bg", "bul", "", "Bulgarian"},
	{"uk", "ukr", "", "Ukrainian"},
	{"th", "tha", "", "Thai"},
	{"vi", "vie", "", "Vietnamese"},
	{"id", "ind", "", "Indonesian"},
	{"ms", "msa", "may", "Malay"},
	{"fa", "fas", "per", "Persian"},
	{"ta", "tam", "", "Tamil"},
	{"ur", "urd", "", "Urdu"},
	{"ca", "cat", "", "Catalan"},
	{"hr", "hrv", "", "Croatian"},
	{"sr", "srp", "", "Serbian"},
	{"lt", "lit", "", "Lithuanian"},
	{"lv", "lav", "", "Latvian"},
	{"et", "est", "", "Estonian"},
	{"sl", "slv", "", "Slovenian"},
	{"tl", "tgl", "", "Tagalog"},
}

// Index maps built at init time.
var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
	}
}

func lookup(code string) *entry {
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	return nil
}

// baseTag strips an IETF-style region suffix ("en-US", "pt_BR") down to the
// primary subtag.
func baseTag(code string) string {
	for _, sep := range []string{"-", "_"} {
		if idx := strings.Index(code, sep); idx >= 0 {
			return code[:idx]
		}
	}
	return code
}

// NormalizeISO3 converts a language tag to an ISO 639-2 three-letter code.
// Three-letter inputs pass through; two-letter inputs are mapped via the
// table. Empty, "und", "unknown", and unmappable values normalize to the
// empty string, which callers treat as "no language".
func NormalizeISO3(code string) string {
	code = baseTag(strings.ToLower(strings.TrimSpace(code)))
	if code == "" || code == "und" || code == "unknown" {
		return ""
	}
	if len(code) == 3 {
		return code
	}
	if len(code) == 2 {
		if e, ok := byCode2[code]; ok {
			return e.code3
		}
	}
	return ""
}

// KnownISO3 reports whether code is a three-letter code present in the table
// (primary or alternate form).
func KnownISO3(code string) bool {
	code = strings.ToLower(strings.TrimSpace(code))
	if len(code) != 3 {
		return false
	}
	_, ok := byCode3[code]
	return ok
}

// DisplayName returns a human-readable language name for any recognized code.
// Returns "Unknown" for empty input, or the uppercased code for unrecognized input.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	if e := lookup(baseTag(strings.ToLower(trimmed))); e != nil {
		return e.display
	}
	return strings.ToUpper(trimmed)
}

// ExtractFromTags extracts and normalizes the language from stream metadata tags.
// Checks common tag keys: language, LANGUAGE, Language, language_ietf, lang, LANG.
func ExtractFromTags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := []string{"language", "LANGUAGE", "Language", "language_ietf", "lang", "LANG"}
	for _, key := range keys {
		if value, ok := tags[key]; ok {
			value = strings.TrimSpace(strings.ReplaceAll(value, "\u0000", ""))
			if value != "" {
				return strings.ToLower(value)
			}
		}
	}
	return ""
}
