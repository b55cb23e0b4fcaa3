package queue

import (
	"sort"
	"strings"

	"golang.org/x/text/language"

	"github.com/dgnsrekt/narrator/internal/synth"
)

// DefaultVoice is used when a job's language is unknown or empty.
var DefaultVoice = synth.Voice{Name: "en-US-JennyNeural", Locale: "en-US"}

// voiceTable maps lowercase language names to neural voices.
var voiceTable = map[string]synth.Voice{
	"english":    {Name: "en-US-JennyNeural", Locale: "en-US"},
	"spanish":    {Name: "es-ES-ElviraNeural", Locale: "es-ES"},
	"french":     {Name: "fr-FR-DeniseNeural", Locale: "fr-FR"},
	"german":     {Name: "de-DE-KatjaNeural", Locale: "de-DE"},
	"italian":    {Name: "it-IT-ElsaNeural", Locale: "it-IT"},
	"portuguese": {Name: "pt-BR-FranciscaNeural", Locale: "pt-BR"},
	"dutch":      {Name: "nl-NL-ColetteNeural", Locale: "nl-NL"},
	"russian":    {Name: "ru-RU-SvetlanaNeural", Locale: "ru-RU"},
	"japanese":   {Name: "ja-JP-NanamiNeural", Locale: "ja-JP"},
	"korean":     {Name: "ko-KR-SunHiNeural", Locale: "ko-KR"},
	"chinese":    {Name: "zh-CN-XiaoxiaoNeural", Locale: "zh-CN"},
	"hindi":      {Name: "hi-IN-SwaraNeural", Locale: "hi-IN"},
	"arabic":     {Name: "ar-SA-ZariyahNeural", Locale: "ar-SA"},
	"turkish":    {Name: "tr-TR-EmelNeural", Locale: "tr-TR"},
	"polish":     {Name: "pl-PL-ZofiaNeural", Locale: "pl-PL"},
	"swedish":    {Name: "sv-SE-SofieNeural", Locale: "sv-SE"},
}

// codeTable maps primary ISO 639-1 codes to the same voices.
var codeTable = map[string]synth.Voice{
	"en": voiceTable["english"],
	"es": voiceTable["spanish"],
	"fr": voiceTable["french"],
	"de": voiceTable["german"],
	"it": voiceTable["italian"],
	"pt": voiceTable["portuguese"],
	"nl": voiceTable["dutch"],
	"ru": voiceTable["russian"],
	"ja": voiceTable["japanese"],
	"ko": voiceTable["korean"],
	"zh": voiceTable["chinese"],
	"hi": voiceTable["hindi"],
	"ar": voiceTable["arabic"],
	"tr": voiceTable["turkish"],
	"pl": voiceTable["polish"],
	"sv": voiceTable["swedish"],
}

// ResolveVoice maps a language name ("Spanish") or BCP 47 code ("es",
// "es-MX") to a synthesis voice. Unknown languages resolve to
// DefaultVoice.
func ResolveVoice(lang string) synth.Voice {
	key := strings.ToLower(strings.TrimSpace(lang))
	if key == "" {
		return DefaultVoice
	}
	if v, ok := voiceTable[key]; ok {
		return v
	}

	tag, err := language.Parse(key)
	if err != nil {
		return DefaultVoice
	}
	base, conf := tag.Base()
	if conf == language.No {
		return DefaultVoice
	}
	if v, ok := codeTable[base.String()]; ok {
		return v
	}
	return DefaultVoice
}

// VoiceInfo pairs a language name with its voice for listings.
type VoiceInfo struct {
	Language string
	Voice    synth.Voice
}

// Voices lists the supported languages sorted by name.
func Voices() []VoiceInfo {
	out := make([]VoiceInfo, 0, len(voiceTable))
	for name, voice := range voiceTable {
		out = append(out, VoiceInfo{Language: name, Voice: voice})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Language < out[j].Language })
	return out
}
