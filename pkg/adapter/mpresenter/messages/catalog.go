// 指示: miu200521358
package messages

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// japaneseOverrides はキーと表示文言が異なる日本語メッセージ。
var japaneseOverrides = map[string]string{
	HelpUsage: "mu_fkrig -rig <スケルトン(.glb/.gltf/.vrm)> -clip <クリップ(.json)> [-out <トラック(.json)>] [オプション]",
}

// englishMessages は英語の表示文言。
var englishMessages = map[string]string{
	HelpUsageTitle:         "Usage",
	HelpUsage:              "mu_fkrig -rig <skeleton(.glb/.gltf/.vrm)> -clip <clip(.json)> [-out <track(.json)>] [options]",
	MessageRigRequired:     "Please specify a skeleton file",
	MessageClipRequired:    "Please specify a clip file",
	MessageInterpInvalid:   "Invalid interpolation: %s",
	MessageModeInvalid:     "Invalid apply mode: %s",
	MessageIntervalInvalid: "Sample interval must be 1 or more: %d",
	MessageBakeFailed:      "Bake failed: %v",
	MessageBakeCancelled:   "Bake cancelled: %d frames recorded",
	MessageWarning:         "Warning: %s",
	LogBakeStarted:         "Bake started: %d samples",
	LogBakeProgress:        "Baking: %d/%d frame=%d",
	LogBakeReduced:         "Key reduction: %d keys removed",
	LogBakeCompleted:       "Bake completed: %d frames %d keys",
	LogTrackSaved:          "Track saved: %s",
}

// newCatalog は日本語と英語を登録したカタログを生成する。
func newCatalog() catalog.Catalog {
	builder := catalog.NewBuilder(catalog.Fallback(language.Japanese))
	for _, key := range allKeys {
		japanese := key
		if text, ok := japaneseOverrides[key]; ok {
			japanese = text
		}
		_ = builder.SetString(language.Japanese, key, japanese)
		if text, ok := englishMessages[key]; ok {
			_ = builder.SetString(language.English, key, text)
		}
	}
	return builder
}

var (
	defaultCatalog = newCatalog()
	// supportedLanguages は先頭を既定言語とする対応言語。
	supportedLanguages = []language.Tag{language.Japanese, language.English}
	languageMatcher    = language.NewMatcher(supportedLanguages)
)

// NewPrinter は言語タグ(ja/en など)に対応するプリンタを返す。対応外のタグは日本語にする。
func NewPrinter(lang string) *message.Printer {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.Japanese
	}
	_, index, confidence := languageMatcher.Match(tag)
	if confidence == language.No {
		index = 0
	}
	return message.NewPrinter(supportedLanguages[index], message.Catalog(defaultCatalog))
}
