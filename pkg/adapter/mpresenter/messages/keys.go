// 指示: miu200521358
// Package messages はCLI表示に使うメッセージキーと翻訳カタログを提供する。
package messages

// メッセージキー一覧。キーは日本語の表示文言を兼ねる。
const (
	HelpUsageTitle = "使い方"
	HelpUsage      = "使い方説明"

	MessageRigRequired     = "スケルトンファイルを指定してください"
	MessageClipRequired    = "クリップファイルを指定してください"
	MessageInterpInvalid   = "補間方式が不正です: %s"
	MessageModeInvalid     = "適用モードが不正です: %s"
	MessageIntervalInvalid = "サンプル間隔は1以上を指定してください: %d"
	MessageBakeFailed      = "ベイク失敗: %v"
	MessageBakeCancelled   = "ベイクを中断しました: %d フレーム記録済み"
	MessageWarning         = "警告: %s"

	LogBakeStarted   = "ベイク開始: %d サンプル"
	LogBakeProgress  = "ベイク中: %d/%d フレーム=%d"
	LogBakeReduced   = "キー削減: %d キー削除"
	LogBakeCompleted = "ベイク完了: %d フレーム %d キー"
	LogTrackSaved    = "トラック保存成功: %s"
)

// allKeys は翻訳カタログへ登録するキー一覧。
var allKeys = []string{
	HelpUsageTitle,
	HelpUsage,
	MessageRigRequired,
	MessageClipRequired,
	MessageInterpInvalid,
	MessageModeInvalid,
	MessageIntervalInvalid,
	MessageBakeFailed,
	MessageBakeCancelled,
	MessageWarning,
	LogBakeStarted,
	LogBakeProgress,
	LogBakeReduced,
	LogBakeCompleted,
	LogTrackSaved,
}
