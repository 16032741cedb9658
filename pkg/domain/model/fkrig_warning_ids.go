// 指示: miu200521358
package model

const (
	// FkRigWarningControlMissing はボーン・カーブに対応するコントロールが無い警告。
	FkRigWarningControlMissing = "FkRigWarningControlMissing"
	// FkRigWarningControlInactive は無効化されたコントロールを飛ばした警告。
	FkRigWarningControlInactive = "FkRigWarningControlInactive"
	// FkRigWarningControlTypeMismatch はコントロール値の型不一致で書き込みを見送った警告。
	FkRigWarningControlTypeMismatch = "FkRigWarningControlTypeMismatch"
	// FkRigWarningPoseBoneMissing はポーズ入力にボーンが無い警告。
	FkRigWarningPoseBoneMissing = "FkRigWarningPoseBoneMissing"
	// FkRigWarningPoseCurveMissing はポーズ入力にカーブが無い警告。
	FkRigWarningPoseCurveMissing = "FkRigWarningPoseCurveMissing"
	// FkRigWarningChannelMissing はコントロールに対応するチャンネルが無い警告。
	FkRigWarningChannelMissing = "FkRigWarningChannelMissing"
	// FkRigWarningBakeCancelled はベイクが途中で中断された警告。挿入済みのキーは残る。
	FkRigWarningBakeCancelled = "FkRigWarningBakeCancelled"
	// FkRigWarningCollapseRolledBack はレイヤー統合が中断され元に戻した警告。
	FkRigWarningCollapseRolledBack = "FkRigWarningCollapseRolledBack"
	// FkRigWarningControlSuffixMissing はコントロール名にコントロール接尾辞が無い警告。
	FkRigWarningControlSuffixMissing = "FkRigWarningControlSuffixMissing"
)
