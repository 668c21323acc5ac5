// 指示: miu200521358
// Package messages はCLI表示に使うメッセージキーを提供する。
package messages

// メッセージキー一覧。
const (
	HelpUsageTitle = "使い方"
	HelpUsage      = "mu_mocap2spine [flags] <モーションファイル|モーションディレクトリ> <スケルトンJSON>"

	FlagMotion           = "入力モーションファイルパス (.json/.gltf/.glb)"
	FlagMotionDir        = "入力モーションディレクトリ。直下の対応ファイルを名前順に変換する"
	FlagSkeleton         = "入力スケルトンJSONパス"
	FlagProfile          = "リターゲット設定 (.json/.yaml/.yml)"
	FlagAnimationName    = "生成アニメーション名 (単一ファイル時のみ)"
	FlagFps              = "モーションのサンプリングFPS"
	FlagRootMotion       = "ルートモーション (in_place/none/その他は移動を出力)"
	FlagConvertSkeleton  = "ソース階層に合わせてスケルトンを変換する"
	FlagSkeletonMode     = "スケルトン変換モード"
	FlagSkeletonScope    = "スケルトン変換範囲"
	FlagSkeletonMismatch = "階層不一致時のポリシー"
	FlagOut              = "出力スケルトンJSONパス"
	FlagReport           = "出力レポートJSONパス"
	FlagPlotDir          = "角度曲線の診断画像の出力ディレクトリ"
	FlagLogLevel         = "ログレベル (debug/info/warn/error)"

	MessageSkeletonRequired = "入力スケルトンJSONを指定してください (-skeleton)"
	MessageMotionRequired   = "入力モーションを指定してください (-motion または -motion-dir)"
	MessageMotionConflict   = "-motion と -motion-dir は同時に指定できません"
	MessageInvalidChoice    = "%s の値が不正です: %s (有効値: %s)"
	MessageInvalidFps       = "FPSは正の値を指定してください: %v"
	MessageNoSuccess        = "変換に成功したモーションがありません"

	LogLoadStart     = "読み込み開始: %s"
	LogItemSuccess   = "変換完了: %s -> %s (%.3f秒)"
	LogItemFailed    = "変換失敗: %s: %s"
	LogOutputWritten = "保存完了: %s"
	LogReportWritten = "レポート保存完了: %s"
	LogBatchSummary  = "処理=%d 成功=%d 失敗=%d"
)
