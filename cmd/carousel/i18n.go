// Package main provides localization for the carousel CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Project":     "プロジェクト",
		"Content":     "内容",
		"Look":        "見た目",
		"Text":        "テキスト生成",
		"Output":      "出力先",
		"Video":       "動画",
		"Audio":       "音声",
		"Performance": "性能",
		"Debug":       "デバッグ",
		"Logging":     "ログ",

		// Root command
		"Turn photos into vintage-styled carousels and narrated videos": "写真からヴィンテージ風のカルーセルとナレーション動画を作成",

		// Commands
		"Allocate photos to slides and save the project state": "写真をスライドに割り当ててプロジェクトを保存",
		"Generate text overlays for every slide":               "すべてのスライドのテキストを生成",
		"Regenerate the text of a single slide":                "1枚のスライドのテキストを再生成",
		"Export slide images for each platform":                "プラットフォームごとにスライド画像を書き出し",
		"Render the slides into a video":                       "スライドを動画に書き出し",
		"Trim an audio file to a window and save it as WAV":    "音声ファイルを指定範囲にトリミングしてWAVで保存",
		"Render a preview grid of all slides":                  "全スライドのプレビュー一覧を描画",
		"Show version information":                             "バージョン情報を表示",
		"carousel (Go) version %s":                             "carousel (Go版) バージョン %s",

		// Global flags
		"Project file (YAML)":                                "プロジェクトファイル（YAML）",
		"Environment file with API keys":                     "APIキーを含む環境ファイル",
		"Output directory":                                   "出力ディレクトリ",
		"Project state file (default: <output>/slides.json)": "プロジェクト状態ファイル（デフォルト: <output>/slides.json）",
		"Number of parallel workers (0 = CPU count)":         "並列ワーカー数（0 = CPU数）",
		"Enable debug output":                                "デバッグ出力を有効化",
		"Directory for debug output":                         "デバッグ出力先ディレクトリ",
		"Log level (debug, info, warn, error)":               "ログレベル（debug, info, warn, error）",
		"Log format (console, json)":                         "ログ形式（console, json）",
		"Suppress all log output":                            "すべてのログ出力を抑制",

		// Content flags
		"Carousel theme":                                "カルーセルのテーマ",
		"Keyword (repeatable)":                          "キーワード（複数指定可）",
		"Writing style hint":                            "文体のヒント",
		"Photo path or URL (repeatable)":                "写真のパスまたはURL（複数指定可）",
		"Number of slides (1-12)":                       "スライド枚数（1-12）",
		"Allocation mode (sequential, auto)":            "割り当てモード（sequential, auto）",
		"Headline visibility (all, first_only, none)":   "見出しの表示（all, first_only, none）",
		"Filter preset":                                 "フィルタープリセット",
		"Plan again instead of reusing the saved state": "保存済みの状態を使わずに割り当てをやり直す",

		// Text flags
		"Text provider (template, llm)":                          "テキスト生成方式（template, llm）",
		"LLM model name":                                         "LLMモデル名",
		"CSV file with manual headlines (slide,headline)":        "手動見出しのCSVファイル（slide,headline）",
		"Write generated headlines as an editable overrides CSV": "生成した見出しを編集用CSVとして保存",
		"Slide number to regenerate (1-based)":                   "再生成するスライド番号（1始まり）",

		// Export flags
		"Comma separated platforms or WxH sizes": "カンマ区切りのプラットフォーム名またはWxHサイズ",
		"Quality preset (low, medium, high)":     "品質プリセット（low, medium, high）",
		"Do not write summary.md":                "summary.md を書き出さない",

		// Video flags
		"Video platform or WxH size":                                        "動画のプラットフォームまたはWxHサイズ",
		"Frames per second":                                                 "フレームレート",
		"Seconds per slide":                                                 "スライドあたりの秒数",
		"Transition length in seconds":                                      "トランジションの秒数",
		"Transition (none, crossfade, slide)":                               "トランジション（none, crossfade, slide）",
		"Timing mode (fixed, match-audio)":                                  "タイミングモード（fixed, match-audio）",
		"Narration audio file":                                              "ナレーション音声ファイル",
		"Audio trim start in seconds":                                       "音声トリミング開始（秒）",
		"Audio trim end in seconds (0 = end of clip)":                       "音声トリミング終了（秒、0 = 最後まで）",
		"Video CRF value (0-51, lower is better, overrides quality preset)": "動画のCRF値（0-51、低いほど高品質、品質プリセットを上書き）",
		"Target bitrate in kbps":                                            "目標ビットレート（kbps）",
		"Path to ffmpeg (falls back to FFMPEG_PATH env, then PATH)":         "ffmpegのパス（未指定時は FFMPEG_PATH 環境変数、次に PATH）",
		"Fail instead of writing PNG frames when ffmpeg is missing":         "ffmpeg がない場合にPNGフレームを書き出さずに失敗する",
		"Video file path (default: <output>/video.mp4)":                     "動画ファイルのパス（デフォルト: <output>/video.mp4）",

		// Trim flags
		"Start in seconds":                   "開始（秒）",
		"End in seconds":                     "終了（秒）",
		"Output WAV path":                    "出力WAVのパス",
		"Path to ffmpeg for non-WAV input":   "WAV以外の入力に使うffmpegのパス",
		"An audio file argument is required": "音声ファイルの引数が必要です",

		// Contact sheet flags
		"Platform whose composites are previewed":               "プレビューするプラットフォーム",
		"Cells per row":                                         "1行あたりのセル数",
		"Cell width in pixels":                                  "セルの幅（ピクセル）",
		"Cell height in pixels":                                 "セルの高さ（ピクセル）",
		"Output PNG path (default: <output>/contact-sheet.png)": "出力PNGのパス（デフォルト: <output>/contact-sheet.png）",

		// Plan output
		"text only": "テキストのみ",
	})
}
