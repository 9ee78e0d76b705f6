package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Output saved to %s":                  "出力を %s に保存しました",
		"Project saved to %s":                 "プロジェクトを %s に保存しました",
		"Summary saved to %s":                 "サマリーを %s に保存しました",
		"Headlines saved to %s":               "見出しを %s に保存しました",
		"Loaded %d headline overrides":        "%d 件の見出し上書きを読み込みました",
		"Interrupted, shutting down...":       "中断されました。シャットダウン中...",
		"Video export completed successfully": "動画の書き出しが正常に完了しました",
		"Trimmed audio saved to %s (%.2fs)":   "トリミングした音声を %s に保存しました (%.2f秒)",
		"Failed to write output: %s":          "出力の書き込みに失敗しました: %s",
		"Failed to write summary: %s":         "サマリーの書き込みに失敗しました: %s",

		// Allocate stage
		"Allocating %d images over %d slides":                 "%d 枚の画像を %d 枚のスライドに割り当て中",
		"Allocation: %d photo slides, %d text-only (%d%%)":    "割り当て: 写真スライド %d 枚, テキストのみ %d 枚 (%d%%)",
		"Allocated %d photo slides and %d text slides (%d%%)": "写真スライド %d 枚とテキストスライド %d 枚を割り当てました (%d%%)",
		"Allocation mode %q resolved to %q":                   "割り当てモード %q を %q として扱います",
		"Failed to allocate images: %s":                       "画像の割り当てに失敗しました: %s",

		// Generate stage
		"Generating text for %d slides":                 "%d 枚のスライドのテキストを生成中",
		"Generating text for %d slides with %d workers": "%d 枚のスライドのテキストを %d ワーカーで生成中",
		"Generation completed with %d errors":           "テキスト生成が完了しました (エラー %d 件)",
		"All slides generated":                          "すべてのスライドを生成しました",
		"%d of %d slides failed, first error: %s":       "%d / %d 枚のスライドが失敗しました。最初のエラー: %s",
		"Slide %d ready":                                "スライド %d の準備ができました",
		"Slide %d failed: %v":                           "スライド %d が失敗しました: %v",
		"Regenerating slide %d":                         "スライド %d を再生成中",
		"Failed to generate slides: %s":                 "スライドの生成に失敗しました: %s",
		"Failed to regenerate slide %d: %s":             "スライド %d の再生成に失敗しました: %s",

		// Export stage
		"Exporting %d slides to %d platforms":                 "%d 枚のスライドを %d プラットフォーム向けに書き出し中",
		"Exporting %d slides to %d platforms with %d workers": "%d 枚のスライドを %d プラットフォーム向けに %d ワーカーで書き出し中",
		"Export %s slide %d failed: %v":                       "%s のスライド %d の書き出しに失敗しました: %v",
		"Exported %d images":                                  "%d 枚の画像を書き出しました",
		"Exported %d images, %d failed":                       "%d 枚の画像を書き出しました (失敗 %d 件)",
		"Exported %d images, %d failures":                     "%d 枚の画像を書き出しました (失敗 %d 件)",
		"Failed to export images: %s":                         "画像の書き出しに失敗しました: %s",
		"Rendering contact sheet %dx%d for %d slides":         "%dx%d のコンタクトシートを %d 枚のスライドで描画中",

		// Video
		"Compositing slides for %s video":                                     "%s 向け動画のスライドを合成中",
		"Video timing: %d slides x %.2fs, %d frames":                          "動画タイミング: %d 枚 x %.2f秒, %d フレーム",
		"Timing: %d slides x %.3fs, transition %.3fs, total %.3fs, %d frames": "タイミング: %d 枚 x %.3f秒, トランジション %.3f秒, 合計 %.3f秒, %d フレーム",
		"Failed to compute timing: %s":                                        "タイミングの計算に失敗しました: %s",
		"Encoding video with CRF %d":                                          "CRF %d で動画をエンコード中",
		"Encoding %d frames at %.1f fps":                                      "%d フレームを %.1f fps でエンコード中",
		"Video encoded: %d bytes":                                             "動画エンコード完了: %d バイト",
		"Failed to encode video: %s":                                          "動画のエンコードに失敗しました: %s",
		"Could not inspect video: %s":                                         "動画を解析できませんでした: %s",
		"Video stream: %s %dx%d, %d samples":                                  "動画ストリーム: %s %dx%d, %d サンプル",
		"ffmpeg not available, writing PNG frame sequence instead":            "ffmpeg が利用できないため、PNG フレーム列を書き出します",

		// Audio
		"Trimming audio %s":                            "音声 %s をトリミング中",
		"Audio trimmed to %.2fs":                       "音声を %.2f秒 にトリミングしました",
		"Failed to trim audio: %s":                     "音声のトリミングに失敗しました: %s",
		"Decoded %.3fs of audio, %d channels at %d Hz": "%.3f秒 の音声をデコードしました (%d チャンネル, %d Hz)",
		"Trimmed to %d samples (%.3fs)":                "%d サンプル (%.3f秒) にトリミングしました",
		"Transcoding %d bytes of audio with ffmpeg":    "ffmpeg で %d バイトの音声を変換中",
	})
}
