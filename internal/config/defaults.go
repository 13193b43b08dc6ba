package config

const (
	defaultWorkDir                 = "~/.local/share/reelforge/work"
	defaultLogDir                  = "~/.local/share/reelforge/logs"
	defaultHistoryDB               = "~/.local/share/reelforge/history.db"
	defaultFontSize                = 24
	defaultOutlineWidth            = 3
	defaultMinChunkSeconds         = 0.8
	defaultBottomMargin            = 100
	defaultSideMarginRatio         = 0.1
	defaultFillColor               = "#FFFFFF"
	defaultOutlineColor            = "#000000"
	defaultVideoCodec              = "libx264"
	defaultPreset                  = "ultrafast"
	defaultCRF                     = 23
	defaultPixelFormat             = "yuv420p"
	defaultAudioCodec              = "aac"
	defaultAudioBitrate            = "192k"
	defaultWorkers                 = 1
	defaultProgressIntervalSeconds = 1
	defaultRewriteBaseURL          = "https://api.openai.com/v1/chat/completions"
	defaultRewriteModel            = "gpt-4o-mini"
	defaultRewriteTimeoutSeconds   = 60
	defaultRewriteSystemPrompt     = "Rewrite the following text as short, energetic narration for a vertical video. Reply with the narration only."
	defaultSpeechBaseURL           = "https://api.openai.com/v1/audio/speech"
	defaultSpeechModel             = "tts-1"
	defaultSpeechVoice             = "echo"
	defaultSpeechSpeed             = 1.1
	defaultSpeechMaxChars          = 4000
	defaultSpeechTimeoutSeconds    = 120
	defaultNtfyTimeoutSeconds      = 10
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
		},
		Captions: Captions{
			Enabled:         true,
			FontSize:        defaultFontSize,
			OutlineWidth:    defaultOutlineWidth,
			MinChunkSeconds: defaultMinChunkSeconds,
			BottomMargin:    defaultBottomMargin,
			SideMarginRatio: defaultSideMarginRatio,
			FillColor:       defaultFillColor,
			OutlineColor:    defaultOutlineColor,
		},
		Render: Render{
			FFmpegBinary:            "ffmpeg",
			FFprobeBinary:           "ffprobe",
			VideoCodec:              defaultVideoCodec,
			Preset:                  defaultPreset,
			CRF:                     defaultCRF,
			PixelFormat:             defaultPixelFormat,
			AudioCodec:              defaultAudioCodec,
			AudioBitrate:            defaultAudioBitrate,
			Workers:                 defaultWorkers,
			ProgressIntervalSeconds: defaultProgressIntervalSeconds,
		},
		Rewrite: Rewrite{
			Enabled:        true,
			BaseURL:        defaultRewriteBaseURL,
			Model:          defaultRewriteModel,
			TimeoutSeconds: defaultRewriteTimeoutSeconds,
			SystemPrompt:   defaultRewriteSystemPrompt,
		},
		Speech: Speech{
			BaseURL:        defaultSpeechBaseURL,
			Model:          defaultSpeechModel,
			Voice:          defaultSpeechVoice,
			Speed:          defaultSpeechSpeed,
			MaxChars:       defaultSpeechMaxChars,
			TimeoutSeconds: defaultSpeechTimeoutSeconds,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
