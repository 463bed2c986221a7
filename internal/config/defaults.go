package config

const (
	defaultIndexDir  = "~/.cache/photodelta/index"
	defaultOutputDir = "set_delta_out"
	defaultLogDir    = "~/.local/share/photodelta/logs"

	defaultMaxSide         = 900
	defaultHashMaxDistance = 10
	defaultMinSharedChunks = 2
	defaultMaxCandidates   = 30
	defaultFeatures        = 1500
	defaultMinGoodMatches  = 40
	defaultMinInliers      = 18

	defaultDcrawBinary = "dcraw"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			IndexDir:  defaultIndexDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Matching: Matching{
			MaxSide:         defaultMaxSide,
			HashMaxDistance: defaultHashMaxDistance,
			MinSharedChunks: defaultMinSharedChunks,
			MaxCandidates:   defaultMaxCandidates,
			Features:        defaultFeatures,
			MinGoodMatches:  defaultMinGoodMatches,
			MinInliers:      defaultMinInliers,
			Progress:        true,
		},
		Tools: Tools{
			DcrawBinary: defaultDcrawBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
