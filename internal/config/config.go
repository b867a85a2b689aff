package config

import (
	"runtime"

	"github.com/spf13/viper"
)

type Config struct {
	OCR    OCRConfig
	Render RenderConfig
	Logger LoggerConfig
}

type OCRConfig struct {
	Engine   string
	Language string
	Workers  int
}

type RenderConfig struct {
	DPI        int
	KeepImages bool
}

type LoggerConfig struct {
	Level  string
	Format string
}

// Load reads configuration from PDFOCR_* environment variables, falling back
// to defaults. CLI flags override the loaded values afterwards.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("ENGINE", "gosseract")
	v.SetDefault("LANGUAGE", "eng")
	v.SetDefault("WORKERS", defaultWorkers())
	v.SetDefault("DPI", 150)
	v.SetDefault("KEEP_IMAGES", false)
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "text")

	// Env
	v.SetEnvPrefix("PDFOCR")
	v.AutomaticEnv()

	cfg := &Config{
		OCR: OCRConfig{
			Engine:   v.GetString("ENGINE"),
			Language: v.GetString("LANGUAGE"),
			Workers:  v.GetInt("WORKERS"),
		},
		Render: RenderConfig{
			DPI:        v.GetInt("DPI"),
			KeepImages: v.GetBool("KEEP_IMAGES"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
	}

	if cfg.OCR.Workers < 1 {
		cfg.OCR.Workers = 1
	}
	if cfg.Render.DPI < 72 {
		cfg.Render.DPI = 72
	}

	return cfg, nil
}

func defaultWorkers() int {
	n := runtime.NumCPU() / 2
	if n < 2 {
		n = 2
	}
	return n
}
