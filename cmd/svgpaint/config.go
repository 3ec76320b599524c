package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/benoitkugler/svgpaint/svgload"
	"golang.org/x/exp/slog"
	"gopkg.in/yaml.v3"
)

// output formats
const (
	formatPNG = "png"
	formatPDF = "pdf"
)

// config stores the rendering settings, read from
// a YAML file and possibly overridden by the command line flags.
type config struct {
	// Width and Height are the output size, in pixels for PNG
	// and in points for PDF. Zero means the size of the document.
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	// Format is png or pdf. If empty, it is deduced
	// from the output file extension.
	Format    string            `yaml:"format"`
	ErrorMode svgload.ErrorMode `yaml:"errorMode"`
	LogLevel  slog.Level        `yaml:"logLevel"`
	Opacity   float64           `yaml:"opacity"`
}

func defaultConfig() config {
	return config{ErrorMode: svgload.WarnErrorMode, LogLevel: slog.LevelWarn, Opacity: 1}
}

// loadConfig reads the YAML file `name`, on top of the default values.
func loadConfig(name string) (config, error) {
	cfg := defaultConfig()
	b, err := os.ReadFile(name)
	if err != nil {
		return cfg, err
	}
	if err = yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", name, err)
	}
	return cfg, nil
}

// resolveFormat checks the format, deducing it from `output`
// when not set.
func (cfg *config) resolveFormat(output string) error {
	if cfg.Format == "" {
		cfg.Format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
		if cfg.Format == "" {
			cfg.Format = formatPNG
		}
	}
	switch cfg.Format {
	case formatPNG, formatPDF:
	default:
		return fmt.Errorf("unsupported output format %q", cfg.Format)
	}
	if cfg.Opacity < 0 || cfg.Opacity > 1 {
		return fmt.Errorf("opacity must be in [0, 1], got %g", cfg.Opacity)
	}
	return nil
}

// outputName replaces the extension of `input` with the format one.
func outputName(input, format string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
}
