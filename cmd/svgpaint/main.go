// The svgpaint command paints an SVG file into a PNG image
// or a PDF page.
//
// Usage: svgpaint [-config file.yaml] [-o out.png|out.pdf] [-w W -h H] [-strict] [-v] input.svg
//
// The YAML configuration accepts the keys width, height, format,
// errorMode, logLevel and opacity. Flags take precedence over the file.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"

	"github.com/benoitkugler/svgpaint/svgdoc"
	"github.com/benoitkugler/svgpaint/svgload"
	"github.com/benoitkugler/svgpaint/svgpdf"
	"github.com/benoitkugler/svgpaint/svgraster"
	"golang.org/x/exp/slog"
)

const usage = "Usage: svgpaint [-config file.yaml] [-o out.png|out.pdf] [-w W -h H] [-strict] [-v] input.svg"

var errUsage = errors.New(usage)

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "svgpaint:", err)
		os.Exit(1)
	}
}

// job is a fully resolved invocation
type job struct {
	cfg           config
	input, output string
}

func parseArgs(args []string, stderr io.Writer) (job, error) {
	fs := flag.NewFlagSet("svgpaint", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, usage)
		fs.PrintDefaults()
	}
	var (
		configFile = fs.String("config", "", "YAML configuration `file`")
		output     = fs.String("o", "", "output `file`, .png or .pdf")
		width      = fs.Float64("w", 0, "output width, zero to use the document width")
		height     = fs.Float64("h", 0, "output height, zero to use the document height")
		strict     = fs.Bool("strict", false, "fail on unsupported elements")
		verbose    = fs.Bool("v", false, "log debug information")
	)
	if err := fs.Parse(args); err != nil {
		return job{}, err
	}
	if fs.NArg() != 1 {
		return job{}, errUsage
	}

	cfg := defaultConfig()
	if *configFile != "" {
		var err error
		cfg, err = loadConfig(*configFile)
		if err != nil {
			return job{}, err
		}
	}

	// flags explicitly set override the config file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "w":
			cfg.Width = *width
		case "h":
			cfg.Height = *height
		case "strict":
			if *strict {
				cfg.ErrorMode = svgload.StrictErrorMode
			}
		case "v":
			if *verbose {
				cfg.LogLevel = slog.LevelDebug
			}
		}
	})

	j := job{cfg: cfg, input: fs.Arg(0), output: *output}
	if err := j.cfg.resolveFormat(j.output); err != nil {
		return job{}, err
	}
	if j.output == "" {
		j.output = outputName(j.input, j.cfg.Format)
	}
	return j, nil
}

func run(args []string, stderr io.Writer) error {
	j, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: j.cfg.LogLevel}))
	return j.paint(logger)
}

func (j job) paint(logger *slog.Logger) error {
	doc, err := svgload.ReadFile(j.input, svgload.Options{ErrorMode: j.cfg.ErrorMode, Logger: logger})
	if err != nil {
		return err
	}
	logger.Debug("document loaded", "file", j.input, "fragments", len(doc.Fragments()))

	// the output file is only created once the painting succeeded
	var out bytes.Buffer
	switch j.cfg.Format {
	case formatPDF:
		err = svgpdf.Render(doc, &out, j.cfg.Width, j.cfg.Height, j.cfg.Opacity)
	default:
		err = j.paintPNG(doc, &out)
	}
	if err != nil {
		return fmt.Errorf("painting %s: %w", j.output, err)
	}
	if err = os.WriteFile(j.output, out.Bytes(), 0o644); err != nil {
		return err
	}
	logger.Debug("output written", "file", j.output, "format", j.cfg.Format)
	return nil
}

func (j job) paintPNG(doc *svgdoc.Document, out io.Writer) error {
	img, err := svgraster.Render(doc, int(j.cfg.Width), int(j.cfg.Height), j.cfg.Opacity)
	if err != nil {
		return err
	}
	return png.Encode(out, img)
}
