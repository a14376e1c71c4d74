// Package converter turns office documents into PDF and PDF back into DOCX by
// driving a headless LibreOffice process.
package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tinyland-inc/pocketbot/pkg/logger"
	"github.com/tinyland-inc/pocketbot/pkg/utils"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatDOC  Format = "doc"
	FormatODT  Format = "odt"
)

// ErrUnsupportedFormat is returned for extensions with no conversion direction.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ConversionError wraps any failure of the conversion backend.
type ConversionError struct {
	Cause error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion failed: %v", e.Cause)
}

func (e *ConversionError) Unwrap() error { return e.Cause }

// Direction infers source and target formats from a file name. Matching is
// case-insensitive.
func Direction(fileName string) (src, dst Format, err error) {
	ext := Format(strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), "."))
	switch ext {
	case FormatDOCX, FormatDOC, FormatODT:
		return ext, FormatPDF, nil
	case FormatPDF:
		return FormatPDF, FormatDOCX, nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(fileName))
	}
}

// OutputName is the delivered file name for a converted source.
func OutputName(sourceName string, dst Format) string {
	return utils.Stem(sourceName) + "." + string(dst)
}

type Config struct {
	SofficePath string
	Timeout     time.Duration
	Runner      Runner
}

type Converter struct {
	soffice string
	timeout time.Duration
	runner  Runner
}

func New(cfg Config) *Converter {
	soffice := cfg.SofficePath
	if soffice == "" {
		soffice = "soffice"
	}
	runner := cfg.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Converter{soffice: soffice, timeout: cfg.Timeout, runner: runner}
}

// Convert writes the converted file next to sourcePath and returns its path.
// On failure any partial output is removed.
func (c *Converter) Convert(ctx context.Context, sourcePath string, src, dst Format) (string, error) {
	if _, err := os.Stat(sourcePath); err != nil {
		return "", &ConversionError{Cause: err}
	}

	args, err := buildArgs(sourcePath, src, dst)
	if err != nil {
		return "", &ConversionError{Cause: err}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	outputPath := filepath.Join(filepath.Dir(sourcePath), OutputName(sourcePath, dst))
	start := time.Now()
	out, runErr := c.runner.Run(ctx, c.soffice, args...)
	if runErr == nil {
		if info, statErr := os.Stat(outputPath); statErr != nil {
			runErr = fmt.Errorf("no output produced: %w", statErr)
		} else if info.Size() == 0 {
			runErr = errors.New("output is empty")
		}
	}

	if runErr != nil {
		if rmErr := os.Remove(outputPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logger.WarnCF("converter", "Failed to remove partial output", map[string]any{
				"path":  outputPath,
				"error": rmErr.Error(),
			})
		}
		logger.ErrorCF("converter", "Conversion failed", map[string]any{
			"source": filepath.Base(sourcePath),
			"from":   string(src),
			"to":     string(dst),
			"output": strings.TrimSpace(string(out)),
			"error":  runErr.Error(),
		})
		return "", &ConversionError{Cause: runErr}
	}

	logger.InfoCF("converter", "Conversion finished", map[string]any{
		"source":  filepath.Base(sourcePath),
		"to":      string(dst),
		"elapsed": time.Since(start).String(),
	})
	return outputPath, nil
}

func buildArgs(sourcePath string, src, dst Format) ([]string, error) {
	outDir := filepath.Dir(sourcePath)
	switch {
	case dst == FormatPDF && src != FormatPDF:
		return []string{"--headless", "--convert-to", "pdf", "--outdir", outDir, sourcePath}, nil
	case src == FormatPDF && dst == FormatDOCX:
		return []string{
			"--headless",
			"--infilter=writer_pdf_import",
			"--convert-to", `docx:MS Word 2007 XML`,
			"--outdir", outDir,
			sourcePath,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s to %s", ErrUnsupportedFormat, src, dst)
	}
}
