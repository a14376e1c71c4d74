package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tinyland-inc/pocketbot/cmd/pocketbot/internal"
	"github.com/tinyland-inc/pocketbot/pkg/converter"
	"github.com/tinyland-inc/pocketbot/pkg/router"
	"github.com/tinyland-inc/pocketbot/pkg/utils"
)

func convertCmd(ctx context.Context, out io.Writer, path, outputDir string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := internal.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	return convertFile(ctx, out, internal.NewConverter(cfg), path, outputDir)
}

// convertFile converts a copy of path in a temporary job directory so the
// original is never touched, then moves the result into outputDir.
func convertFile(ctx context.Context, out io.Writer, conv router.Converter, path, outputDir string) error {
	src, dst, err := converter.Direction(path)
	if err != nil {
		return err
	}

	jobDir, err := os.MkdirTemp("", "pocketbot-convert-*")
	if err != nil {
		return fmt.Errorf("create job dir: %w", err)
	}
	defer os.RemoveAll(jobDir)

	input := filepath.Join(jobDir, utils.SanitizeFileName(filepath.Base(path)))
	if err := copyFile(path, input); err != nil {
		return err
	}

	result, err := conv.Convert(ctx, input, src, dst)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	final := filepath.Join(outputDir, filepath.Base(result))
	if err := copyFile(result, final); err != nil {
		return err
	}

	fmt.Fprintln(out, final)
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}
