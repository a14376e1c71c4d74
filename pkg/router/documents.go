package router

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/tinyland-inc/pocketbot/pkg/bus"
	"github.com/tinyland-inc/pocketbot/pkg/converter"
	"github.com/tinyland-inc/pocketbot/pkg/logger"
	"github.com/tinyland-inc/pocketbot/pkg/presenter"
	"github.com/tinyland-inc/pocketbot/pkg/utils"
)

func (r *Router) handleDocument(ctx context.Context, ev bus.InboundEvent) {
	doc := *ev.Document
	src, dst, err := converter.Direction(doc.FileName)
	if err != nil {
		r.reply(ctx, ev, presenter.MsgUnsupported, nil)
		return
	}

	jobDir := filepath.Join(r.ScratchDir, uuid.NewString())
	if err := os.MkdirAll(jobDir, 0o700); err != nil {
		logger.ErrorCF("router", "Failed to create scratch directory", map[string]any{
			"dir":   jobDir,
			"error": err.Error(),
		})
		r.reply(ctx, ev, presenter.MsgConversionFailed, nil)
		return
	}
	defer removeJobDir(jobDir)

	ind := r.Presenter.ShowWorking(ctx, ev.ConversationID, presenter.WorkingConverting)
	defer ind.Retract(ctx)

	inputPath := filepath.Join(jobDir, utils.SanitizeFileName(doc.FileName))
	defer removeFile(inputPath)

	if err := r.Files.Fetch(ctx, doc, inputPath); err != nil {
		logger.ErrorCF("router", "Failed to download document", map[string]any{
			"conversation": ev.ConversationID,
			"file":         doc.FileName,
			"error":        err.Error(),
		})
		ind.Retract(ctx)
		r.reply(ctx, ev, presenter.MsgConversionFailed, nil)
		return
	}

	outputPath, err := r.Converter.Convert(ctx, inputPath, src, dst)
	ind.Retract(ctx)
	if err != nil {
		logger.ErrorCF("router", "Document conversion failed", map[string]any{
			"conversation": ev.ConversationID,
			"file":         doc.FileName,
			"error":        err.Error(),
		})
		r.reply(ctx, ev, presenter.MsgConversionFailed, nil)
		return
	}
	defer removeFile(outputPath)

	ready := presenter.MsgToPDFReady
	if dst == converter.FormatDOCX {
		ready = presenter.MsgToDOCXReady
	}
	r.reply(ctx, ev, ready, nil)
	_ = r.Presenter.SendFile(ctx, ev.ConversationID, outputPath, converter.OutputName(filepath.Base(inputPath), dst))
}

func removeFile(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WarnCF("router", "Failed to remove scratch file", map[string]any{
			"path":  path,
			"error": err.Error(),
		})
	}
}

// removeJobDir only removes an empty directory; anything left behind stays
// for inspection.
func removeJobDir(dir string) {
	if err := os.Remove(dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WarnCF("router", "Scratch directory not empty", map[string]any{
			"dir":   dir,
			"error": err.Error(),
		})
	}
}
