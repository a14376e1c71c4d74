package router

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/tinyland-inc/pocketbot/pkg/bus"
	"github.com/tinyland-inc/pocketbot/pkg/config"
	"github.com/tinyland-inc/pocketbot/pkg/converter"
	"github.com/tinyland-inc/pocketbot/pkg/presenter"
	"github.com/tinyland-inc/pocketbot/pkg/state"
)

const (
	ownerID = "1001"
	chatID  = "1001"
)

type sentMessage struct {
	Text     string
	Keyboard *presenter.Keyboard
}

type sentFile struct {
	Path string
	Name string
}

type fakeTransport struct {
	mu      sync.Mutex
	nextID  int
	posted  []presenter.MessageRef
	msgs    []sentMessage
	files   []sentFile
	deleted []presenter.MessageRef
	delErr  error
}

func (f *fakeTransport) SendText(_ context.Context, conv, text string, kb *presenter.Keyboard) (presenter.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	ref := presenter.MessageRef{ConversationID: conv, MessageID: f.nextID}
	f.posted = append(f.posted, ref)
	f.msgs = append(f.msgs, sentMessage{Text: text, Keyboard: kb})
	return ref, nil
}

func (f *fakeTransport) SendFile(_ context.Context, _, path, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := os.Stat(path); err != nil {
		return err
	}
	f.files = append(f.files, sentFile{Path: path, Name: name})
	return nil
}

func (f *fakeTransport) DeleteMessage(_ context.Context, ref presenter.MessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ref)
	return f.delErr
}

func (f *fakeTransport) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.msgs))
	for i, m := range f.msgs {
		out[i] = m.Text
	}
	return out
}

func (f *fakeTransport) last() sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.msgs[len(f.msgs)-1]
}

type generateCall struct {
	Model  string
	Prompt string
}

type fakeGenerator struct {
	mu    sync.Mutex
	calls []generateCall
	reply string
	err   error
}

func (g *fakeGenerator) Generate(_ context.Context, model, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, generateCall{Model: model, Prompt: prompt})
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

type convertCall struct {
	Source   string
	Src, Dst converter.Format
}

type fakeConverter struct {
	calls []convertCall
	err   error
}

func (c *fakeConverter) Convert(_ context.Context, sourcePath string, src, dst converter.Format) (string, error) {
	c.calls = append(c.calls, convertCall{Source: sourcePath, Src: src, Dst: dst})
	if c.err != nil {
		return "", &converter.ConversionError{Cause: c.err}
	}
	out := filepath.Join(filepath.Dir(sourcePath), converter.OutputName(sourcePath, dst))
	if err := os.WriteFile(out, []byte("converted"), 0o600); err != nil {
		return "", &converter.ConversionError{Cause: err}
	}
	return out, nil
}

type fakeGeocoder struct {
	place string
	err   error
}

func (g *fakeGeocoder) Reverse(context.Context, float64, float64) (string, error) {
	return g.place, g.err
}

type fakeFetcher struct {
	err error
}

func (f *fakeFetcher) Fetch(_ context.Context, _ bus.Document, dest string) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(dest, []byte("upload"), 0o600)
}

type harness struct {
	router    *Router
	store     *state.Store
	transport *fakeTransport
	gen       *fakeGenerator
	conv      *fakeConverter
	geo       *fakeGeocoder
	files     *fakeFetcher
	scratch   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.DefaultConfig()
	h := &harness{
		store:     state.NewStore(),
		transport: &fakeTransport{},
		gen:       &fakeGenerator{reply: "Sunny and mild."},
		conv:      &fakeConverter{},
		geo:       &fakeGeocoder{place: "Lyon, Auvergne-Rhône-Alpes"},
		files:     &fakeFetcher{},
		scratch:   t.TempDir(),
	}
	h.router = New(Deps{
		AuthorizedUserID: ownerID,
		Store:            h.store,
		Presenter:        presenter.New(h.transport),
		Generator:        h.gen,
		Converter:        h.conv,
		Geocoder:         h.geo,
		Files:            h.files,
		Catalog:          cfg.Catalog(),
		DefaultModel:     cfg.Models.Default,
		ScratchDir:       h.scratch,
	})
	return h
}

func (h *harness) text(t *testing.T, s string) {
	t.Helper()
	h.router.Route(context.Background(), bus.TextEvent(chatID, ownerID, s))
}

func (h *harness) tag() state.Tag {
	return h.store.Get(chatID).Tag
}

var errBoom = errors.New("boom")
