// Package router classifies inbound chat events, consults the conversation
// state and dispatches each event to exactly one handler.
package router

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/tinyland-inc/pocketbot/pkg/bus"
	"github.com/tinyland-inc/pocketbot/pkg/config"
	"github.com/tinyland-inc/pocketbot/pkg/converter"
	"github.com/tinyland-inc/pocketbot/pkg/logger"
	"github.com/tinyland-inc/pocketbot/pkg/presenter"
	"github.com/tinyland-inc/pocketbot/pkg/providers"
	"github.com/tinyland-inc/pocketbot/pkg/state"
)

type Converter interface {
	Convert(ctx context.Context, sourcePath string, src, dst converter.Format) (string, error)
}

type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (string, error)
}

// FileFetcher downloads an uploaded document to destPath.
type FileFetcher interface {
	Fetch(ctx context.Context, doc bus.Document, destPath string) error
}

type Deps struct {
	AuthorizedUserID string
	Store            *state.Store
	Presenter        *presenter.Presenter
	Generator        providers.Generator
	Converter        Converter
	Geocoder         Geocoder
	Files            FileFetcher
	Catalog          config.ModelCatalog
	DefaultModel     string
	ScratchDir       string
}

type Router struct {
	Deps
}

func New(d Deps) *Router {
	return &Router{Deps: d}
}

// Authorized reports whether the event comes from the single allowed user.
func (r *Router) Authorized(ev bus.InboundEvent) bool {
	return r.AuthorizedUserID != "" && ev.SenderID == r.AuthorizedUserID
}

// Route handles one event. It never panics and never returns an error; every
// failure is either shown to the user or logged.
func (r *Router) Route(ctx context.Context, ev bus.InboundEvent) {
	if !r.Authorized(ev) {
		logger.DebugCF("router", "Ignoring event from unauthorized sender", map[string]any{
			"sender": ev.SenderID,
			"kind":   string(ev.Kind),
		})
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			logger.ErrorCF("router", "Handler panicked", map[string]any{
				"conversation": ev.ConversationID,
				"kind":         string(ev.Kind),
				"panic":        fmt.Sprint(rec),
				"stack":        string(debug.Stack()),
			})
		}
	}()

	r.dispatch(ctx, ev)
}

func (r *Router) dispatch(ctx context.Context, ev bus.InboundEvent) {
	conv := ev.ConversationID

	if ev.Kind == bus.KindCommand {
		if ev.Command == "start" {
			r.handleStart(ctx, ev)
		}
		return
	}

	st := r.Store.Get(conv)
	if st.Tag.Scoped() && r.handleScoped(ctx, ev, st) {
		return
	}

	switch ev.Kind {
	case bus.KindText:
		if r.handleLabel(ctx, ev) {
			return
		}
		if st.Tag == state.Idle && !strings.HasPrefix(ev.Text, "/") {
			r.handleFreeText(ctx, ev)
		}
	case bus.KindDocument:
		if ev.Document != nil {
			r.handleDocument(ctx, ev)
		}
	}
}

// handleScoped runs the handler bound to the current state. It returns false
// when that handler does not consume the event.
func (r *Router) handleScoped(ctx context.Context, ev bus.InboundEvent, st state.State) bool {
	switch st.Tag {
	case state.AwaitingCityText:
		if ev.Kind != bus.KindText {
			return false
		}
		r.handleCityText(ctx, ev)
		return true
	case state.AwaitingLocation:
		switch {
		case ev.Kind == bus.KindLocation && ev.Location != nil:
			r.handleLocation(ctx, ev)
			return true
		case ev.Kind == bus.KindText && presenter.IsCancel(ev.Text):
			r.handleBack(ctx, ev)
			return true
		}
		return false
	case state.AwaitingPrompt:
		if ev.Kind != bus.KindText {
			return false
		}
		r.handlePromptText(ctx, ev, st)
		return true
	}
	return false
}

func (r *Router) handleLabel(ctx context.Context, ev bus.InboundEvent) bool {
	switch ev.Text {
	case presenter.LabelWeather:
		r.handleWeatherMenu(ctx, ev)
	case presenter.LabelEnterCity:
		r.handleEnterCity(ctx, ev)
	case presenter.LabelLocateMe:
		r.handleLocateMe(ctx, ev)
	case presenter.LabelModels:
		r.handleModelsMenu(ctx, ev)
	case presenter.LabelConverter:
		r.handleConverterInfo(ctx, ev)
	case presenter.LabelBack, presenter.LabelCancel:
		r.handleBack(ctx, ev)
	default:
		if _, ok := r.Catalog.Lookup(ev.Text); !ok {
			return false
		}
		r.handleModelChosen(ctx, ev)
	}
	return true
}
