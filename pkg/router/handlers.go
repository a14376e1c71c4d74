package router

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/tinyland-inc/pocketbot/pkg/bus"
	"github.com/tinyland-inc/pocketbot/pkg/geocode"
	"github.com/tinyland-inc/pocketbot/pkg/logger"
	"github.com/tinyland-inc/pocketbot/pkg/presenter"
	"github.com/tinyland-inc/pocketbot/pkg/state"
)

const minCityRunes = 2

func (r *Router) reply(ctx context.Context, ev bus.InboundEvent, text string, kb *presenter.Keyboard) {
	_ = r.Presenter.Reply(ctx, ev.ConversationID, text, kb)
}

func (r *Router) handleStart(ctx context.Context, ev bus.InboundEvent) {
	r.Store.Clear(ev.ConversationID)
	r.reply(ctx, ev, presenter.Greeting(ev.SenderName), presenter.MainMenu())
}

func (r *Router) handleBack(ctx context.Context, ev bus.InboundEvent) {
	r.Store.Clear(ev.ConversationID)
	r.reply(ctx, ev, presenter.MsgMainMenu, presenter.MainMenu())
}

func (r *Router) handleWeatherMenu(ctx context.Context, ev bus.InboundEvent) {
	r.reply(ctx, ev, presenter.MsgWeatherHow, presenter.WeatherMenu())
}

func (r *Router) handleEnterCity(ctx context.Context, ev bus.InboundEvent) {
	r.Store.SetTag(ev.ConversationID, state.AwaitingCityText)
	r.reply(ctx, ev, presenter.MsgAskCity, presenter.RemoveKeyboard())
}

func (r *Router) handleLocateMe(ctx context.Context, ev bus.InboundEvent) {
	r.Store.SetTag(ev.ConversationID, state.AwaitingLocation)
	r.reply(ctx, ev, presenter.MsgAskLocation, presenter.LocationMenu())
}

func (r *Router) handleModelsMenu(ctx context.Context, ev bus.InboundEvent) {
	r.reply(ctx, ev, presenter.MsgChooseModel, presenter.ModelsMenu(r.Catalog.Labels()))
}

func (r *Router) handleConverterInfo(ctx context.Context, ev bus.InboundEvent) {
	r.Store.Clear(ev.ConversationID)
	r.reply(ctx, ev, presenter.MsgConverterHelp, presenter.RemoveKeyboard())
}

func (r *Router) handleModelChosen(ctx context.Context, ev bus.InboundEvent) {
	modelID, ok := r.Catalog.Lookup(ev.Text)
	if !ok {
		return
	}
	r.Store.Update(ev.ConversationID, map[string]string{state.KeyModel: modelID})
	r.Store.SetTag(ev.ConversationID, state.AwaitingPrompt)
	r.reply(ctx, ev, presenter.ModelSelected(ev.Text), presenter.RemoveKeyboard())
}

func (r *Router) handleCityText(ctx context.Context, ev bus.InboundEvent) {
	if presenter.IsCancel(ev.Text) {
		r.handleBack(ctx, ev)
		return
	}

	city := strings.TrimSpace(ev.Text)
	switch {
	case city == "":
		r.reply(ctx, ev, presenter.MsgEmptyText, nil)
		return
	case utf8.RuneCountInString(city) < minCityRunes:
		r.reply(ctx, ev, presenter.MsgTooShort, nil)
		return
	}

	r.answerWeather(ctx, ev, city)
	r.Store.Clear(ev.ConversationID)
}

func (r *Router) handleLocation(ctx context.Context, ev bus.InboundEvent) {
	ind := r.Presenter.ShowWorking(ctx, ev.ConversationID, presenter.WorkingLocating)
	defer ind.Retract(ctx)

	place, err := r.Geocoder.Reverse(ctx, ev.Location.Latitude, ev.Location.Longitude)
	if err != nil {
		logger.WarnCF("router", "Reverse geocoding failed", map[string]any{
			"conversation": ev.ConversationID,
			"error":        err.Error(),
		})
		place = geocode.UnknownArea
	}

	r.answerWeather(ctx, ev, place)
	r.Store.Clear(ev.ConversationID)
}

func (r *Router) answerWeather(ctx context.Context, ev bus.InboundEvent, place string) {
	ind := r.Presenter.ShowWorking(ctx, ev.ConversationID, presenter.WorkingWeather(place))
	defer ind.Retract(ctx)

	text := r.generate(ctx, ev, r.DefaultModel, WeatherPrompt(place))
	ind.Retract(ctx)
	r.reply(ctx, ev, text, presenter.MainMenu())
}

func (r *Router) handlePromptText(ctx context.Context, ev bus.InboundEvent, st state.State) {
	if presenter.IsCancel(ev.Text) {
		r.handleBack(ctx, ev)
		return
	}
	if _, ok := r.Catalog.Lookup(ev.Text); ok {
		r.handleModelChosen(ctx, ev)
		return
	}

	model := st.Data[state.KeyModel]
	if model == "" {
		model = r.DefaultModel
	}
	r.answerQuestion(ctx, ev, model, presenter.RemoveKeyboard())
}

func (r *Router) handleFreeText(ctx context.Context, ev bus.InboundEvent) {
	r.answerQuestion(ctx, ev, r.DefaultModel, presenter.MainMenu())
}

func (r *Router) answerQuestion(ctx context.Context, ev bus.InboundEvent, model string, kb *presenter.Keyboard) {
	ind := r.Presenter.ShowWorking(ctx, ev.ConversationID, presenter.WorkingThinking)
	defer ind.Retract(ctx)

	text := r.generate(ctx, ev, model, GeneralPrompt(ev.Text))
	ind.Retract(ctx)
	r.reply(ctx, ev, text, kb)
}

// generate returns the model answer or the user-facing rendering of its error.
func (r *Router) generate(ctx context.Context, ev bus.InboundEvent, model, prompt string) string {
	text, err := r.Generator.Generate(ctx, model, prompt)
	if err != nil {
		logger.WarnCF("router", "Generation failed", map[string]any{
			"conversation": ev.ConversationID,
			"model":        model,
			"error":        err.Error(),
		})
		return presenter.GatewayErrorText(err)
	}
	return text
}
