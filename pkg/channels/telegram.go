package channels

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/tinyland-inc/pocketbot/pkg/bus"
	"github.com/tinyland-inc/pocketbot/pkg/config"
	"github.com/tinyland-inc/pocketbot/pkg/logger"
	"github.com/tinyland-inc/pocketbot/pkg/presenter"
)

const defaultPollTimeout = 30

type TelegramChannel struct {
	*BaseChannel
	bot         *telego.Bot
	downloader  *resty.Client
	cancel      context.CancelFunc
	done        chan struct{}
	pollTimeout int
}

func NewTelegramChannel(cfg config.TelegramConfig, publisher Publisher) (*TelegramChannel, error) {
	var opts []telego.BotOption
	httpClient := &http.Client{}

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", cfg.Proxy, err)
		}
		httpClient.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		opts = append(opts, telego.WithHTTPClient(httpClient))
	}
	opts = append(opts, telego.WithLogger(telegoLogger{}))

	bot, err := telego.NewBot(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	pollTimeout := cfg.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = defaultPollTimeout
	}

	return &TelegramChannel{
		BaseChannel: NewBaseChannel("telegram", publisher),
		bot:         bot,
		downloader:  resty.NewWithClient(httpClient).SetTimeout(2 * time.Minute),
		pollTimeout: pollTimeout,
	}, nil
}

func (c *TelegramChannel) Start(ctx context.Context) error {
	logger.InfoC("telegram", "Starting Telegram bot (polling mode)...")

	pollCtx, cancel := context.WithCancel(ctx)
	updates, err := c.bot.UpdatesViaLongPolling(pollCtx, &telego.GetUpdatesParams{
		Timeout: c.pollTimeout,
	})
	if err != nil {
		cancel()
		return fmt.Errorf("failed to start long polling: %w", err)
	}

	c.cancel = cancel
	c.done = make(chan struct{})
	c.SetRunning(true)

	if me, err := c.bot.GetMe(ctx); err == nil {
		logger.InfoCF("telegram", "Telegram bot connected", map[string]any{
			"username": me.Username,
		})
	}

	go func() {
		defer close(c.done)
		for update := range updates {
			if update.Message == nil {
				continue
			}
			if ev, ok := eventFromMessage(update.Message); ok {
				c.HandleEvent(ev)
			}
		}
	}()

	return nil
}

func (c *TelegramChannel) Stop(ctx context.Context) error {
	logger.InfoC("telegram", "Stopping Telegram bot...")
	c.SetRunning(false)
	if c.cancel == nil {
		return nil
	}
	c.cancel()

	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *TelegramChannel) SendText(ctx context.Context, conversationID, text string, kb *presenter.Keyboard) (presenter.MessageRef, error) {
	chatID, err := parseChatID(conversationID)
	if err != nil {
		return presenter.MessageRef{}, err
	}

	params := tu.Message(tu.ID(chatID), text)
	if markup := replyMarkup(kb); markup != nil {
		params.ReplyMarkup = markup
	}

	msg, err := c.bot.SendMessage(ctx, params)
	if err != nil {
		return presenter.MessageRef{}, fmt.Errorf("telegram send: %w", err)
	}
	return presenter.MessageRef{ConversationID: conversationID, MessageID: msg.MessageID}, nil
}

func (c *TelegramChannel) SendFile(ctx context.Context, conversationID, path, name string) error {
	chatID, err := parseChatID(conversationID)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	_, err = c.bot.SendDocument(ctx, tu.Document(tu.ID(chatID), tu.File(namedFile{File: f, name: name})))
	if err != nil {
		return fmt.Errorf("telegram send document: %w", err)
	}
	return nil
}

func (c *TelegramChannel) DeleteMessage(ctx context.Context, ref presenter.MessageRef) error {
	chatID, err := parseChatID(ref.ConversationID)
	if err != nil {
		return err
	}
	return c.bot.DeleteMessage(ctx, &telego.DeleteMessageParams{
		ChatID:    tu.ID(chatID),
		MessageID: ref.MessageID,
	})
}

// Fetch resolves the Telegram file id and downloads the content to destPath.
func (c *TelegramChannel) Fetch(ctx context.Context, doc bus.Document, destPath string) error {
	file, err := c.bot.GetFile(ctx, &telego.GetFileParams{FileID: doc.FileID})
	if err != nil {
		return fmt.Errorf("telegram get file: %w", err)
	}
	if file.FilePath == "" {
		return errors.New("telegram returned an empty file path")
	}

	resp, err := c.downloader.R().
		SetContext(ctx).
		SetOutput(destPath).
		Get(c.bot.FileDownloadURL(file.FilePath))
	if err != nil {
		return fmt.Errorf("download %s: %w", doc.FileName, err)
	}
	if resp.IsError() {
		_ = os.Remove(destPath)
		return fmt.Errorf("download %s: status %d", doc.FileName, resp.StatusCode())
	}

	logger.DebugCF("telegram", "Document downloaded", map[string]any{
		"file": doc.FileName,
		"size": resp.Size(),
	})
	return nil
}

// eventFromMessage converts a Telegram message into an inbound event. The
// second result is false for message kinds the bot does not handle.
func eventFromMessage(msg *telego.Message) (bus.InboundEvent, bool) {
	if msg.From == nil {
		return bus.InboundEvent{}, false
	}
	conv := strconv.FormatInt(msg.Chat.ID, 10)
	sender := strconv.FormatInt(msg.From.ID, 10)

	var ev bus.InboundEvent
	switch {
	case msg.Location != nil:
		ev = bus.LocationEvent(conv, sender, msg.Location.Latitude, msg.Location.Longitude)
	case msg.Document != nil:
		ev = bus.DocumentEvent(conv, sender, msg.Document.FileName, msg.Document.FileID)
		ev.Document.Size = msg.Document.FileSize
	case strings.HasPrefix(msg.Text, "/"):
		name, ok := parseCommand(msg.Text)
		if !ok {
			return bus.InboundEvent{}, false
		}
		ev = bus.CommandEvent(conv, sender, name)
		ev.Text = msg.Text
	case msg.Text != "":
		ev = bus.TextEvent(conv, sender, msg.Text)
	default:
		return bus.InboundEvent{}, false
	}

	ev.SenderName = msg.From.FirstName
	ev.MessageID = strconv.Itoa(msg.MessageID)
	return ev, true
}

// parseCommand extracts "start" from "/start", "/start@my_bot" or "/start payload".
func parseCommand(text string) (string, bool) {
	word, _, _ := strings.Cut(strings.TrimPrefix(text, "/"), " ")
	word, _, _ = strings.Cut(word, "@")
	word = strings.ToLower(strings.TrimSpace(word))
	return word, word != ""
}

func replyMarkup(kb *presenter.Keyboard) telego.ReplyMarkup {
	if kb == nil {
		return nil
	}
	if kb.Remove {
		return &telego.ReplyKeyboardRemove{RemoveKeyboard: true}
	}

	rows := make([][]telego.KeyboardButton, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		buttons := make([]telego.KeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, telego.KeyboardButton{Text: b.Text, RequestLocation: b.RequestLocation})
		}
		rows = append(rows, buttons)
	}
	return &telego.ReplyKeyboardMarkup{
		Keyboard:        rows,
		ResizeKeyboard:  true,
		OneTimeKeyboard: kb.OneTime,
	}
}

func parseChatID(conversationID string) (int64, error) {
	id, err := strconv.ParseInt(conversationID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid telegram chat id %q: %w", conversationID, err)
	}
	return id, nil
}

// namedFile uploads f under a chosen file name.
type namedFile struct {
	*os.File
	name string
}

func (n namedFile) Name() string { return n.name }

type telegoLogger struct{}

func (telegoLogger) Debugf(format string, args ...any) {
	logger.DebugC("telegram", fmt.Sprintf(format, args...))
}

func (telegoLogger) Errorf(format string, args ...any) {
	logger.ErrorC("telegram", fmt.Sprintf(format, args...))
}
