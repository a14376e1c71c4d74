package channels

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/chzyer/readline"

	"github.com/tinyland-inc/pocketbot/pkg/bus"
	"github.com/tinyland-inc/pocketbot/pkg/logger"
	"github.com/tinyland-inc/pocketbot/pkg/presenter"
)

const ConsoleConversationID = "console"

type ConsoleConfig struct {
	// SenderID is stamped on every event, normally the authorized user id.
	SenderID   string
	SenderName string
	// OutputDir receives converted files.
	OutputDir   string
	HistoryFile string
}

// ConsoleChannel drives the bot from a local terminal. Besides plain text it
// understands "/loc <lat> <lon>" and "/file <path>".
type ConsoleChannel struct {
	*BaseChannel
	cfg    ConsoleConfig
	out    io.Writer
	outMu  sync.Mutex
	nextID atomic.Int64
	rl     *readline.Instance
	done   chan struct{}
}

func NewConsoleChannel(cfg ConsoleConfig, publisher Publisher) *ConsoleChannel {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	return &ConsoleChannel{
		BaseChannel: NewBaseChannel("console", publisher),
		cfg:         cfg,
		out:         os.Stdout,
		done:        make(chan struct{}),
	}
}

// Done is closed when the user leaves the console.
func (c *ConsoleChannel) Done() <-chan struct{} {
	return c.done
}

func (c *ConsoleChannel) Start(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "you> ",
		HistoryFile:     c.cfg.HistoryFile,
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialise readline: %w", err)
	}
	c.rl = rl
	c.out = rl.Stdout()
	c.SetRunning(true)

	go c.readLoop(ctx)
	return nil
}

func (c *ConsoleChannel) readLoop(ctx context.Context) {
	defer close(c.done)
	for ctx.Err() == nil {
		line, err := c.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return
			}
			logger.WarnCF("console", "Error reading input", map[string]any{"error": err.Error()})
			continue
		}

		input := strings.TrimSpace(line)
		if input == "exit" || input == "quit" {
			return
		}
		ev, ok := parseConsoleLine(input, c.cfg.SenderID)
		if !ok {
			continue
		}
		ev.SenderName = c.cfg.SenderName
		c.HandleEvent(ev)
	}
}

func (c *ConsoleChannel) Stop(context.Context) error {
	c.SetRunning(false)
	if c.rl != nil {
		return c.rl.Close()
	}
	return nil
}

func (c *ConsoleChannel) SendText(_ context.Context, conversationID, text string, kb *presenter.Keyboard) (presenter.MessageRef, error) {
	id := int(c.nextID.Add(1))
	c.printf("bot> %s\n", text)
	if keys := renderKeyboard(kb); keys != "" {
		c.printf("     %s\n", keys)
	}
	return presenter.MessageRef{ConversationID: conversationID, MessageID: id}, nil
}

func (c *ConsoleChannel) SendFile(_ context.Context, _, path, name string) error {
	dest := filepath.Join(c.cfg.OutputDir, name)
	if err := copyFile(path, dest); err != nil {
		return err
	}
	c.printf("bot> [file saved to %s]\n", dest)
	return nil
}

func (c *ConsoleChannel) DeleteMessage(_ context.Context, ref presenter.MessageRef) error {
	logger.DebugCF("console", "Message retracted", map[string]any{"message_id": ref.MessageID})
	return nil
}

// Fetch copies a local file; console documents carry their path as FileID.
func (c *ConsoleChannel) Fetch(_ context.Context, doc bus.Document, destPath string) error {
	return copyFile(doc.FileID, destPath)
}

func (c *ConsoleChannel) printf(format string, args ...any) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func parseConsoleLine(input, sender string) (bus.InboundEvent, bool) {
	if input == "" {
		return bus.InboundEvent{}, false
	}
	conv := ConsoleConversationID

	if !strings.HasPrefix(input, "/") {
		return bus.TextEvent(conv, sender, input), true
	}

	name, ok := parseCommand(input)
	if !ok {
		return bus.InboundEvent{}, false
	}
	_, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case "loc":
		fields := strings.Fields(rest)
		if len(fields) != 2 {
			return bus.InboundEvent{}, false
		}
		lat, err1 := strconv.ParseFloat(fields[0], 64)
		lon, err2 := strconv.ParseFloat(fields[1], 64)
		if err1 != nil || err2 != nil {
			return bus.InboundEvent{}, false
		}
		return bus.LocationEvent(conv, sender, lat, lon), true
	case "file":
		if rest == "" {
			return bus.InboundEvent{}, false
		}
		return bus.DocumentEvent(conv, sender, filepath.Base(rest), rest), true
	default:
		ev := bus.CommandEvent(conv, sender, name)
		ev.Text = input
		return ev, true
	}
}

func renderKeyboard(kb *presenter.Keyboard) string {
	if kb == nil || kb.Remove {
		return ""
	}
	rows := make([]string, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		var sb strings.Builder
		for i, b := range row {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString("[" + b.Text + "]")
		}
		rows = append(rows, sb.String())
	}
	return strings.Join(rows, " | ")
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	return out.Close()
}
