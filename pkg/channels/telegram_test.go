package channels

import (
	"testing"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyland-inc/pocketbot/pkg/bus"
	"github.com/tinyland-inc/pocketbot/pkg/presenter"
)

func baseMessage() *telego.Message {
	return &telego.Message{
		MessageID: 77,
		Chat:      telego.Chat{ID: 1001, Type: "private"},
		From:      &telego.User{ID: 1001, FirstName: "Ana"},
	}
}

func TestEventFromMessage_Text(t *testing.T) {
	msg := baseMessage()
	msg.Text = "Weather"

	ev, ok := eventFromMessage(msg)
	require.True(t, ok)
	assert.Equal(t, bus.KindText, ev.Kind)
	assert.Equal(t, "1001", ev.ConversationID)
	assert.Equal(t, "1001", ev.SenderID)
	assert.Equal(t, "Ana", ev.SenderName)
	assert.Equal(t, "77", ev.MessageID)
	assert.Equal(t, "Weather", ev.Text)
}

func TestEventFromMessage_Command(t *testing.T) {
	for _, text := range []string{"/start", "/start@pocket_bot", "/START payload"} {
		msg := baseMessage()
		msg.Text = text

		ev, ok := eventFromMessage(msg)
		require.True(t, ok, text)
		assert.Equal(t, bus.KindCommand, ev.Kind, text)
		assert.Equal(t, "start", ev.Command, text)
	}
}

func TestEventFromMessage_BareSlashIsDropped(t *testing.T) {
	msg := baseMessage()
	msg.Text = "/"

	_, ok := eventFromMessage(msg)
	assert.False(t, ok)
}

func TestEventFromMessage_Location(t *testing.T) {
	msg := baseMessage()
	msg.Location = &telego.Location{Latitude: 45.76, Longitude: 4.83}

	ev, ok := eventFromMessage(msg)
	require.True(t, ok)
	assert.Equal(t, bus.KindLocation, ev.Kind)
	assert.Equal(t, &bus.Location{Latitude: 45.76, Longitude: 4.83}, ev.Location)
}

func TestEventFromMessage_Document(t *testing.T) {
	msg := baseMessage()
	msg.Document = &telego.Document{FileID: "BQAC", FileName: "report.docx", FileSize: 2048}

	ev, ok := eventFromMessage(msg)
	require.True(t, ok)
	assert.Equal(t, bus.KindDocument, ev.Kind)
	assert.Equal(t, &bus.Document{FileName: "report.docx", FileID: "BQAC", Size: 2048}, ev.Document)
}

func TestEventFromMessage_Unhandled(t *testing.T) {
	_, ok := eventFromMessage(baseMessage())
	assert.False(t, ok, "a message without text, location or document is dropped")

	msg := baseMessage()
	msg.From = nil
	msg.Text = "hi"
	_, ok = eventFromMessage(msg)
	assert.False(t, ok, "channel posts have no sender")
}

func TestReplyMarkup(t *testing.T) {
	assert.Nil(t, replyMarkup(nil))

	remove, ok := replyMarkup(presenter.RemoveKeyboard()).(*telego.ReplyKeyboardRemove)
	require.True(t, ok)
	assert.True(t, remove.RemoveKeyboard)

	markup, ok := replyMarkup(presenter.LocationMenu()).(*telego.ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.True(t, markup.ResizeKeyboard)
	assert.True(t, markup.OneTimeKeyboard)
	require.Len(t, markup.Keyboard, 2)
	assert.Equal(t, telego.KeyboardButton{Text: presenter.LabelSendLoc, RequestLocation: true}, markup.Keyboard[0][0])
	assert.Equal(t, presenter.LabelCancel, markup.Keyboard[1][0].Text)
}

func TestParseChatID(t *testing.T) {
	id, err := parseChatID("-100123")
	require.NoError(t, err)
	assert.Equal(t, int64(-100123), id)

	_, err = parseChatID("console")
	assert.Error(t, err)
}
