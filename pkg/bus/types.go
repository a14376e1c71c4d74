package bus

// EventKind tags the variant carried by an InboundEvent.
type EventKind string

const (
	KindCommand  EventKind = "command"
	KindText     EventKind = "text"
	KindLocation EventKind = "location"
	KindDocument EventKind = "document"
)

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Document references an uploaded file; FileID is resolved by the transport
// that produced the event.
type Document struct {
	FileName string `json:"file_name"`
	FileID   string `json:"file_id"`
	Size     int64  `json:"size,omitempty"`
}

// InboundEvent is one chat event, produced by a channel and consumed by the router.
// Exactly one of Command, Text, Location or Document is meaningful, selected by Kind.
type InboundEvent struct {
	Kind           EventKind `json:"kind"`
	Channel        string    `json:"channel"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	SenderName     string    `json:"sender_name,omitempty"`
	MessageID      string    `json:"message_id,omitempty"`

	Command  string    `json:"command,omitempty"` // without the leading "/"
	Text     string    `json:"text,omitempty"`
	Location *Location `json:"location,omitempty"`
	Document *Document `json:"document,omitempty"`
}

func CommandEvent(conversationID, senderID, name string) InboundEvent {
	return InboundEvent{Kind: KindCommand, ConversationID: conversationID, SenderID: senderID, Command: name}
}

func TextEvent(conversationID, senderID, text string) InboundEvent {
	return InboundEvent{Kind: KindText, ConversationID: conversationID, SenderID: senderID, Text: text}
}

func LocationEvent(conversationID, senderID string, lat, lon float64) InboundEvent {
	return InboundEvent{
		Kind:           KindLocation,
		ConversationID: conversationID,
		SenderID:       senderID,
		Location:       &Location{Latitude: lat, Longitude: lon},
	}
}

func DocumentEvent(conversationID, senderID, fileName, fileID string) InboundEvent {
	return InboundEvent{
		Kind:           KindDocument,
		ConversationID: conversationID,
		SenderID:       senderID,
		Document:       &Document{FileName: fileName, FileID: fileID},
	}
}
