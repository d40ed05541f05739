package interfaces

import "context"

// IncomingMessage is one inbound chat message from the transport.
type IncomingMessage struct {
	ChatID string
	UserID string
	Text   string
}

// ChatTransport is the external message-delivery collaborator (Telegram,
// webhook, CLI, ...). Command routing, webhook vs. polling selection, and
// menu text live behind this boundary and are out of scope here.
type ChatTransport interface {
	// Send delivers a text reply to the given chat.
	Send(ctx context.Context, chatID, text string) error
}

// ChatService handles inbound messages: quota enforcement, pipeline
// invocation, and reply formatting.
type ChatService interface {
	HandleMessage(ctx context.Context, msg IncomingMessage) error
}
