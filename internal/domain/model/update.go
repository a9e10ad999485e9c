package model

// UpdateKind tags the closed set of inbound update shapes the bot acts on.
type UpdateKind string

const (
	UpdateMessageText  UpdateKind = "message_text"
	UpdateMessagePhoto UpdateKind = "message_photo"
	UpdateInlineQuery  UpdateKind = "inline_query"
	UpdateEdited       UpdateKind = "edited_message"
	UpdateUnknown      UpdateKind = "unknown"
)

// Update is one classified inbound event. Only the fields for its kind are
// set; it lives for the duration of a single dispatch call.
type Update struct {
	Kind UpdateKind

	ChatID int64
	UserID int64

	// Text carries the message text for UpdateMessageText, commands included.
	Text string

	// PhotoFileID is the highest-resolution photo variant for UpdateMessagePhoto.
	PhotoFileID string

	// QueryID and Query are set for UpdateInlineQuery.
	QueryID string
	Query   string
}
