package wa

import "strings"

// MessageType classifies a normalized inbound message.
type MessageType string

const (
	TypeText        MessageType = "text"
	TypeImage       MessageType = "image"
	TypeInteractive MessageType = "interactive"
	TypeUnsupported MessageType = "unsupported"
)

// WebhookPayload mirrors the Cloud API message-event schema. Only the fields
// the router reads are declared; everything else is dropped on decode.
type WebhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []InboundRaw `json:"messages"`
				Statuses []struct {
					Status string `json:"status"`
				} `json:"statuses"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// InboundRaw is a single wire-format message before normalization.
type InboundRaw struct {
	From string `json:"from"`
	ID   string `json:"id"`
	Type string `json:"type"`
	Text *struct {
		Body string `json:"body"`
	} `json:"text"`
	Image *struct {
		ID      string `json:"id"`
		Caption string `json:"caption"`
	} `json:"image"`
	Interactive *struct {
		Type        string `json:"type"`
		ButtonReply *struct {
			ID string `json:"id"`
		} `json:"button_reply"`
		ListReply *struct {
			ID string `json:"id"`
		} `json:"list_reply"`
	} `json:"interactive"`
}

// Inbound is the normalized event handed to the dispatcher.
type Inbound struct {
	Phone     string
	MessageID string
	Type      MessageType
	Body      string
	MediaID   string
	Caption   string

	// RawType keeps the provider's original type string for logging when
	// Type is TypeUnsupported.
	RawType string
}

// FirstMessage extracts and normalizes the first message of the payload.
// It returns false for status callbacks and empty deliveries, which the
// webhook treats as a silent no-op.
func (p *WebhookPayload) FirstMessage() (Inbound, bool) {
	if p == nil || len(p.Entry) == 0 || len(p.Entry[0].Changes) == 0 {
		return Inbound{}, false
	}
	messages := p.Entry[0].Changes[0].Value.Messages
	if len(messages) == 0 {
		return Inbound{}, false
	}
	return normalize(messages[0]), true
}

func normalize(raw InboundRaw) Inbound {
	in := Inbound{
		Phone:     raw.From,
		MessageID: raw.ID,
		RawType:   raw.Type,
	}

	switch raw.Type {
	case "text":
		if raw.Text != nil {
			in.Type = TypeText
			in.Body = raw.Text.Body
			return in
		}
	case "image":
		if raw.Image != nil {
			in.Type = TypeImage
			in.MediaID = raw.Image.ID
			in.Caption = raw.Image.Caption
			return in
		}
	case "interactive":
		if raw.Interactive != nil {
			switch raw.Interactive.Type {
			case "button_reply":
				if raw.Interactive.ButtonReply != nil {
					in.Type = TypeInteractive
					in.Body = raw.Interactive.ButtonReply.ID
					return in
				}
			case "list_reply":
				if raw.Interactive.ListReply != nil {
					in.Type = TypeInteractive
					in.Body = raw.Interactive.ListReply.ID
					return in
				}
			}
		}
	}

	// Video, audio, document, sticker, location, unknown interactive
	// subtypes: the router answers with a static notice.
	in.Type = TypeUnsupported
	return in
}

// TrimmedBody returns the message body with surrounding whitespace removed.
func (in Inbound) TrimmedBody() string {
	return strings.TrimSpace(in.Body)
}
