package wa

import (
	"encoding/json"
	"testing"
)

func decodePayload(t *testing.T, raw string) *WebhookPayload {
	t.Helper()
	var p WebhookPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	return &p
}

func TestFirstMessageEmptyPayload(t *testing.T) {
	p := decodePayload(t, `{}`)
	if _, ok := p.FirstMessage(); ok {
		t.Fatal("expected no message for empty payload")
	}
}

func TestFirstMessageStatusCallback(t *testing.T) {
	p := decodePayload(t, `{
		"entry": [{"changes": [{"value": {"statuses": [{"status": "delivered"}]}}]}]
	}`)
	if _, ok := p.FirstMessage(); ok {
		t.Fatal("expected no message for status callback")
	}
}

func TestFirstMessageText(t *testing.T) {
	p := decodePayload(t, `{
		"entry": [{"changes": [{"value": {"messages": [
			{"from": "255712345678", "id": "msg_001", "type": "text", "text": {"body": "  Hello "}}
		]}}]}]
	}`)
	in, ok := p.FirstMessage()
	if !ok {
		t.Fatal("expected a message")
	}
	if in.Type != TypeText || in.Phone != "255712345678" || in.MessageID != "msg_001" {
		t.Fatalf("unexpected normalization: %+v", in)
	}
	if in.Body != "  Hello " {
		t.Fatalf("body = %q, want raw body preserved", in.Body)
	}
	if in.TrimmedBody() != "Hello" {
		t.Fatalf("trimmed body = %q", in.TrimmedBody())
	}
}

func TestFirstMessageImage(t *testing.T) {
	p := decodePayload(t, `{
		"entry": [{"changes": [{"value": {"messages": [
			{"from": "255712345678", "id": "msg_002", "type": "image", "image": {"id": "media_9", "caption": "my product"}}
		]}}]}]
	}`)
	in, ok := p.FirstMessage()
	if !ok {
		t.Fatal("expected a message")
	}
	if in.Type != TypeImage || in.MediaID != "media_9" || in.Caption != "my product" {
		t.Fatalf("unexpected normalization: %+v", in)
	}
}

func TestFirstMessageInteractiveButton(t *testing.T) {
	p := decodePayload(t, `{
		"entry": [{"changes": [{"value": {"messages": [
			{"from": "255712345678", "id": "msg_003", "type": "interactive",
			 "interactive": {"type": "button_reply", "button_reply": {"id": "btn_upgrade"}}}
		]}}]}]
	}`)
	in, _ := p.FirstMessage()
	if in.Type != TypeInteractive || in.Body != "btn_upgrade" {
		t.Fatalf("unexpected normalization: %+v", in)
	}
}

func TestFirstMessageInteractiveList(t *testing.T) {
	p := decodePayload(t, `{
		"entry": [{"changes": [{"value": {"messages": [
			{"from": "255712345678", "id": "msg_004", "type": "interactive",
			 "interactive": {"type": "list_reply", "list_reply": {"id": "row_starter"}}}
		]}}]}]
	}`)
	in, _ := p.FirstMessage()
	if in.Type != TypeInteractive || in.Body != "row_starter" {
		t.Fatalf("unexpected normalization: %+v", in)
	}
}

func TestFirstMessageUnsupportedTypes(t *testing.T) {
	cases := []string{
		`{"from": "1", "id": "m", "type": "video"}`,
		`{"from": "1", "id": "m", "type": "audio"}`,
		`{"from": "1", "id": "m", "type": "sticker"}`,
		`{"from": "1", "id": "m", "type": "interactive", "interactive": {"type": "nfm_reply"}}`,
	}
	for _, msg := range cases {
		p := decodePayload(t, `{"entry": [{"changes": [{"value": {"messages": [`+msg+`]}}]}]}`)
		in, ok := p.FirstMessage()
		if !ok {
			t.Fatalf("expected a message for %s", msg)
		}
		if in.Type != TypeUnsupported {
			t.Fatalf("type = %q for %s, want unsupported", in.Type, msg)
		}
	}
}

func TestFirstMessageTakesOnlyFirst(t *testing.T) {
	p := decodePayload(t, `{
		"entry": [{"changes": [{"value": {"messages": [
			{"from": "1", "id": "m1", "type": "text", "text": {"body": "first"}},
			{"from": "2", "id": "m2", "type": "text", "text": {"body": "second"}}
		]}}]}]
	}`)
	in, _ := p.FirstMessage()
	if in.MessageID != "m1" || in.Body != "first" {
		t.Fatalf("expected first message only, got %+v", in)
	}
}
