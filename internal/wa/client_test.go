package wa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(Options{
		AccessToken:   "test-token",
		BaseURL:       srv.URL,
		PhoneNumberID: "12345",
		HTTPClient:    srv.Client(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client, srv
}

func TestSendTextPayload(t *testing.T) {
	var got map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/12345/messages" {
			t.Errorf("path = %q, want /12345/messages", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
			t.Errorf("authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		fmt.Fprint(w, `{"messages": [{"id": "wamid.X"}]}`)
	}))

	if err := client.SendText(context.Background(), "255712345678", "habari"); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if got["messaging_product"] != "whatsapp" || got["type"] != "text" || got["to"] != "255712345678" {
		t.Fatalf("unexpected payload: %v", got)
	}
	text, _ := got["text"].(map[string]any)
	if text["body"] != "habari" {
		t.Fatalf("text body = %v", text["body"])
	}
}

func TestSendImageOmitsEmptyCaption(t *testing.T) {
	var got map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		fmt.Fprint(w, `{}`)
	}))

	if err := client.SendImage(context.Background(), "255712345678", "https://cdn.example.com/x.jpg", ""); err != nil {
		t.Fatalf("SendImage: %v", err)
	}
	image, _ := got["image"].(map[string]any)
	if image["link"] != "https://cdn.example.com/x.jpg" {
		t.Fatalf("image link = %v", image["link"])
	}
	if _, ok := image["caption"]; ok {
		t.Fatal("caption should be omitted when empty")
	}
}

func TestSendButtonsCapsAtThree(t *testing.T) {
	var got map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		fmt.Fprint(w, `{}`)
	}))

	buttons := []Button{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}, {ID: "c", Title: "C"}, {ID: "d", Title: "D"}}
	if err := client.SendButtons(context.Background(), "1", "pick", buttons); err != nil {
		t.Fatalf("SendButtons: %v", err)
	}
	interactive, _ := got["interactive"].(map[string]any)
	action, _ := interactive["action"].(map[string]any)
	sent, _ := action["buttons"].([]any)
	if len(sent) != 3 {
		t.Fatalf("buttons sent = %d, want 3", len(sent))
	}
}

func TestMarkAsReadPayload(t *testing.T) {
	var got map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		fmt.Fprint(w, `{}`)
	}))

	if err := client.MarkAsRead(context.Background(), "wamid.123"); err != nil {
		t.Fatalf("MarkAsRead: %v", err)
	}
	if got["status"] != "read" || got["message_id"] != "wamid.123" {
		t.Fatalf("unexpected payload: %v", got)
	}
}

func TestSendSurfacesAPIError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"message": "(#131030) Recipient phone number not in allowed list", "code": 131030}}`)
	}))

	err := client.SendText(context.Background(), "1", "x")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "131030") {
		t.Fatalf("error %v should carry the api message", err)
	}
}

func TestDownloadMediaTwoStep(t *testing.T) {
	payload := []byte{0xff, 0xd8, 0xff, 0xe0, 0x01, 0x02}
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/media_77", func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
			t.Errorf("lookup authorization = %q", auth)
		}
		fmt.Fprintf(w, `{"url": %q, "mime_type": "image/jpeg"}`, srv.URL+"/binary/media_77")
	})
	mux.HandleFunc("/binary/media_77", func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
			t.Errorf("download authorization = %q", auth)
		}
		_, _ = w.Write(payload)
	})

	client, s := newTestClient(t, mux)
	srv = s

	data, err := client.DownloadMedia(context.Background(), "media_77")
	if err != nil {
		t.Fatalf("DownloadMedia: %v", err)
	}
	if string(data) != string(payload) {
		t.Fatalf("downloaded %v, want %v", data, payload)
	}
}

func TestDownloadMediaMissingURL(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))

	if _, err := client.DownloadMedia(context.Background(), "media_0"); err == nil {
		t.Fatal("expected error when lookup returns no url")
	}
}

func TestClientWithoutCredentials(t *testing.T) {
	client, err := NewClient(Options{PhoneNumberID: "1"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if err := client.SendText(context.Background(), "1", "x"); err != ErrMissingAccessToken {
		t.Fatalf("err = %v, want ErrMissingAccessToken", err)
	}
	if _, err := client.DownloadMedia(context.Background(), "m"); err != ErrMissingAccessToken {
		t.Fatalf("err = %v, want ErrMissingAccessToken", err)
	}
}
