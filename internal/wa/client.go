package wa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"pichasafi/internal/infra"
)

// ErrMissingAccessToken indicates that the client was configured without credentials.
var ErrMissingAccessToken = errors.New("wa: access token is required")

const maxMediaBytes = 16 << 20 // Cloud API image cap

// Options configures the WhatsApp Cloud API client.
type Options struct {
	AccessToken    string
	BaseURL        string
	PhoneNumberID  string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the WhatsApp Cloud API (Graph API).
type Client struct {
	accessToken   string
	baseURL       string
	phoneNumberID string
	httpClient    *http.Client
	logger        *infra.Logger
}

// Button is a single reply button; the Cloud API allows at most three.
type Button struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ListRow is one selectable row of an interactive list section.
type ListRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ListSection groups rows of an interactive list message.
type ListSection struct {
	Title string    `json:"title,omitempty"`
	Rows  []ListRow `json:"rows"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

type mediaLookupResponse struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://graph.facebook.com/v21.0"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		accessToken:   strings.TrimSpace(opts.AccessToken),
		baseURL:       baseURL,
		phoneNumberID: strings.TrimSpace(opts.PhoneNumberID),
		httpClient:    httpClient,
		logger:        logger,
	}, nil
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.accessToken != ""
}

// SendText sends a plain text message.
func (c *Client) SendText(ctx context.Context, to, text string) error {
	return c.send(ctx, map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text":              map[string]string{"body": text},
	})
}

// SendImage sends an image by public URL with an optional caption.
func (c *Client) SendImage(ctx context.Context, to, imageURL, caption string) error {
	image := map[string]string{"link": imageURL}
	if caption != "" {
		image["caption"] = caption
	}
	return c.send(ctx, map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "image",
		"image":             image,
	})
}

// SendButtons sends an interactive reply-button message. Buttons beyond the
// Cloud API cap of three are dropped.
func (c *Client) SendButtons(ctx context.Context, to, bodyText string, buttons []Button) error {
	if len(buttons) > 3 {
		buttons = buttons[:3]
	}
	replies := make([]map[string]any, 0, len(buttons))
	for _, btn := range buttons {
		replies = append(replies, map[string]any{"type": "reply", "reply": btn})
	}
	return c.send(ctx, map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "interactive",
		"interactive": map[string]any{
			"type":   "button",
			"body":   map[string]string{"text": bodyText},
			"action": map[string]any{"buttons": replies},
		},
	})
}

// SendList sends an interactive list message for menus and selections.
func (c *Client) SendList(ctx context.Context, to, bodyText, buttonText string, sections []ListSection) error {
	return c.send(ctx, map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "interactive",
		"interactive": map[string]any{
			"type":   "list",
			"body":   map[string]string{"text": bodyText},
			"action": map[string]any{"button": buttonText, "sections": sections},
		},
	})
}

// MarkAsRead marks an incoming message as read (blue ticks).
func (c *Client) MarkAsRead(ctx context.Context, messageID string) error {
	return c.send(ctx, map[string]any{
		"messaging_product": "whatsapp",
		"status":            "read",
		"message_id":        messageID,
	})
}

// DownloadMedia fetches media bytes in the Cloud API's two-step scheme:
// the media id is first exchanged for a short-lived URL, then the binary is
// fetched from that URL with the same bearer token.
func (c *Client) DownloadMedia(ctx context.Context, mediaID string) ([]byte, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAccessToken
	}

	lookupURL := fmt.Sprintf("%s/%s", c.baseURL, mediaID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, fmt.Errorf("wa: build media lookup: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wa: media lookup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wa: media lookup status %d: %s", resp.StatusCode, readErrorMessage(resp.Body))
	}

	var lookup mediaLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&lookup); err != nil {
		return nil, fmt.Errorf("wa: decode media lookup: %w", err)
	}
	if lookup.URL == "" {
		return nil, errors.New("wa: media lookup returned no url")
	}

	binReq, err := http.NewRequestWithContext(ctx, http.MethodGet, lookup.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("wa: build media download: %w", err)
	}
	binReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	binResp, err := c.httpClient.Do(binReq)
	if err != nil {
		return nil, fmt.Errorf("wa: media download: %w", err)
	}
	defer binResp.Body.Close()
	if binResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wa: media download status %d", binResp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(binResp.Body, maxMediaBytes+1))
	if err != nil {
		return nil, fmt.Errorf("wa: read media body: %w", err)
	}
	if len(data) > maxMediaBytes {
		return nil, fmt.Errorf("wa: media exceeds %d bytes", maxMediaBytes)
	}

	c.logger.Debug().Str("media_id", mediaID).Int("bytes", len(data)).Msg("media downloaded")
	return data, nil
}

func (c *Client) send(ctx context.Context, payload map[string]any) error {
	if !c.HasCredentials() {
		return ErrMissingAccessToken
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("wa: encode request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("wa: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("wa: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := readErrorMessage(resp.Body)
		c.logger.Error().Int("status", resp.StatusCode).Str("error", msg).Msg("whatsapp api error")
		return fmt.Errorf("wa: api status %d: %s", resp.StatusCode, msg)
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return "unknown error"
	}
	var apiErr apiError
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	return strings.TrimSpace(string(raw))
}
