package handlers

import (
	"encoding/json"
	"net/http"

	"pichasafi/internal/wa"
)

// VerifyWebhook answers Meta's subscription handshake. The challenge echoes
// back as plain text only when the token matches; everything else is a 403.
func (a *App) VerifyWebhook(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode == "subscribe" && token != "" && token == a.VerifyToken {
		a.Logger.Info().Msg("webhook verified")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(challenge))
		return
	}
	a.Logger.Warn().Str("mode", mode).Msg("webhook verification rejected")
	w.WriteHeader(http.StatusForbidden)
}

// ReceiveWebhook ingests one webhook delivery. It always answers 200 so the
// platform never re-delivers a message we already attempted; anything that
// goes wrong downstream is logged and dropped here.
func (a *App) ReceiveWebhook(w http.ResponseWriter, r *http.Request) {
	var payload wa.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		a.Logger.Warn().Err(err).Msg("undecodable webhook payload")
		a.json(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	in, ok := payload.FirstMessage()
	if !ok {
		// Status receipts and other non-message deliveries land here.
		a.json(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	if err := a.Dispatcher.Dispatch(r.Context(), in); err != nil {
		a.Logger.Error().Err(err).
			Str("phone", in.Phone).
			Str("message_id", in.MessageID).
			Msg("webhook processing failed")
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
