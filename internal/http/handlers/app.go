package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"pichasafi/internal/infra"
	"pichasafi/internal/wa"
)

// MessageDispatcher handles one normalized inbound message.
type MessageDispatcher interface {
	Dispatch(ctx context.Context, in wa.Inbound) error
}

type App struct {
	Dispatcher  MessageDispatcher
	VerifyToken string
	Logger      infra.Logger
}

func NewApp(dispatcher MessageDispatcher, verifyToken string, logger infra.Logger) *App {
	return &App{Dispatcher: dispatcher, VerifyToken: verifyToken, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
