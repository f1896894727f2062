package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"uasfleet/hangar/internal/auth"
	"uasfleet/hangar/internal/common"
	"uasfleet/hangar/internal/models/dtos"
)

// RequestLinkCodeHandler handles POST /telegram/link-code
//
// Issues a short-lived single-use code the pilot types at the Telegram bot.
func (h *Handlers) RequestLinkCodeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetPilotClaims(r.Context())
		if claims == nil || claims.PilotID() == "" {
			common.RespondError(w, initTime, nil, "Unauthorized", http.StatusUnauthorized)
			return
		}

		code, err := h.deps.Services.Telegram.GenerateCode(r.Context(), identityFromClaims(claims))
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		h.deps.Metrics.LinkCodesIssuedTotal.Inc()
		common.RespondSuccess(w, initTime, "Link code generated", code)
	}
}

// CompleteLinkHandler handles POST /telegram/link
//
// Called by the Telegram bot backend, gated by a shared secret rather than
// pilot credentials.
func (h *Handlers) CompleteLinkHandler() http.HandlerFunc {
	botSecret := os.Getenv("TELEGRAM_BOT_SECRET")

	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.CompleteTelegramLinkReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, nil, "Invalid request body", http.StatusBadRequest)
			return
		}

		if botSecret == "" || subtle.ConstantTimeCompare([]byte(req.BotSecret), []byte(botSecret)) != 1 {
			common.RespondError(w, initTime, nil, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if req.Code == "" || req.TelegramChatID == 0 {
			common.RespondError(w, initTime, nil, "code and telegram_chat_id are required", http.StatusBadRequest)
			return
		}

		if err := h.deps.Services.Telegram.CompleteLink(r.Context(), req.Code, req.TelegramChatID, req.TelegramUsername); err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Telegram account linked", nil)
	}
}
