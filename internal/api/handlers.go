package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

type opsHandlers struct {
	deps ApiDependencies
}

// Health — простая проверка живости процесса.
func (h *opsHandlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pendingDraftView — представление черновика в ответе API.
// Данные приёмки наружу не отдаются целиком, только сводка.
type pendingDraftView struct {
	ID         string    `json:"id"`
	ChatID     int64     `json:"chat_id"`
	Shop       string    `json:"shop"`
	Author     string    `json:"author"`
	Items      int       `json:"items"`
	CreatedAt  time.Time `json:"created_at"`
	AgeSeconds int64     `json:"age_seconds"`
	Finalized  bool      `json:"finalized"`
}

// PendingDrafts возвращает сводку по всем ожидающим черновикам.
func (h *opsHandlers) PendingDrafts(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	views := make([]pendingDraftView, 0)
	for _, d := range h.deps.Drafts.Pending() {
		views = append(views, pendingDraftView{
			ID:         d.ID,
			ChatID:     d.ChatID,
			Shop:       d.Data.Shop,
			Author:     d.Data.Author,
			Items:      len(d.Data.Items),
			CreatedAt:  d.CreatedAt,
			AgeSeconds: int64(d.Age(now).Seconds()),
			Finalized:  d.Finalized,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

// BotLinkQR отдает PNG с QR-кодом ссылки на бота — удобно распечатать
// и повесить в точке приёмки.
func (h *opsHandlers) BotLinkQR(w http.ResponseWriter, r *http.Request) {
	username := h.deps.Config.BotUsername
	if username == "" {
		http.Error(w, "BOT_USERNAME не настроен", http.StatusServiceUnavailable)
		return
	}

	png, err := qrcode.Encode(fmt.Sprintf("https://t.me/%s", username), qrcode.Medium, 256)
	if err != nil {
		log.Printf("[OPS_API] Ошибка генерации QR-кода: %v", err)
		http.Error(w, "ошибка генерации QR", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		log.Printf("[OPS_API] Ошибка отдачи QR-кода: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[OPS_API] Ошибка сериализации ответа: %v", err)
	}
}
