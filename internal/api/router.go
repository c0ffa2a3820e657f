package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"priemka/internal/catalog"
	"priemka/internal/config"
	"priemka/internal/drafts"
)

// ApiDependencies содержит зависимости для обработчиков сервисного API.
type ApiDependencies struct {
	Config  *config.Config
	Drafts  *drafts.Registry
	Catalog *catalog.Provider
}

// SetupRoutes настраивает маршруты сервисного API: здоровье процесса,
// список ожидающих черновиков и QR-код со ссылкой на бота.
func SetupRoutes(r *chi.Mux, deps ApiDependencies) {
	h := &opsHandlers{deps: deps}

	r.Get("/api/health", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(deps.Config.OpsAPIToken))
		r.Get("/api/drafts", h.PendingDrafts)
		r.Get("/api/qr", h.BotLinkQR)
	})
}

// AuthMiddleware проверяет сервисный токен в заголовке X-Ops-Token.
// Пустой настроенный токен закрывает защищённые маршруты целиком.
func AuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" || r.Header.Get("X-Ops-Token") != token {
				log.Printf("[OPS_API] Отказ в доступе: %s %s", r.Method, r.URL.Path)
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
