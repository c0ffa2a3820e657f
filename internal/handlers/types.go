package handlers

import (
	"priemka/internal/catalog"
	"priemka/internal/config"
	"priemka/internal/drafts"
	"priemka/internal/session"
	"priemka/internal/telegram_api"
)

// HandlerDependencies содержит все зависимости, необходимые для обработчиков.
// HandlerDependencies contains all dependencies required for handlers.
type HandlerDependencies struct {
	Config         *config.Config
	BotClient      *telegram_api.BotClient
	SessionManager *session.SessionManager
	Catalog        *catalog.Provider
	Drafts         *drafts.Registry
	Coordinator    *drafts.Coordinator
}

// BotHandler инкапсулирует логику обработки сообщений и коллбэков.
// BotHandler encapsulates the logic for handling messages and callbacks.
type BotHandler struct {
	Deps HandlerDependencies
}

// NewBotHandler создает новый экземпляр BotHandler.
func NewBotHandler(deps HandlerDependencies) *BotHandler {
	if deps.Config == nil || deps.BotClient == nil || deps.SessionManager == nil ||
		deps.Catalog == nil || deps.Drafts == nil {
		// Это критическая ошибка конфигурации, приложение не сможет работать корректно.
		panic("Не все зависимости для BotHandler были предоставлены.")
	}
	return &BotHandler{Deps: deps}
}

// SetCoordinator подключает координатор фиксации. Вызывается из main после
// создания координатора: тот, в свою очередь, получает публикатор итогов,
// реализуемый этим же обработчиком.
func (bh *BotHandler) SetCoordinator(coord *drafts.Coordinator) {
	bh.Deps.Coordinator = coord
}

// sendMessage — короткий помощник для отправки текста пользователю.
func (bh *BotHandler) sendMessage(chatID int64, text string) {
	telegram_api.SendMessage(bh.Deps.BotClient, chatID, text)
}
