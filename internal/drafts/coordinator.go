package drafts

import (
	"context"
	"log"

	"priemka/internal/models"
	"priemka/internal/session"
)

// LedgerWriter — запись приёмки во внешний журнал.
type LedgerWriter interface {
	Submit(ctx context.Context, shop string, items []models.LineItem) error
}

// FinalPublisher — обновление итога в группе до статуса «финал».
// Ошибки публикации не отменяют фиксацию: запись в журнал уже состоялась,
// поэтому они только логируются вызывающей стороной.
type FinalPublisher interface {
	PublishFinal(d Draft) error
}

// Coordinator — протокол фиксации черновика «ровно один раз».
// Обе точки входа — ручная фиксация и фоновая автофиксация — обязаны
// вызывать Commit и никогда не писать в журнал напрямую.
type Coordinator struct {
	registry  *Registry
	sessions  *session.SessionManager
	ledger    LedgerWriter
	publisher FinalPublisher
}

// NewCoordinator создает координатор фиксации.
func NewCoordinator(registry *Registry, sessions *session.SessionManager, ledger LedgerWriter, publisher FinalPublisher) *Coordinator {
	return &Coordinator{
		registry:  registry,
		sessions:  sessions,
		ledger:    ledger,
		publisher: publisher,
	}
}

// Commit фиксирует черновик пользователя.
//
// Алгоритм: (1) атомарный захват флага Finalized — проигравший конкурент
// получает CommitAlreadyFinalized и ничего не делает; (2) запись в журнал
// с отпущенным замком, по копии данных; (3) при неудаче — откат флага,
// чтобы следующая попытка могла повторить запись; (4) при успехе —
// публикация финального итога, удаление черновика и исходной сессии.
func (c *Coordinator) Commit(ctx context.Context, chatID int64) (models.CommitResult, error) {
	draft, claimed, err := c.registry.TryClaim(chatID)
	if err != nil {
		return models.CommitResult{}, err
	}
	if !claimed {
		log.Printf("[COMMIT] Черновик %s (chatID %d) уже фиксируется или зафиксирован.", draft.ID, chatID)
		return models.CommitResult{Outcome: models.CommitAlreadyFinalized}, nil
	}

	if err := c.ledger.Submit(ctx, draft.Data.Shop, draft.Data.Items); err != nil {
		c.registry.Release(chatID)
		log.Printf("[COMMIT] Ошибка записи в журнал для черновика %s (chatID %d): %v. Черновик ожидает повторной попытки.", draft.ID, chatID, err)
		return models.CommitResult{Outcome: models.CommitTransientFailure, Reason: err.Error()}, nil
	}

	if c.publisher != nil {
		if err := c.publisher.PublishFinal(draft); err != nil {
			// Журнал уже записан, фиксацию не откатываем.
			log.Printf("[COMMIT] Ошибка публикации финального итога для черновика %s (chatID %d): %v", draft.ID, chatID, err)
		}
	}

	c.registry.Delete(chatID)
	c.sessions.ResetUser(chatID)
	log.Printf("[COMMIT] Черновик %s (chatID %d) зафиксирован: магазин '%s', позиций %d.", draft.ID, chatID, draft.Data.Shop, len(draft.Data.Items))
	return models.CommitResult{Outcome: models.CommitSuccess}, nil
}
