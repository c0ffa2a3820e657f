package drafts

import (
	"context"
	"log"
	"time"

	"priemka/internal/models"
)

// Sweeper периодически фиксирует черновики, чей возраст превысил порог
// автофиксации. Неудачные записи остаются в реестре и повторяются на
// каждом тике, пока не пройдут или пока пользователь не вмешается.
type Sweeper struct {
	registry *Registry
	coord    *Coordinator
	maxAge   time.Duration
	interval time.Duration

	now func() time.Time
}

// NewSweeper создает фоновую автофиксацию черновиков.
func NewSweeper(registry *Registry, coord *Coordinator, maxAge, interval time.Duration) *Sweeper {
	return &Sweeper{
		registry: registry,
		coord:    coord,
		maxAge:   maxAge,
		interval: interval,
		now:      time.Now,
	}
}

// Run крутит тикер до отмены контекста. Запускается одной горутиной из main.
func (s *Sweeper) Run(ctx context.Context) {
	log.Printf("[SWEEP] Автофиксация запущена: интервал %s, порог возраста %s.", s.interval, s.maxAge)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[SWEEP] Автофиксация остановлена.")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce — один проход по всем черновикам. Уже фиксируемые пропускаются
// самим захватом в Commit; слишком молодые — проверкой возраста здесь.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	for _, d := range s.registry.Pending() {
		if d.Finalized {
			continue
		}
		if d.Age(s.now()) < s.maxAge {
			continue
		}

		log.Printf("[SWEEP] Черновик %s (chatID %d) старше %s, автофиксация.", d.ID, d.ChatID, s.maxAge)
		result, err := s.coord.Commit(ctx, d.ChatID)
		if err != nil {
			// Черновик мог быть удалён между Pending и Commit — не ошибка.
			log.Printf("[SWEEP] Черновик chatID %d недоступен: %v", d.ChatID, err)
			continue
		}
		if result.Outcome == models.CommitTransientFailure {
			// Тихий повтор на следующем тике.
			log.Printf("[SWEEP] Автофиксация chatID %d не удалась (%s), повтор на следующем тике.", d.ChatID, result.Reason)
		}
	}
}
