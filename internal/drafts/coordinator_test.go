package drafts

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"priemka/internal/models"
	"priemka/internal/session"
)

// fakeLedger считает записи и по желанию отвечает ошибкой.
type fakeLedger struct {
	mu      sync.Mutex
	submits int
	failing bool
}

func (f *fakeLedger) Submit(ctx context.Context, shop string, items []models.LineItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return fmt.Errorf("журнал отверг запись: статус 500")
	}
	f.submits++
	return nil
}

func (f *fakeLedger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submits
}

// fakePublisher считает публикации финального итога.
type fakePublisher struct {
	published atomic.Int64
}

func (f *fakePublisher) PublishFinal(d Draft) error {
	f.published.Add(1)
	return nil
}

func newTestCoordinator(ledger *fakeLedger, publisher *fakePublisher) (*Coordinator, *Registry, *session.SessionManager) {
	registry := NewRegistry()
	sessions := session.NewSessionManager()
	return NewCoordinator(registry, sessions, ledger, publisher), registry, sessions
}

func TestCommitExactlyOnceUnderConcurrency(t *testing.T) {
	ledger := &fakeLedger{}
	publisher := &fakePublisher{}
	coord, registry, _ := newTestCoordinator(ledger, publisher)

	registry.Upsert(1, models.DraftData{Shop: "Store1", Items: []models.LineItem{
		{ProductID: 1, Family: "Молочка", Name: "Молоко", Qty: 2},
	}})

	// Ручная фиксация и автофиксация наперегонки.
	const attempts = 16
	results := make(chan models.CommitResult, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := coord.Commit(context.Background(), 1)
			if err == nil {
				results <- res
			} else {
				// Проигравшие могут увидеть уже удалённый черновик.
				results <- models.CommitResult{Outcome: models.CommitAlreadyFinalized}
			}
		}()
	}
	wg.Wait()
	close(results)

	var successes, already int
	for res := range results {
		switch res.Outcome {
		case models.CommitSuccess:
			successes++
		case models.CommitAlreadyFinalized:
			already++
		default:
			t.Fatalf("неожиданный исход: %s", res)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, already)
	assert.Equal(t, 1, ledger.count(), "запись в журнал должна случиться ровно один раз")
	assert.Equal(t, int64(1), publisher.published.Load())

	_, err := registry.Get(1)
	assert.Error(t, err, "черновик должен быть удалён после успешной фиксации")
}

func TestCommitRollbackOnLedgerFailure(t *testing.T) {
	ledger := &fakeLedger{failing: true}
	publisher := &fakePublisher{}
	coord, registry, _ := newTestCoordinator(ledger, publisher)

	registry.Upsert(1, models.DraftData{Shop: "Store1"})

	res, err := coord.Commit(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.CommitTransientFailure, res.Outcome)
	assert.NotEmpty(t, res.Reason)

	// Флаг откачен: черновик снова ожидает и доступен для повтора.
	got, err := registry.Get(1)
	require.NoError(t, err)
	assert.False(t, got.Finalized)
	assert.Equal(t, int64(0), publisher.published.Load())

	// Следующая попытка после восстановления журнала проходит.
	ledger.mu.Lock()
	ledger.failing = false
	ledger.mu.Unlock()

	res, err = coord.Commit(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.CommitSuccess, res.Outcome)
	assert.Equal(t, 1, ledger.count())
}

func TestCommitClearsOriginatingSession(t *testing.T) {
	ledger := &fakeLedger{}
	coord, registry, sessions := newTestCoordinator(ledger, &fakePublisher{})

	sessions.SetQuantity(1, 2, 5)
	registry.Upsert(1, models.DraftData{Shop: "Store1"})

	_, err := coord.Commit(context.Background(), 1)
	require.NoError(t, err)

	rd := sessions.GetReception(1)
	assert.Empty(t, rd.Quantities)
}

func TestSweeperAutoFinalizesOldDrafts(t *testing.T) {
	ledger := &fakeLedger{}
	publisher := &fakePublisher{}
	coord, registry, _ := newTestCoordinator(ledger, publisher)

	created := time.Now()
	registry.now = func() time.Time { return created }
	registry.Upsert(1, models.DraftData{Shop: "Старый"})
	registry.Upsert(2, models.DraftData{Shop: "Свежий"})

	sweeper := NewSweeper(registry, coord, 600*time.Second, time.Second)

	// Первый черновик состарился, второй — нет.
	sweeper.now = func() time.Time { return created.Add(601 * time.Second) }
	registryBump(registry, 2, created.Add(500*time.Second))

	sweeper.SweepOnce(context.Background())

	assert.Equal(t, 1, ledger.count())
	assert.Equal(t, int64(1), publisher.published.Load())

	_, err := registry.Get(1)
	assert.Error(t, err, "старый черновик зафиксирован и удалён")
	_, err = registry.Get(2)
	assert.NoError(t, err, "молодой черновик остаётся ждать")

	// Повторный проход ничего не дублирует.
	sweeper.SweepOnce(context.Background())
	assert.Equal(t, 1, ledger.count())
	assert.Equal(t, int64(1), publisher.published.Load())
}

func TestSweeperRetriesFailedWriteEveryTick(t *testing.T) {
	ledger := &fakeLedger{failing: true}
	coord, registry, _ := newTestCoordinator(ledger, &fakePublisher{})

	created := time.Now().Add(-700 * time.Second)
	registry.now = func() time.Time { return created }
	registry.Upsert(1, models.DraftData{Shop: "Store1"})

	sweeper := NewSweeper(registry, coord, 600*time.Second, time.Second)

	sweeper.SweepOnce(context.Background())
	got, err := registry.Get(1)
	require.NoError(t, err)
	assert.False(t, got.Finalized, "после неудачи черновик снова ожидает")

	ledger.mu.Lock()
	ledger.failing = false
	ledger.mu.Unlock()

	sweeper.SweepOnce(context.Background())
	assert.Equal(t, 1, ledger.count())
	_, err = registry.Get(1)
	assert.Error(t, err)
}

// registryBump переставляет CreatedAt черновика для теста возраста.
func registryBump(r *Registry, chatID int64, createdAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.drafts[chatID]; ok {
		d.CreatedAt = createdAt
	}
}
