package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"priemka/internal/constants"
	"priemka/internal/models"
)

func testSnapshot() *models.CatalogSnapshot {
	return &models.CatalogSnapshot{
		Families: []models.Family{
			{ID: 1, Name: "Молочка"},
			{ID: 2, Name: "Хлеб"},
		},
		Products: []models.Product{
			{ID: 1, FamilyID: 1, Name: "Молоко"},
			{ID: 2, FamilyID: 1, Name: "Сметана"},
			{ID: 3, FamilyID: 2, Name: "Батон"},
		},
		FamilyProducts: map[int][]int{1: {1, 2}, 2: {3}},
	}
}

func TestStateDefaultsToIdle(t *testing.T) {
	sm := NewSessionManager()
	assert.Equal(t, constants.STATE_IDLE, sm.GetState(42))

	sm.SetState(42, constants.STATE_AWAIT_SHOP)
	assert.Equal(t, constants.STATE_AWAIT_SHOP, sm.GetState(42))

	sm.ClearState(42)
	assert.Equal(t, constants.STATE_IDLE, sm.GetState(42))
}

func TestSetQuantityLastWriteWins(t *testing.T) {
	sm := NewSessionManager()
	const chatID = int64(1)

	// Повторные вводы по одному продукту перезаписывают, не суммируются.
	sm.SetQuantity(chatID, 3, 2)
	sm.SetQuantity(chatID, 3, 0.5)
	sm.SetQuantity(chatID, 3, 7)

	rd := sm.GetReception(chatID)
	assert.Equal(t, 7.0, rd.Quantities[3])

	// Некорректный ввод до SetQuantity не доходит — записей нет.
	assert.Len(t, rd.Quantities, 1)
}

func TestSnapshotFrozenForSessionLifetime(t *testing.T) {
	sm := NewSessionManager()
	const chatID = int64(5)

	rd := NewReception(chatID)
	rd.Catalog = testSnapshot()
	sm.UpdateReception(chatID, rd)

	before := sm.GetReception(chatID).Catalog

	// Обновление прайса в провайдере сессию не трогает: снимок тот же объект.
	sm.SetQuantity(chatID, 1, 3)
	after := sm.GetReception(chatID).Catalog
	assert.Same(t, before, after)
}

func TestReplayFromDraft(t *testing.T) {
	snap := testSnapshot()
	data := models.DraftData{
		Shop:  "Store1",
		Extra: 150,
		Items: []models.LineItem{
			{ProductID: 1, Family: "Молочка", Name: "Молоко", Qty: 2},
			{ProductID: 3, Family: "Хлеб", Name: "Батон", Qty: 1.5},
		},
		Photos: []string{"photo-1", "photo-2"},
	}

	rd := ReplayFromDraft(9, data, snap)

	assert.Equal(t, "Store1", rd.Shop)
	assert.Equal(t, 150.0, rd.Extra)
	require.Len(t, rd.Quantities, 2)
	assert.Equal(t, 2.0, rd.Quantities[1])
	assert.Equal(t, 1.5, rd.Quantities[3])
	assert.Equal(t, data.Photos, rd.Photos)
}

func TestFamilyQtyTotal(t *testing.T) {
	rd := NewReception(1)
	rd.Catalog = testSnapshot()
	rd.Quantities[1] = 2
	rd.Quantities[2] = 0.5

	assert.Equal(t, 2.5, rd.FamilyQtyTotal(1))
	assert.Equal(t, 0.0, rd.FamilyQtyTotal(2))
}

func TestGetReceptionReturnsIndependentCopy(t *testing.T) {
	sm := NewSessionManager()
	sm.SetQuantity(1, 3, 2)
	sm.AddPhoto(1, "file-a")

	rd := sm.GetReception(1)
	rd.Quantities[3] = 99
	rd.Photos = append(rd.Photos, "file-b")

	// Правки копии не просачиваются в хранимую сессию.
	again := sm.GetReception(1)
	assert.Equal(t, 2.0, again.Quantities[3])
	assert.Equal(t, []string{"file-a"}, again.Photos)
}

func TestConcurrentQuantityWritesAndReads(t *testing.T) {
	sm := NewSessionManager()
	rd := NewReception(1)
	rd.Catalog = testSnapshot()
	sm.UpdateReception(1, rd)

	// Обработчик пишет количества, пока клавиатура другого события читает
	// их суммы — под детектором гонок такой перебор обязан быть чистым.
	var wg sync.WaitGroup
	done := make(chan struct{})
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer close(done)
		for i := 0; i < 500; i++ {
			sm.SetQuantity(1, i%3+1, float64(i))
		}
	}()
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			cur := sm.GetReception(1)
			_ = cur.FamilyQtyTotal(1)
			for range cur.Quantities {
			}
		}
	}()
	wg.Wait()
}

func TestResetUserDropsEverything(t *testing.T) {
	sm := NewSessionManager()
	const chatID = int64(7)

	sm.SetState(chatID, constants.STATE_AWAIT_PHOTOS)
	sm.SetQuantity(chatID, 1, 4)
	sm.AddPhoto(chatID, "file-id")

	sm.ResetUser(chatID)

	assert.Equal(t, constants.STATE_IDLE, sm.GetState(chatID))
	rd := sm.GetReception(chatID)
	assert.Empty(t, rd.Quantities)
	assert.Empty(t, rd.Photos)
}
