package drafts

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"priemka/internal/models"
	"priemka/internal/session"
)

func TestUpsertPreservesCreatedAtAndGroupMessage(t *testing.T) {
	r := NewRegistry()
	now := time.Now()
	r.now = func() time.Time { return now }

	first, err := r.Upsert(1, models.DraftData{Shop: "Store1"})
	require.NoError(t, err)
	r.SetGroupMessage(1, 777)

	// Повторное «Готово» после редактирования: данные новые, отсчёт старый.
	now = now.Add(5 * time.Minute)
	second, err := r.Upsert(1, models.DraftData{Shop: "Store1", Extra: 150})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, 150.0, second.Data.Extra)

	got, err := r.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 777, got.GroupMessage)
}

func TestGetNotFound(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get(99)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestTryClaimAndRelease(t *testing.T) {
	r := NewRegistry()
	_, err := r.Upsert(1, models.DraftData{Shop: "Store1"})
	require.NoError(t, err)

	d, claimed, err := r.TryClaim(1)
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.True(t, d.Finalized)

	// Второй захват проигрывает.
	_, claimed, err = r.TryClaim(1)
	require.NoError(t, err)
	assert.False(t, claimed)

	// Откат после неудачной записи возвращает черновик в ожидание.
	r.Release(1)
	got, err := r.Get(1)
	require.NoError(t, err)
	assert.False(t, got.Finalized)

	_, claimed, err = r.TryClaim(1)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestTryClaimNotFound(t *testing.T) {
	r := NewRegistry()
	_, _, err := r.TryClaim(1)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUpsertRefusedWhileClaimed(t *testing.T) {
	r := NewRegistry()
	_, err := r.Upsert(1, models.DraftData{Shop: "Store1"})
	require.NoError(t, err)

	_, claimed, err := r.TryClaim(1)
	require.NoError(t, err)
	require.True(t, claimed)

	// «Готово» пока идёт запись в журнал: данные захваченного черновика
	// не меняются.
	_, err = r.Upsert(1, models.DraftData{Shop: "Store2"})
	assert.True(t, errors.Is(err, ErrFinalizing))

	got, err := r.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Store1", got.Data.Shop)

	// Откат после неудачной записи снова открывает перезапись.
	r.Release(1)
	second, err := r.Upsert(1, models.DraftData{Shop: "Store2"})
	require.NoError(t, err)
	assert.Equal(t, "Store2", second.Data.Shop)
}

func TestBuildItems(t *testing.T) {
	rd := session.NewReception(1)
	rd.Catalog = &models.CatalogSnapshot{
		Families: []models.Family{{ID: 1, Name: "Молочка"}, {ID: 2, Name: "Хлеб"}},
		Products: []models.Product{
			{ID: 1, FamilyID: 1, Name: "Молоко"},
			{ID: 2, FamilyID: 1, Name: "Сметана"},
			{ID: 3, FamilyID: 2, Name: "Батон"},
		},
		FamilyProducts: map[int][]int{1: {1, 2}, 2: {3}},
	}
	rd.Quantities[1] = 2
	rd.Quantities[2] = 0 // нулевые количества не попадают в черновик
	rd.Quantities[3] = 1.5

	items := BuildItems(rd)
	require.Len(t, items, 2)
	assert.Equal(t, models.LineItem{ProductID: 1, Family: "Молочка", Name: "Молоко", Qty: 2}, items[0])
	assert.Equal(t, models.LineItem{ProductID: 3, Family: "Хлеб", Name: "Батон", Qty: 1.5}, items[1])
}
