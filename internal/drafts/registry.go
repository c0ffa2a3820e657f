// Пакет drafts хранит черновики приёмок (не более одного на пользователя)
// и реализует протокол фиксации «ровно один раз»: ручная фиксация и фоновая
// автофиксация проходят через один и тот же атомарный захват флага.
package drafts

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"priemka/internal/models"
)

// ErrNotFound — у пользователя нет ожидающего черновика.
var ErrNotFound = errors.New("черновик не найден")

// ErrFinalizing — черновик захвачен фиксацией, перезапись данных запрещена.
var ErrFinalizing = errors.New("черновик уже фиксируется")

// Draft — отложенная, ещё не зафиксированная приёмка.
// Finalized монотонно переходит false -> true; единственное исключение —
// откат после неудачной записи в журнал, когда захват был предварительным.
type Draft struct {
	ID           string
	ChatID       int64
	Data         models.DraftData
	CreatedAt    time.Time
	Finalized    bool
	GroupMessage int // ID сообщения-итога в группе, 0 если ещё не отправлено
}

// Age возвращает возраст черновика от первой отправки.
func (d Draft) Age(now time.Time) time.Duration {
	return now.Sub(d.CreatedAt)
}

// Registry — реестр черновиков, по одному на chatID.
// Все операции синхронизированы одним мьютексом: поток событий здесь
// низкий, и один грубый замок проще и достаточен.
type Registry struct {
	mu     sync.Mutex
	drafts map[int64]*Draft

	now func() time.Time
}

// NewRegistry создает пустой реестр черновиков.
func NewRegistry() *Registry {
	return &Registry{
		drafts: make(map[int64]*Draft),
		now:    time.Now,
	}
}

// Upsert создает черновик или перезаписывает данные существующего.
// При перезаписи (повторное «Готово» после редактирования) CreatedAt и
// GroupMessage сохраняются: окно автофиксации отсчитывается от первой
// отправки, а итог в группе редактируется на месте.
// Захваченный фиксацией черновик перезаписывать нельзя: данные меняются
// только пока Finalized == false. Возвращается ErrFinalizing; после
// отката захвата (Release) перезапись снова возможна.
func (r *Registry) Upsert(chatID int64, data models.DraftData) (Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, exists := r.drafts[chatID]
	if !exists {
		d = &Draft{
			ID:        uuid.NewString(),
			ChatID:    chatID,
			CreatedAt: r.now(),
		}
		r.drafts[chatID] = d
		log.Printf("[DRAFTS] Создан черновик %s для chatID %d.", d.ID, chatID)
	} else {
		if d.Finalized {
			log.Printf("[DRAFTS] Черновик %s для chatID %d захвачен фиксацией, перезапись отклонена.", d.ID, chatID)
			return *d, ErrFinalizing
		}
		log.Printf("[DRAFTS] Черновик %s для chatID %d перезаписан (CreatedAt сохранён).", d.ID, chatID)
	}
	d.Data = data
	return *d, nil
}

// Get возвращает копию черновика пользователя или ErrNotFound.
func (r *Registry) Get(chatID int64) (Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, exists := r.drafts[chatID]
	if !exists {
		return Draft{}, ErrNotFound
	}
	return *d, nil
}

// Delete удаляет черновик пользователя.
func (r *Registry) Delete(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.drafts[chatID]; exists {
		delete(r.drafts, chatID)
		log.Printf("[DRAFTS] Черновик для chatID %d удалён.", chatID)
	}
}

// SetGroupMessage запоминает ID сообщения-итога в группе для черновика.
func (r *Registry) SetGroupMessage(chatID int64, messageID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, exists := r.drafts[chatID]; exists {
		d.GroupMessage = messageID
	}
}

// Pending возвращает копии всех зарегистрированных черновиков.
func (r *Registry) Pending() []Draft {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Draft, 0, len(r.drafts))
	for _, d := range r.drafts {
		out = append(out, *d)
	}
	return out
}

// TryClaim атомарно захватывает право на фиксацию: переводит Finalized из
// false в true и возвращает копию черновика. Если флаг уже установлен,
// возвращает claimed=false — это и есть страховка от гонки ручной фиксации
// с автофиксацией. Захват предварительный: при неудачной записи в журнал
// его обязан снять Release.
func (r *Registry) TryClaim(chatID int64) (d Draft, claimed bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	draft, exists := r.drafts[chatID]
	if !exists {
		return Draft{}, false, ErrNotFound
	}
	if draft.Finalized {
		return *draft, false, nil
	}
	draft.Finalized = true
	return *draft, true, nil
}

// Release снимает захват фиксации после неудачной записи в журнал,
// чтобы следующая попытка (ручная или автофиксация) могла повторить её.
func (r *Registry) Release(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, exists := r.drafts[chatID]; exists {
		d.Finalized = false
		log.Printf("[DRAFTS] Захват фиксации для chatID %d снят, черновик снова ожидает.", chatID)
	}
}
