package session

import (
	"log"
	"sync"

	"priemka/internal/constants"
)

// SessionManager управляет состояниями пользователей и данными приёмок.
// Одновременно у пользователя не бывает двух активных сессий: новая приёмка
// и жёсткий сброс удаляют предыдущую.
// SessionManager manages user states and reception data. A user never has
// two active sessions at once: a new reception and a hard reset drop the
// previous one.
type SessionManager struct {
	userStates     map[int64]string // Ключ: chatID, значение: текущее состояние (constants.STATE_*)
	userStateMutex sync.RWMutex

	receptions      map[int64]ReceptionData // Ключ: chatID пользователя
	receptionsMutex sync.RWMutex
}

// NewSessionManager создает и возвращает новый экземпляр SessionManager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		userStates: make(map[int64]string),
		receptions: make(map[int64]ReceptionData),
	}
}

// --- Управление состоянием пользователя (User State) ---

// GetState возвращает текущее состояние пользователя.
// Если состояние не установлено, возвращает STATE_IDLE.
func (sm *SessionManager) GetState(chatID int64) string {
	sm.userStateMutex.RLock()
	defer sm.userStateMutex.RUnlock()
	state, ok := sm.userStates[chatID]
	if !ok {
		return constants.STATE_IDLE
	}
	return state
}

// SetState устанавливает новое состояние для пользователя.
func (sm *SessionManager) SetState(chatID int64, state string) {
	sm.userStateMutex.Lock()
	defer sm.userStateMutex.Unlock()
	sm.userStates[chatID] = state
	log.Printf("SessionManager.SetState: Состояние для chatID %d установлено: %s", chatID, state)
}

// ClearState сбрасывает состояние пользователя к STATE_IDLE.
func (sm *SessionManager) ClearState(chatID int64) {
	sm.userStateMutex.Lock()
	defer sm.userStateMutex.Unlock()
	sm.userStates[chatID] = constants.STATE_IDLE
	log.Printf("SessionManager.ClearState: Состояние для chatID %d сброшено в IDLE.", chatID)
}

// --- Управление данными приёмки (Reception Data) ---

// GetReception возвращает данные приёмки пользователя.
// Если данных нет, создает новый пустой экземпляр ReceptionData.
// Наружу всегда уходит копия с собственными Quantities и Photos:
// клавиатуры и обработчики читают её без замка, пока SetQuantity и
// AddPhoto пишут в хранимый экземпляр под мьютексом.
func (sm *SessionManager) GetReception(chatID int64) ReceptionData {
	sm.receptionsMutex.RLock()
	rd, exists := sm.receptions[chatID]
	sm.receptionsMutex.RUnlock()

	if !exists {
		newRD := NewReception(chatID)
		sm.receptionsMutex.Lock()
		sm.receptions[chatID] = newRD
		sm.receptionsMutex.Unlock()
		return newRD.clone()
	}
	return rd.clone()
}

// UpdateReception обновляет данные приёмки пользователя.
// Сохраняется копия, чтобы вызывающая сторона не держала ссылку на
// хранимые Quantities и Photos.
func (sm *SessionManager) UpdateReception(chatID int64, rd ReceptionData) {
	sm.receptionsMutex.Lock()
	defer sm.receptionsMutex.Unlock()
	sm.receptions[chatID] = rd.clone()
}

// ClearReception удаляет данные приёмки пользователя.
func (sm *SessionManager) ClearReception(chatID int64) {
	sm.receptionsMutex.Lock()
	defer sm.receptionsMutex.Unlock()
	delete(sm.receptions, chatID)
	log.Printf("SessionManager.ClearReception: Приёмка для chatID %d удалена.", chatID)
}

// SetQuantity атомарно записывает количество по продукту в сессию.
// Последний корректный ввод побеждает: прежнее значение перезаписывается,
// не суммируется.
func (sm *SessionManager) SetQuantity(chatID int64, prodID int, qty float64) {
	sm.receptionsMutex.Lock()
	defer sm.receptionsMutex.Unlock()

	rd, exists := sm.receptions[chatID]
	if !exists {
		rd = NewReception(chatID)
	}
	if rd.Quantities == nil {
		rd.Quantities = make(map[int]float64)
	}
	rd.Quantities[prodID] = qty
	sm.receptions[chatID] = rd
	log.Printf("SessionManager.SetQuantity: chatID %d, продукт %d, количество %v.", chatID, prodID, qty)
}

// AddPhoto атомарно добавляет FileID фотографии в сессию.
// Возвращает обновлённое количество фото.
func (sm *SessionManager) AddPhoto(chatID int64, fileID string) int {
	sm.receptionsMutex.Lock()
	defer sm.receptionsMutex.Unlock()

	rd, exists := sm.receptions[chatID]
	if !exists {
		rd = NewReception(chatID)
	}
	rd.Photos = append(rd.Photos, fileID)
	sm.receptions[chatID] = rd
	return len(rd.Photos)
}

// ResetUser полностью сбрасывает пользователя: состояние и данные приёмки.
func (sm *SessionManager) ResetUser(chatID int64) {
	sm.ClearState(chatID)
	sm.ClearReception(chatID)
}
