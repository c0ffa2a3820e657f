package constants

import "time"

// Состояния сессии приёмки. Порядок шагов: магазин -> категория -> продукт ->
// количество -> доп. сумма -> фото.
// Reception session states. Step order: shop -> family -> product -> quantity ->
// extra amount -> photos.
const (
	STATE_IDLE           = "idle"
	STATE_AWAIT_SHOP     = "await_shop"
	STATE_CHOOSE_FAMILY  = "choose_family"
	STATE_CHOOSE_PRODUCT = "choose_product"
	STATE_AWAIT_QTY      = "await_qty"
	STATE_AWAIT_EXTRA    = "await_extra"
	STATE_AWAIT_PHOTOS   = "await_photos"
)

// Коллбэки кнопок. Префиксные коллбэки несут числовой ID после подчёркивания.
// Button callbacks. Prefixed callbacks carry a numeric ID after the underscore.
const (
	CALLBACK_NEW_RECEPTION  = "new_reception"
	CALLBACK_PREFIX_FAMILY  = "fam_"
	CALLBACK_PREFIX_PRODUCT = "prod_"
	CALLBACK_BACK_FAMILIES  = "back_fams"
	CALLBACK_FINISH         = "finish"
	CALLBACK_RESET_CONFIRM  = "reset_confirm"
	CALLBACK_RESET_YES      = "reset_yes"
	CALLBACK_RESET_NO       = "reset_no"
	CALLBACK_PHOTOS_DONE    = "photos_done"
	CALLBACK_DRAFT_EDIT     = "draft_edit"
	CALLBACK_DRAFT_FINALIZE = "draft_finalize"
)

// Таймауты по умолчанию. Все три настраиваются через окружение.
// Default timeouts. All three are tunable via environment.
const (
	DEFAULT_CATALOG_TTL        = 300 * time.Second
	DEFAULT_AUTO_FINALIZE_WAIT = 600 * time.Second
	DEFAULT_SWEEP_INTERVAL     = 30 * time.Second
)

// Заголовки колонок прайс-листа по умолчанию (как в исходной таблице).
// Default price sheet column headers (as in the source sheet).
const (
	DEFAULT_COLUMN_FAMILY = "Продукт общий"
	DEFAULT_COLUMN_NAME   = "Продукт"
	DEFAULT_COLUMN_PRICE  = "Цена"
)

// HTTP-таймаут для внешних вызовов (прайс, журнал).
const EXTERNAL_HTTP_TIMEOUT = 20 * time.Second
