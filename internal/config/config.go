// internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"priemka/internal/constants"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	TelegramToken string
	BotUsername   string
	AppEnv        string

	// Группа, в которую отправляются фото и итог приёмки.
	TargetGroupID int64

	// Белый список пользователей. Пустой список — доступ разрешён всем
	// (об этом пишется предупреждение в лог).
	AllowedUserIDs []int64

	// Источник прайс-листа (Google Sheet, CSV-экспорт).
	PricesSheetID string
	PricesTabName string
	PricesCSVURL  string

	// Колонки прайс-листа.
	ColumnFamily string
	ColumnName   string
	ColumnPrice  string

	// Эндпоинт журнала (Apps Script).
	LedgerURL string

	CatalogTTL        time.Duration
	AutoFinalizeAfter time.Duration
	SweepInterval     time.Duration

	// Ops API.
	Port        string
	OpsAPIToken string
}

// LoadConfig загружает конфигурацию из переменных окружения.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_APITOKEN"),
		BotUsername:   os.Getenv("BOT_USERNAME"),
		AppEnv:        os.Getenv("ENV"),
		PricesSheetID: os.Getenv("PRICES_SHEET_ID"),
		PricesTabName: os.Getenv("PRICES_TAB_NAME"),
		LedgerURL:     os.Getenv("LEDGER_URL"),
		ColumnFamily:  envOrDefault("PRICES_COLUMN_FAMILY", constants.DEFAULT_COLUMN_FAMILY),
		ColumnName:    envOrDefault("PRICES_COLUMN_NAME", constants.DEFAULT_COLUMN_NAME),
		ColumnPrice:   envOrDefault("PRICES_COLUMN_PRICE", constants.DEFAULT_COLUMN_PRICE),
		Port:          envOrDefault("PORT", "8080"),
		OpsAPIToken:   os.Getenv("OPS_API_TOKEN"),
	}

	if cfg.TelegramToken == "" {
		log.Println("Критическая ошибка: TELEGRAM_APITOKEN не установлен.")
	}
	if cfg.LedgerURL == "" {
		log.Println("Критическая ошибка: LEDGER_URL не установлен. Запись в журнал работать не будет.")
	}
	if cfg.BotUsername == "" {
		log.Println("Предупреждение: BOT_USERNAME не установлен.")
	}

	var err error
	cfg.TargetGroupID, err = strconv.ParseInt(os.Getenv("TARGET_GROUP_ID"), 10, 64)
	if err != nil {
		log.Printf("Критическая ошибка: не удалось прочитать TARGET_GROUP_ID: %v. Итоги приёмок отправлять некуда.", err)
		cfg.TargetGroupID = 0
	}

	cfg.AllowedUserIDs = parseAllowedUsers(os.Getenv("ALLOWED_USER_IDS"))
	if len(cfg.AllowedUserIDs) == 0 {
		log.Println("Предупреждение: ALLOWED_USER_IDS не установлен, доступ к боту открыт всем.")
	}

	if cfg.PricesTabName == "" {
		cfg.PricesTabName = "Лист1"
	}
	cfg.PricesCSVURL = os.Getenv("PRICES_CSV_URL")
	if cfg.PricesCSVURL == "" {
		if cfg.PricesSheetID == "" {
			log.Println("Критическая ошибка: не установлены ни PRICES_CSV_URL, ни PRICES_SHEET_ID. Прайс-лист недоступен.")
		} else {
			cfg.PricesCSVURL = fmt.Sprintf(
				"https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:csv&sheet=%s",
				cfg.PricesSheetID, cfg.PricesTabName)
		}
	}

	cfg.CatalogTTL = durationFromEnvSeconds("CATALOG_TTL_SECONDS", constants.DEFAULT_CATALOG_TTL)
	cfg.AutoFinalizeAfter = durationFromEnvSeconds("AUTO_FINALIZE_SECONDS", constants.DEFAULT_AUTO_FINALIZE_WAIT)
	cfg.SweepInterval = durationFromEnvSeconds("SWEEP_INTERVAL_SECONDS", constants.DEFAULT_SWEEP_INTERVAL)

	if cfg.OpsAPIToken == "" {
		log.Println("Предупреждение: OPS_API_TOKEN не установлен, сервисный API будет отвечать только на /api/health.")
	}

	log.Println("Конфигурация загружена.")
	return cfg, nil
}

// IsAllowed сообщает, разрешён ли пользователю доступ к боту.
func (c *Config) IsAllowed(chatID int64) bool {
	if len(c.AllowedUserIDs) == 0 {
		return true
	}
	for _, id := range c.AllowedUserIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

func parseAllowedUsers(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Printf("Предупреждение: некорректный ID '%s' в ALLOWED_USER_IDS, пропущен: %v", part, err)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func durationFromEnvSeconds(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		log.Printf("Предупреждение: некорректное значение %s='%s', используется значение по умолчанию %s.", key, raw, def)
		return def
	}
	return time.Duration(secs) * time.Second
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
