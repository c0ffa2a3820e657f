// Пакет catalog загружает прайс-лист из CSV-экспорта Google Sheet,
// кэширует его с TTL и строит неизменяемые снимки каталога для сессий.
package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"priemka/internal/constants"
	"priemka/internal/models"
)

// ErrUnavailable — прайс-лист недоступен (сеть или формат) и кэша нет.
var ErrUnavailable = errors.New("прайс-лист недоступен")

// PriceKey — ключ цены: пара (категория, продукт).
type PriceKey struct {
	Family string
	Name   string
}

// PriceIndex — цены по паре (категория, продукт).
type PriceIndex map[PriceKey]float64

// Lookup возвращает цену позиции. Отсутствующая цена — это ноль, а не ошибка:
// непрооценённый товар не должен блокировать приёмку.
func (idx PriceIndex) Lookup(family, name string) float64 {
	return idx[PriceKey{Family: family, Name: name}]
}

// Row — одна строка прайс-листа.
type Row struct {
	Family string
	Name   string
	Price  float64
}

// Columns — имена колонок в CSV.
type Columns struct {
	Family string
	Name   string
	Price  string
}

// DefaultColumns возвращает заголовки колонок исходной таблицы.
func DefaultColumns() Columns {
	return Columns{
		Family: constants.DEFAULT_COLUMN_FAMILY,
		Name:   constants.DEFAULT_COLUMN_NAME,
		Price:  constants.DEFAULT_COLUMN_PRICE,
	}
}

// Provider загружает и кэширует прайс-лист.
// Снимки каталога строятся из плоского списка строк отдельно, per-session.
type Provider struct {
	url     string
	columns Columns
	ttl     time.Duration
	client  *http.Client

	mu        sync.Mutex
	fetchedAt time.Time
	prices    PriceIndex
	rows      []Row

	now func() time.Time
}

// NewProvider создает провайдер прайс-листа.
func NewProvider(url string, columns Columns, ttl time.Duration) *Provider {
	return &Provider{
		url:     url,
		columns: columns,
		ttl:     ttl,
		client:  &http.Client{Timeout: constants.EXTERNAL_HTTP_TIMEOUT},
		now:     time.Now,
	}
}

// Get возвращает индекс цен и плоский список позиций, из кэша при возрасте
// моложе TTL, иначе перезагружает таблицу синхронно. При ошибке загрузки
// возвращается ошибка, обёрнутая в ErrUnavailable; устаревший кэш при живом
// источнике не подсовывается.
//
// HTTP-запрос выполняется без удержания мьютекса: двое конкурентных
// обновляющих просто сделают два запроса, победит последний записавший.
func (p *Provider) Get(ctx context.Context) (PriceIndex, []Row, error) {
	p.mu.Lock()
	if !p.fetchedAt.IsZero() && p.now().Sub(p.fetchedAt) < p.ttl {
		prices, rows := p.prices, p.rows
		p.mu.Unlock()
		return prices, rows, nil
	}
	p.mu.Unlock()

	prices, rows, err := p.fetch(ctx)
	if err != nil {
		log.Printf("[CATALOG] Ошибка загрузки прайс-листа: %v", err)
		return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	p.mu.Lock()
	p.prices = prices
	p.rows = rows
	p.fetchedAt = p.now()
	p.mu.Unlock()

	log.Printf("[CATALOG] Прайс-лист обновлён: %d позиций.", len(rows))
	return prices, rows, nil
}

func (p *Provider) fetch(ctx context.Context) (PriceIndex, []Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка запроса к таблице: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("таблица ответила статусом %d", resp.StatusCode)
	}
	return ParseCSV(resp.Body, p.columns)
}

// ParseCSV разбирает CSV прайс-листа. Строки без категории или названия
// пропускаются; цена принимает запятую или точку как разделитель, нечисловая
// цена считается нулём.
func ParseCSV(r io.Reader, columns Columns) (PriceIndex, []Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка чтения заголовка CSV: %w", err)
	}

	famIdx, nameIdx, priceIdx := -1, -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case columns.Family:
			famIdx = i
		case columns.Name:
			nameIdx = i
		case columns.Price:
			priceIdx = i
		}
	}
	if famIdx < 0 || nameIdx < 0 {
		return nil, nil, fmt.Errorf("в CSV не найдены колонки '%s' и/или '%s'", columns.Family, columns.Name)
	}

	prices := make(PriceIndex)
	seen := make(map[PriceKey]bool)
	var rows []Row

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("ошибка чтения строки CSV: %w", err)
		}

		fam := fieldAt(record, famIdx)
		name := fieldAt(record, nameIdx)
		if fam == "" || name == "" {
			continue
		}

		price := parsePrice(fieldAt(record, priceIdx))

		key := PriceKey{Family: fam, Name: name}
		prices[key] = price
		if !seen[key] {
			seen[key] = true
			rows = append(rows, Row{Family: fam, Name: name, Price: price})
		}
	}
	return prices, rows, nil
}

// BuildSnapshot строит снимок каталога из плоского списка позиций.
// ID категорий и продуктов присваиваются детерминированно за один проход
// в порядке первого появления: одинаковый вход — одинаковые ID.
func BuildSnapshot(rows []Row) *models.CatalogSnapshot {
	snap := &models.CatalogSnapshot{
		FamilyProducts: make(map[int][]int),
	}

	famIDByName := make(map[string]int)
	for _, row := range rows {
		if _, ok := famIDByName[row.Family]; !ok {
			id := len(snap.Families) + 1
			famIDByName[row.Family] = id
			snap.Families = append(snap.Families, models.Family{ID: id, Name: row.Family})
		}
	}

	for i, row := range rows {
		prodID := i + 1
		famID := famIDByName[row.Family]
		snap.Products = append(snap.Products, models.Product{
			ID:       prodID,
			FamilyID: famID,
			Name:     row.Name,
		})
		snap.FamilyProducts[famID] = append(snap.FamilyProducts[famID], prodID)
	}
	return snap
}

func parsePrice(raw string) float64 {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return price
}

func fieldAt(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
