package main

import (
	"context"
	"log"
	"net/http"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"priemka/internal/api"
	"priemka/internal/catalog"
	"priemka/internal/config"
	"priemka/internal/drafts"
	"priemka/internal/handlers"
	"priemka/internal/ledger"
	"priemka/internal/session"
	"priemka/internal/telegram_api"
)

func main() {
	// --- Блок инициализации ---
	if err := godotenv.Load(); err != nil {
		log.Println("Предупреждение: не удалось загрузить файл .env. Переменные окружения должны быть установлены иным способом.")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось загрузить конфигурацию: %v", err)
	}

	if err := telegram_api.InitBot(cfg.TelegramToken, cfg.AppEnv == "dev"); err != nil {
		log.Fatalf("Критическая ошибка: не удалось инициализировать Telegram бота: %v", err)
	}
	if telegram_api.Client == nil || telegram_api.Client.GetAPI() == nil {
		log.Fatalf("Критическая ошибка: Telegram API клиент не был корректно инициализирован.")
	}
	botAPI := telegram_api.Client.GetAPI()

	catalogProvider := catalog.NewProvider(cfg.PricesCSVURL, catalog.Columns{
		Family: cfg.ColumnFamily,
		Name:   cfg.ColumnName,
		Price:  cfg.ColumnPrice,
	}, cfg.CatalogTTL)

	sessionManager := session.NewSessionManager()
	draftRegistry := drafts.NewRegistry()
	ledgerClient := ledger.NewClient(cfg.LedgerURL)

	botHandler := handlers.NewBotHandler(handlers.HandlerDependencies{
		Config:         cfg,
		BotClient:      telegram_api.Client,
		SessionManager: sessionManager,
		Catalog:        catalogProvider,
		Drafts:         draftRegistry,
	})

	// Координатор получает обработчик как публикатор финальных итогов,
	// обработчик — координатор для ручной фиксации.
	coordinator := drafts.NewCoordinator(draftRegistry, sessionManager, ledgerClient, botHandler)
	botHandler.SetCoordinator(coordinator)

	// Фоновая автофиксация залежавшихся черновиков.
	sweeper := drafts.NewSweeper(draftRegistry, coordinator, cfg.AutoFinalizeAfter, cfg.SweepInterval)
	go sweeper.Run(context.Background())

	// --- Сервисный HTTP API ---
	apiRouter := chi.NewRouter()
	apiRouter.Use(middleware.Logger)
	apiRouter.Use(middleware.Recoverer)
	apiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Ops-Token"},
		MaxAge:         300,
	}))

	api.SetupRoutes(apiRouter, api.ApiDependencies{
		Config:  cfg,
		Drafts:  draftRegistry,
		Catalog: catalogProvider,
	})

	go func() {
		log.Printf("Запуск сервисного HTTP API на порту %s", cfg.Port)
		if err := http.ListenAndServe(":"+cfg.Port, apiRouter); err != nil {
			log.Fatalf("КРИТИЧЕСКАЯ ОШИБКА: не удалось запустить HTTP-сервер: %v", err)
		}
	}()

	// --- Запуск самого бота ---
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := botAPI.GetUpdatesChan(u)

	log.Println("Бот и сервисный API запущены и готовы к работе...")

	// События одного пользователя обрабатываются строго по очереди через
	// его личный канал; разные пользователи идут параллельно. Карту каналов
	// трогает только этот цикл, поэтому замок не нужен.
	chatQueues := make(map[int64]chan tgbotapi.Update)
	for update := range updates {
		var chatID int64
		switch {
		case update.Message != nil:
			log.Printf("[%s] %s", update.Message.From.UserName, update.Message.Text)
			chatID = update.Message.Chat.ID
		case update.CallbackQuery != nil:
			log.Printf("Callback от %s: %s", update.CallbackQuery.From.UserName, update.CallbackQuery.Data)
			chatID = update.CallbackQuery.Message.Chat.ID
		default:
			continue
		}

		queue, ok := chatQueues[chatID]
		if !ok {
			queue = make(chan tgbotapi.Update, 16)
			chatQueues[chatID] = queue
			go func(q chan tgbotapi.Update) {
				for u := range q {
					if u.Message != nil {
						botHandler.HandleMessage(u)
					} else if u.CallbackQuery != nil {
						botHandler.HandleCallback(u)
					}
				}
			}(queue)
		}
		queue <- update
	}
}
