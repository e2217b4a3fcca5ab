package main

import (
	"github.com/Qilleer/debughampirdone/core"
	"github.com/Qilleer/debughampirdone/handlers"
	"github.com/Qilleer/debughampirdone/utils"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	utils.InitLogger(true)

	logger := utils.GetLogger()
	logger.Phase("Starting WhatsApp Session Bot...")

	// Initialize application
	startupManager := core.NewStartupManager()
	if err := startupManager.Initialize(); err != nil {
		logger.Fatal("Failed to initialize application: %v", err)
	}

	telegramBot := startupManager.GetTelegramBot()
	supervisor := startupManager.GetSupervisor()
	config := startupManager.GetConfig()
	userStore := startupManager.GetUserStore()

	// Pasang notifier Telegram ke supervisor supaya event session
	// (pairing code, QR, disconnect) sampai ke user
	supervisor.SetNotifier(handlers.NewTelegramNotifier(telegramBot))

	// Payment manager + background checker
	paymentManager := handlers.NewPaymentManager(config, userStore, telegramBot)
	paymentManager.StartChecker()

	// Restore session tersimpan setelah notifier siap
	go startupManager.RestoreSessions()

	// Router Telegram
	handler := handlers.NewHandler(telegramBot, supervisor, userStore, config, paymentManager)
	go runUpdateLoop(telegramBot, handler)

	logger.Success("Application started successfully")
	logger.Info("Press Ctrl+C to stop...")

	// Graceful shutdown saat SIGINT/SIGTERM
	shutdownManager := core.NewShutdownManager(telegramBot, supervisor)
	shutdownManager.WaitForShutdownSignal()
}

// runUpdateLoop menarik update Telegram dan meneruskannya ke router.
// Tiap update diproses di goroutine sendiri supaya flow panjang (blast, add
// kontak) tidak memblokir user lain.
func runUpdateLoop(telegramBot *tgbotapi.BotAPI, handler *handlers.Handler) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := telegramBot.GetUpdatesChan(u)

	utils.GetLogger().Success("Telegram bot handler active")

	for update := range updates {
		go handler.HandleUpdate(update)
	}
}
