package core

import (
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Qilleer/debughampirdone/utils"
)

// ShutdownManager mengelola graceful shutdown aplikasi
type ShutdownManager struct {
	logger      *utils.AppLogger
	telegramBot *tgbotapi.BotAPI
	supervisor  *Supervisor
}

// NewShutdownManager membuat ShutdownManager baru
func NewShutdownManager(telegramBot *tgbotapi.BotAPI, supervisor *Supervisor) *ShutdownManager {
	return &ShutdownManager{
		logger:      utils.GetLogger(),
		telegramBot: telegramBot,
		supervisor:  supervisor,
	}
}

// WaitForShutdownSignal menunggu signal shutdown (SIGINT/SIGTERM)
func (sm *ShutdownManager) WaitForShutdownSignal() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	sm.logger.Warn("Received signal: %v", sig)
	sm.Shutdown()
}

// Shutdown melakukan graceful shutdown
func (sm *ShutdownManager) Shutdown() {
	sm.logger.Phase("Shutting down gracefully...")

	// Stop terima update Telegram dulu biar tidak ada command baru masuk
	if sm.telegramBot != nil {
		sm.telegramBot.StopReceivingUpdates()
		sm.logger.Info("Telegram updates stopped")
	}

	// Putuskan semua koneksi WhatsApp. Kredensial tidak disentuh, session
	// akan di-restore lagi saat startup berikutnya.
	if sm.supervisor != nil {
		count := sm.supervisor.DisconnectAll()
		sm.logger.Info("Disconnected %d WhatsApp session(s)", count)
	}

	sm.logger.Success("Shutdown complete. Goodbye! 👋")
	os.Exit(0)
}
