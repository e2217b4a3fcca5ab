package core

import (
	"fmt"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Qilleer/debughampirdone/utils"
)

// StartupManager mengelola proses startup aplikasi
type StartupManager struct {
	config      *utils.Config
	logger      *utils.AppLogger
	telegramBot *tgbotapi.BotAPI
	userStore   *utils.UserStore
	supervisor  *Supervisor
}

// NewStartupManager membuat StartupManager baru
func NewStartupManager() *StartupManager {
	return &StartupManager{
		logger: utils.GetLogger(),
	}
}

// Initialize melakukan inisialisasi awal aplikasi
func (sm *StartupManager) Initialize() error {
	sm.logger.Phase("Initializing Application...")

	// Phase 1: Load Configuration
	if err := sm.loadConfiguration(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Phase 2: Initialize Telegram Bot
	if err := sm.initializeTelegram(); err != nil {
		return fmt.Errorf("failed to initialize Telegram: %w", err)
	}

	// Phase 3: Initialize Stores
	if err := sm.initializeStores(); err != nil {
		return fmt.Errorf("failed to initialize stores: %w", err)
	}

	// Phase 4: Initialize Session Supervisor
	if err := sm.initializeSupervisor(); err != nil {
		return fmt.Errorf("failed to initialize supervisor: %w", err)
	}

	sm.logger.Success("Application initialized successfully")
	return nil
}

// loadConfiguration memuat konfigurasi aplikasi
func (sm *StartupManager) loadConfiguration() error {
	sm.logger.Phase("Loading configuration...")

	config, err := utils.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if config.TelegramToken == "" {
		return fmt.Errorf("telegram_token kosong di config/config.json")
	}

	sm.config = config
	sm.logger.Success("Configuration loaded")
	return nil
}

// initializeTelegram menginisialisasi Telegram bot
func (sm *StartupManager) initializeTelegram() error {
	sm.logger.Phase("Initializing Telegram bot...")

	telegramBot, err := tgbotapi.NewBotAPI(sm.config.TelegramToken)
	if err != nil {
		return fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	sm.telegramBot = telegramBot
	sm.logger.Success("Telegram bot initialized (@%s)", telegramBot.Self.UserName)
	return nil
}

// initializeStores menyiapkan user store dan folder credential session
func (sm *StartupManager) initializeStores() error {
	sm.logger.Phase("Initializing stores...")

	userStore, err := utils.NewUserStore("")
	if err != nil {
		return fmt.Errorf("failed to create user store: %w", err)
	}
	sm.userStore = userStore

	if err := os.MkdirAll(utils.SessionsRoot(), 0755); err != nil {
		return fmt.Errorf("failed to create sessions directory: %w", err)
	}

	sm.logger.Success("Stores initialized")
	return nil
}

// initializeSupervisor membuat connection supervisor
func (sm *StartupManager) initializeSupervisor() error {
	sm.logger.Phase("Initializing session supervisor...")

	sm.supervisor = NewSupervisor(sm.userStore, nil, sm.config)

	sm.logger.Success("Session supervisor initialized")
	return nil
}

// RestoreSessions menghidupkan kembali session tersimpan milik user premium.
// Dipanggil dari main setelah notifier Telegram terpasang, supaya notifikasi
// terminal failure saat restore tetap bisa terkirim.
func (sm *StartupManager) RestoreSessions() {
	sm.logger.Phase("Restoring saved sessions...")
	restored := sm.supervisor.RestoreAllSessions()
	for _, slot := range restored {
		sm.logger.Info("Restored: owner=%d slot=%s", slot.OwnerID, slot.SlotID)
	}
}

// GetTelegramBot mendapatkan Telegram bot instance
func (sm *StartupManager) GetTelegramBot() *tgbotapi.BotAPI {
	return sm.telegramBot
}

// GetSupervisor mendapatkan session supervisor
func (sm *StartupManager) GetSupervisor() *Supervisor {
	return sm.supervisor
}

// GetUserStore mendapatkan user store
func (sm *StartupManager) GetUserStore() *utils.UserStore {
	return sm.userStore
}

// GetConfig mendapatkan konfigurasi aplikasi
func (sm *StartupManager) GetConfig() *utils.Config {
	return sm.config
}
