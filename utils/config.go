package utils

import (
	"encoding/json"
	"os"
	"time"
)

type Config struct {
	TelegramToken  string          `json:"telegram_token"`
	AdminIDs       []int64         `json:"admin_ids"`        // List admin users
	AllowedUserIDs []int64         `json:"allowed_user_ids"` // Kosong = semua user boleh pakai bot
	Payment        *PaymentConfig  `json:"payment"`
	Settings       *ConfigSettings `json:"settings,omitempty"` // Optional settings
}

type PaymentConfig struct {
	OkeConnectID        string `json:"okeconnect_id"`
	OkeConnectKey       string `json:"okeconnect_key"`
	QRISText            string `json:"qris_text"` // Static QRIS payload dari merchant
	FirstSlotPrice      int    `json:"first_slot_price,omitempty"`
	AdditionalSlotPrice int    `json:"additional_slot_price,omitempty"`
	PremiumDurationDays int    `json:"premium_duration_days,omitempty"`
	PaymentTimeoutMin   int    `json:"payment_timeout_minutes,omitempty"`
}

type ConfigSettings struct {
	ReconnectDelaySeconds int    `json:"reconnect_delay_seconds,omitempty"`
	MaxReconnectAttempts  int    `json:"max_reconnect_attempts,omitempty"`
	LogLevel              string `json:"log_level,omitempty"`
}

// LoadConfig memuat konfigurasi dari file config/config.json
func LoadConfig() (*Config, error) {
	file, err := os.ReadFile("config/config.json")
	if err != nil {
		// Fallback ke config.json di root (backward compatibility)
		file, err = os.ReadFile("config.json")
		if err != nil {
			return nil, err
		}
	}

	var config Config
	err = json.Unmarshal(file, &config)
	if err != nil {
		return nil, err
	}

	config.applyDefaults()
	return &config, nil
}

// applyDefaults mengisi nilai default untuk field yang tidak di-set
func (c *Config) applyDefaults() {
	if c.Payment == nil {
		c.Payment = &PaymentConfig{}
	}
	if c.Payment.FirstSlotPrice == 0 {
		c.Payment.FirstSlotPrice = 15000
	}
	if c.Payment.AdditionalSlotPrice == 0 {
		c.Payment.AdditionalSlotPrice = 5000
	}
	if c.Payment.PremiumDurationDays == 0 {
		c.Payment.PremiumDurationDays = 30
	}
	if c.Payment.PaymentTimeoutMin == 0 {
		c.Payment.PaymentTimeoutMin = 15
	}
	if c.Settings == nil {
		c.Settings = &ConfigSettings{}
	}
	if c.Settings.ReconnectDelaySeconds == 0 {
		c.Settings.ReconnectDelaySeconds = 5
	}
	if c.Settings.MaxReconnectAttempts == 0 {
		c.Settings.MaxReconnectAttempts = 3
	}
}

// ReconnectDelay mengembalikan delay reconnect sebagai time.Duration
func (c *Config) ReconnectDelay() time.Duration {
	return time.Duration(c.Settings.ReconnectDelaySeconds) * time.Second
}

// PaymentTimeout mengembalikan batas waktu pembayaran sebagai time.Duration
func (c *Config) PaymentTimeout() time.Duration {
	return time.Duration(c.Payment.PaymentTimeoutMin) * time.Minute
}

// IsAdmin checks if a user ID is an admin
func (c *Config) IsAdmin(userID int64) bool {
	for _, adminID := range c.AdminIDs {
		if adminID == userID {
			return true
		}
	}
	return false
}

// IsAllowed checks if a user ID is allowed to use the bot
// List kosong berarti bot terbuka untuk semua user (setiap user kelola slot-nya sendiri)
func (c *Config) IsAllowed(userID int64) bool {
	if len(c.AllowedUserIDs) == 0 {
		return true
	}
	for _, allowedID := range c.AllowedUserIDs {
		if allowedID == userID {
			return true
		}
	}
	return false
}

// CheckAccess checks if user has access (either admin or allowed user)
func (c *Config) CheckAccess(userID int64) bool {
	return c.IsAdmin(userID) || c.IsAllowed(userID)
}
