package utils

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	waLog "go.mau.fi/whatsmeow/util/log"
)

// AppLogger adalah logger aplikasi: satu baris per event dengan ikon level.
// Supervisor, handler Telegram, dan payment manager semua menulis lewat sini.
type AppLogger struct {
	prefix string
	debug  bool
}

var globalLogger *AppLogger

// InitLogger menyiapkan logger global. debug=true mengaktifkan output Debug.
func InitLogger(debug bool) {
	globalLogger = &AppLogger{prefix: "[BOT]", debug: debug}
}

// GetLogger mengembalikan logger global, aman dipanggil sebelum InitLogger
func GetLogger() *AppLogger {
	if globalLogger == nil {
		globalLogger = &AppLogger{prefix: "[BOT]"}
	}
	return globalLogger
}

func (l *AppLogger) logf(icon, format string, args ...interface{}) {
	log.Printf("%s %s %s", l.prefix, icon, fmt.Sprintf(format, args...))
}

// Info mencatat event operasional normal
func (l *AppLogger) Info(format string, args ...interface{}) {
	l.logf("ℹ️ ", format, args...)
}

// Success mencatat operasi yang selesai dengan baik
func (l *AppLogger) Success(format string, args ...interface{}) {
	l.logf("✅", format, args...)
}

// Warn mencatat kondisi tidak normal yang masih bisa jalan terus
func (l *AppLogger) Warn(format string, args ...interface{}) {
	l.logf("⚠️ ", format, args...)
}

// Error mencatat kegagalan operasi
func (l *AppLogger) Error(format string, args ...interface{}) {
	l.logf("❌", format, args...)
}

// Debug mencatat detail internal, hanya keluar saat debug mode
func (l *AppLogger) Debug(format string, args ...interface{}) {
	if l.debug {
		l.logf("🔍", format, args...)
	}
}

// Phase menandai fase startup dengan timestamp
func (l *AppLogger) Phase(phase string) {
	log.Printf("%s 🚀 [%s] %s", l.prefix, time.Now().Format("15:04:05"), phase)
}

// Fatal mencatat error lalu menghentikan proses
func (l *AppLogger) Fatal(format string, args ...interface{}) {
	l.logf("❌ FATAL:", format, args...)
	os.Exit(1)
}

// Pola error whatsmeow yang diredam. Session yang sehat tetap memunculkan
// error sinkronisasi app state dan retry receipt secara berkala, dan dari
// sisi bot tidak ada yang bisa ditindaklanjuti, jadi jangan banjiri log.
var mutedClientErrors = []string{
	"mismatching lthash",
	"app state",
	"retry receipt",
}

// FilteredLogger membungkus logger whatsmeow dan membuang error yang
// masuk daftar redam. Level lain diteruskan apa adanya.
type FilteredLogger struct {
	Logger waLog.Logger
}

func (fl *FilteredLogger) Errorf(format string, args ...interface{}) {
	message := strings.ToLower(fmt.Sprintf(format, args...))
	for _, muted := range mutedClientErrors {
		if strings.Contains(message, muted) {
			return
		}
	}
	fl.Logger.Errorf(format, args...)
}

func (fl *FilteredLogger) Warnf(format string, args ...interface{}) {
	fl.Logger.Warnf(format, args...)
}

func (fl *FilteredLogger) Infof(format string, args ...interface{}) {
	fl.Logger.Infof(format, args...)
}

func (fl *FilteredLogger) Debugf(format string, args ...interface{}) {
	fl.Logger.Debugf(format, args...)
}

func (fl *FilteredLogger) Sub(module string) waLog.Logger {
	return &FilteredLogger{Logger: fl.Logger.Sub(module)}
}
