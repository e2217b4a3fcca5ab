package utils

import (
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType int

const (
	ErrorConnection ErrorType = iota
	ErrorTimeout
	ErrorValidation
	ErrorPayment
	ErrorUnknown
)

// FormatUserError formats error messages in a user-friendly way
func FormatUserError(errType ErrorType, err error, context string) string {
	var icon, title, description, solutions string

	switch errType {
	case ErrorConnection:
		icon = "🔌"
		title = "MASALAH KONEKSI"
		description = "Koneksi ke WhatsApp terputus atau bermasalah."
		solutions = `**Solusi:**
• Periksa koneksi internet Anda
• Cek status session di /menu
• Tunggu beberapa saat dan coba lagi
• Jika masalah berlanjut, logout dan login ulang slot tersebut`

	case ErrorTimeout:
		icon = "⏱️"
		title = "TIMEOUT"
		description = "Operasi memakan waktu terlalu lama."
		solutions = `**Solusi:**
• Koneksi internet mungkin lambat
• Coba lagi dalam beberapa saat
• Periksa status server WhatsApp`

	case ErrorValidation:
		icon = "⚠️"
		title = "INPUT TIDAK VALID"
		description = "Data yang Anda masukkan tidak sesuai format."
		solutions = `**Solusi:**
• Periksa kembali format input Anda
• Lihat contoh yang diberikan di prompt`

	case ErrorPayment:
		icon = "💳"
		title = "MASALAH PEMBAYARAN"
		description = "Terjadi kesalahan saat memproses pembayaran."
		solutions = `**Solusi:**
• Coba cek status lagi dalam 1-2 menit
• Pastikan nominal transfer persis sesuai tagihan
• Hubungi admin kalau saldo sudah terpotong`

	default:
		icon = "❌"
		title = "TERJADI KESALAHAN"
		description = "Terjadi kesalahan yang tidak diketahui."
		solutions = `**Solusi:**
• Coba operasi kembali
• Hubungi admin jika masalah berlanjut`
	}

	// Build error message
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("%s **%s**\n\n", icon, title))
	msg.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")
	msg.WriteString(fmt.Sprintf("%s\n\n", description))

	if context != "" {
		msg.WriteString(fmt.Sprintf("**Konteks:** %s\n\n", context))
	}

	if err != nil {
		errorMsg := err.Error()
		// Sanitize technical error messages
		if len(errorMsg) > 100 {
			errorMsg = errorMsg[:100] + "..."
		}
		msg.WriteString(fmt.Sprintf("**Detail:** `%s`\n\n", errorMsg))
	}

	msg.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	msg.WriteString(fmt.Sprintf("%s\n", solutions))
	msg.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")
	msg.WriteString("💡 Gunakan /help untuk bantuan lebih lanjut")

	return msg.String()
}

// FormatError is a smart error formatter that auto-detects error type
func FormatError(err error) string {
	if err == nil {
		return "Terjadi kesalahan yang tidak diketahui"
	}

	errStr := err.Error()

	if strings.Contains(errStr, "terhubung") || strings.Contains(errStr, "connection") || strings.Contains(errStr, "disconnect") {
		return FormatUserError(ErrorConnection, err, "")
	}
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline") {
		return FormatUserError(ErrorTimeout, err, "")
	}
	if strings.Contains(errStr, "gateway") || strings.Contains(errStr, "pembayaran") {
		return FormatUserError(ErrorPayment, err, "")
	}

	return FormatUserError(ErrorUnknown, err, "")
}
