package ui

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ShowLoginPrompt menampilkan instruksi login untuk slot yang dipilih
func ShowLoginPrompt(bot *tgbotapi.BotAPI, chatID int64, slotLabel string) {
	text := `🔐 **LOGIN WHATSAPP: ` + slotLabel + `**

━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
📋 **CARA LOGIN**
━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━

1️⃣ Kirim nomor WhatsApp kamu (contoh: 628123456789)
    → Bot kirim **pairing code** 8 digit

2️⃣ Atau ketik **qr**
    → Bot kirim **QR code** untuk di-scan

Lalu buka WhatsApp > Perangkat Tertaut > Tautkan Perangkat.`

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Batal", "cancel_input"),
		),
	)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboard
	bot.Send(msg)
}
