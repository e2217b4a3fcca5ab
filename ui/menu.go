package ui

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Qilleer/debughampirdone/utils"
)

// SlotView adalah data satu slot untuk ditampilkan di layar
type SlotView struct {
	SlotID       string
	Label        string
	SessionName  string
	Connected    bool
	IsActiveSlot bool
	AutoAccept   bool
	LastConnect  string
}

// MenuView adalah data untuk dashboard utama
type MenuView struct {
	UserID         int64
	PremiumExpiry  string
	TotalSlots     int
	UsedSlots      int
	ActiveSlot     SlotView
	ConnectedCount int
}

// ShowMainMenu menampilkan dashboard utama untuk user premium
func ShowMainMenu(bot *tgbotapi.BotAPI, chatID int64, view MenuView) {
	connIcon := "🔴"
	connText := "Belum Terhubung"
	if view.ActiveSlot.Connected {
		connIcon = "🟢"
		connText = "Terhubung"
	}

	sessionName := view.ActiveSlot.SessionName
	if sessionName == "" {
		sessionName = "-"
	}

	autoAccept := "❌ OFF"
	if view.ActiveSlot.AutoAccept {
		autoAccept = "✅ ON"
	}

	timeStr := utils.FormatTimeForUserSafe(chatID, "15:04:05")
	dateStr := utils.FormatTimeForUserSafe(chatID, "02 Jan 2006")

	menu := fmt.Sprintf(`🎯 **DASHBOARD UTAMA**

━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
📊 **STATUS**
━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━

👑 Premium sampai: %s
📱 Slot: %d/%d terpakai, %d terhubung

%s **Slot Aktif:** %s (%s)
🏷️ **Session:** %s
✅ **Auto Accept:** %s

━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
🕐 %s | 📅 %s
━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━

Pilih fitur di bawah:`,
		view.PremiumExpiry,
		view.UsedSlots, view.TotalSlots, view.ConnectedCount,
		connIcon, view.ActiveSlot.Label, connText,
		sessionName,
		autoAccept,
		timeStr, dateStr)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔐 Login WhatsApp", "login"),
			tgbotapi.NewInlineKeyboardButtonData("📱 Kelola Session", "session_manager"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Auto Accept", "auto_accept"),
			tgbotapi.NewInlineKeyboardButtonData("📊 Status", "status"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📢 Blast Pesan", "blast"),
			tgbotapi.NewInlineKeyboardButtonData("👤 Add Kontak", "add_ctc"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👑 Kelola Admin", "admin_management"),
			tgbotapi.NewInlineKeyboardButtonData("✏️ Rename Grup", "rename_groups"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Perpanjang Premium", "renew_premium"),
			tgbotapi.NewInlineKeyboardButtonData("🚪 Logout", "logout"),
		),
	)

	msg := tgbotapi.NewMessage(chatID, menu)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboard
	bot.Send(msg)
}

// ShowPremiumOffer menampilkan layar penawaran untuk user yang belum premium
// (atau premiumnya sudah expired)
func ShowPremiumOffer(bot *tgbotapi.BotAPI, chatID int64, firstSlotPrice int, wasPremium bool) {
	header := "✨ **Selamat Datang!**"
	if wasPremium {
		header = "⏰ **PREMIUM EXPIRED**"
	}

	text := fmt.Sprintf(`%s

🤖 **WhatsApp Session Bot**

Bot ini memungkinkan kamu:
• Mengelola beberapa akun WhatsApp dari Telegram
• Auto accept permintaan join grup
• Blast pesan ke semua grup
• Add kontak & kelola admin grup secara massal
• Rename grup massal

━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
💰 **HARGA**
━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━

👑 Premium 30 hari + 1 slot: Rp %s

Pembayaran otomatis via QRIS (semua e-wallet & m-banking).`,
		header, formatRupiah(firstSlotPrice))

	buyLabel := "💳 Beli Premium"
	if wasPremium {
		buyLabel = "🔄 Perpanjang Premium"
	}
	buyAction := "buy_premium_first"
	if wasPremium {
		buyAction = "renew_premium"
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(buyLabel, buyAction),
		),
	)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboard
	bot.Send(msg)
}

// ShowSessionManager menampilkan daftar slot dengan aksi per slot
func ShowSessionManager(bot *tgbotapi.BotAPI, chatID int64, slots []SlotView, additionalSlotPrice int, quotaFull bool) {
	var sb strings.Builder
	sb.WriteString("📱 **KELOLA SESSION**\n\n")

	if len(slots) == 0 {
		sb.WriteString("Belum ada slot session. Slot pertama dibuat otomatis setelah beli premium.\n")
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, slot := range slots {
		icon := "🔴"
		if slot.Connected {
			icon = "🟢"
		}
		marker := ""
		if slot.IsActiveSlot {
			marker = " ⭐"
		}
		name := slot.SessionName
		if name == "" {
			name = "(belum login)"
		}
		sb.WriteString(fmt.Sprintf("%s **%s**%s - %s\n", icon, slot.Label, marker, name))
		if slot.LastConnect != "" {
			sb.WriteString(fmt.Sprintf("   🕐 Terakhir connect: %s\n", slot.LastConnect))
		}
		sb.WriteString("\n")

		row := []tgbotapi.InlineKeyboardButton{}
		if !slot.IsActiveSlot {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData("⭐ Aktifkan "+slot.Label, "switch_slot_"+slot.SlotID))
		}
		if slot.Connected {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData("🚪 Logout "+slot.Label, "logout_slot_"+slot.SlotID))
		} else {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData("🔐 Login "+slot.Label, "login_slot_"+slot.SlotID))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(row...))
	}

	if quotaFull {
		sb.WriteString(fmt.Sprintf("💡 Kuota slot penuh. Slot tambahan: Rp %s\n", formatRupiah(additionalSlotPrice)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ Beli Slot Tambahan", "buy_additional_slot"),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Menu Utama", "main_menu"),
	))

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	bot.Send(msg)
}

// ShowLogoutConfirm menampilkan konfirmasi sebelum logout slot
func ShowLogoutConfirm(bot *tgbotapi.BotAPI, chatID int64, slotID, label string) {
	text := fmt.Sprintf(`🚪 **KONFIRMASI LOGOUT**

Yakin mau logout **%s**?

⚠️ Data login WhatsApp slot ini akan dihapus, untuk pakai lagi harus pairing ulang.`, label)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Ya, Logout", "logout_confirm_"+slotID),
			tgbotapi.NewInlineKeyboardButtonData("❌ Batal", "logout_cancel"),
		),
	)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboard
	bot.Send(msg)
}

// HelpText adalah isi /help
func HelpText() string {
	return `📖 **BANTUAN**

━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
📋 **FITUR**
━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━

🔐 **Login** - Hubungkan akun WhatsApp (pairing code / QR)
📱 **Kelola Session** - Multi slot, switch & logout per slot
✅ **Auto Accept** - Approve otomatis permintaan join grup
📢 **Blast** - Kirim pesan ke semua grup dengan delay aman
👤 **Add Kontak** - Tambahkan nomor ke grup secara massal
👑 **Kelola Admin** - Promote/demote admin massal
✏️ **Rename Grup** - Ganti nama grup massal dengan penomoran

━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
⚙️ **COMMAND**
━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━

/menu - Menu utama
/stopblast - Hentikan blast yang sedang jalan
/help - Bantuan ini

💡 Semua fitur butuh premium aktif.`
}

// formatRupiah memformat angka jadi "15.000"
func formatRupiah(amount int) string {
	s := fmt.Sprintf("%d", amount)
	var sb strings.Builder
	for i, digit := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			sb.WriteByte('.')
		}
		sb.WriteRune(digit)
	}
	return sb.String()
}
