package handlers

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Qilleer/debughampirdone/core"
)

// showAutoAcceptMenu menampilkan status auto-accept slot aktif + tombol toggle
func (h *Handler) showAutoAcceptMenu(chatID int64) {
	if !h.requirePremium(chatID) {
		return
	}

	slotID := h.sup.ResolveSlot(chatID, "")
	enabled := false
	if data, err := h.store.LoadUser(chatID); err == nil {
		if slot := data.Sessions[slotID]; slot != nil {
			enabled = slot.AutoAccept.Enabled
		}
	}

	status := "❌ **OFF**"
	if enabled {
		status = "✅ **ON**"
	}

	connected := ""
	if !h.sup.IsSlotConnected(chatID, slotID) {
		connected = "\n⚠️ Slot ini belum terhubung. Setting tetap tersimpan dan langsung jalan setelah login."
	}

	text := fmt.Sprintf(`✅ **AUTO ACCEPT: %s**

Status: %s

Kalau ON, semua permintaan join di grup tempat bot jadi admin akan di-approve otomatis. Pending request lama juga langsung disapu saat fitur dinyalakan.%s`,
		core.SlotLabel(slotID), status, connected)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Nyalakan", "autoaccept_on"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Matikan", "autoaccept_off"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Menu Utama", "main_menu"),
		),
	)

	h.sendWithKeyboard(chatID, text, keyboard)
}

// handleAutoAcceptToggle mengubah setting auto-accept slot aktif
func (h *Handler) handleAutoAcceptToggle(chatID int64, enabled bool) {
	if !h.requirePremium(chatID) {
		return
	}

	slotID, err := h.sup.ToggleAutoAccept(chatID, enabled, "")
	if err != nil {
		h.sendMarkdown(chatID, fmt.Sprintf("❌ Gagal menyimpan setting: %v", err))
		return
	}

	if enabled {
		h.sendMarkdown(chatID, "✅ Auto accept **ON** untuk "+core.SlotLabel(slotID)+".\n\nPending request lama sedang disapu...")
	} else {
		h.sendMarkdown(chatID, "❌ Auto accept **OFF** untuk "+core.SlotLabel(slotID)+".")
	}
}
