package handlers

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Qilleer/debughampirdone/core"
	"github.com/Qilleer/debughampirdone/utils"
)

// showAdminManagementMenu menampilkan pilihan promote/demote
func (h *Handler) showAdminManagementMenu(chatID int64) {
	if h.requireConnected(chatID) == "" {
		return
	}

	text := `👑 **KELOLA ADMIN GRUP**

Promote menjadikan nomor sebagai admin, demote mencabutnya.

⚠️ Bot harus jadi admin di grup target.`

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬆️ Promote", "promote_admin"),
			tgbotapi.NewInlineKeyboardButtonData("⬇️ Demote", "demote_admin"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Menu Utama", "main_menu"),
		),
	)
	h.sendWithKeyboard(chatID, text, keyboard)
}

// startAdminFlow memulai flow promote/demote: minta daftar nomor dulu
func (h *Handler) startAdminFlow(chatID int64, promote bool) {
	if h.requireConnected(chatID) == "" {
		return
	}

	h.setState(chatID, &chatState{flow: flowAdminNumbers, promote: promote})

	action := "di-promote jadi admin"
	if !promote {
		action = "di-demote dari admin"
	}
	h.sendMarkdown(chatID, fmt.Sprintf(`👑 **INPUT NOMOR**

Kirim daftar nomor yang mau %s, satu per baris.

⚠️ Nomor harus sudah jadi member grup target.`, action))
}

// handleAdminNumbersInput menerima daftar nomor, lanjut minta target grup
func (h *Handler) handleAdminNumbersInput(chatID int64, text string) {
	numbers := utils.ParsePhoneNumbers(text)
	if len(numbers) == 0 {
		h.sendMarkdown(chatID, "❌ Tidak ada nomor valid. Coba kirim ulang ya!")
		return
	}

	state := h.getState(chatID)
	if state == nil {
		return
	}
	state.ctcNumbers = numbers
	state.flow = flowAdminTargets
	h.setState(chatID, state)

	h.sendMarkdown(chatID, fmt.Sprintf(`✅ %d nomor diterima.

Sekarang kirim nama grup target, satu per baris.
Ketik **all** untuk semua grup tempat bot jadi admin.`, len(numbers)))
}

// handleAdminTargetsInput menerima target grup lalu menjalankan promote/demote
func (h *Handler) handleAdminTargetsInput(chatID int64, text string) {
	state := h.getState(chatID)
	if state == nil {
		return
	}
	numbers := state.ctcNumbers
	promote := state.promote
	h.clearState(chatID)

	slotID := h.requireConnected(chatID)
	if slotID == "" {
		return
	}

	targets, err := h.resolveTargetGroups(chatID, slotID, text)
	if err != nil {
		h.sendMarkdown(chatID, fmt.Sprintf("❌ %v", err))
		return
	}

	action := "Promote"
	if !promote {
		action = "Demote"
	}
	h.sendMarkdown(chatID, fmt.Sprintf("⏳ %s %d nomor di %d grup...", action, len(numbers), len(targets)))

	go h.runAdminChange(chatID, slotID, numbers, targets, promote)
}

// runAdminChange menjalankan promote/demote satu per satu dengan laporan per nomor
func (h *Handler) runAdminChange(chatID int64, slotID string, numbers []string, targets []core.GroupSummary, promote bool) {
	title := "⬆️ **HASIL PROMOTE ADMIN**"
	if !promote {
		title = "⬇️ **HASIL DEMOTE ADMIN**"
	}

	var sb strings.Builder
	sb.WriteString(title + "\n")

	success, failed := 0, 0
	for _, group := range targets {
		sb.WriteString(fmt.Sprintf("\n👥 **%s**\n", group.Name))

		for _, number := range numbers {
			var err error
			if promote {
				err = h.sup.PromoteParticipant(chatID, slotID, group.JID, number)
			} else {
				err = h.sup.DemoteParticipant(chatID, slotID, group.JID, number)
			}

			if err != nil {
				failed++
				sb.WriteString(fmt.Sprintf("• `%s` ❌ %s\n", number, describeParticipantError(err)))
			} else {
				success++
				sb.WriteString(fmt.Sprintf("• `%s` ✅\n", number))
			}

			time.Sleep(interAddDelay)
		}
	}

	sb.WriteString(fmt.Sprintf("\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n✅ Berhasil: %d | ❌ Gagal: %d", success, failed))
	h.sendMarkdown(chatID, sb.String())
}
