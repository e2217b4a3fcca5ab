package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Qilleer/debughampirdone/core"
	"github.com/Qilleer/debughampirdone/utils"
)

// Delay antar add supaya tidak kena rate limit
const interAddDelay = 2 * time.Second

// startCtcFlow memulai flow add kontak: minta daftar nomor dulu
func (h *Handler) startCtcFlow(chatID int64) {
	if h.requireConnected(chatID) == "" {
		return
	}

	h.setState(chatID, &chatState{flow: flowCtcNumbers})
	h.sendMarkdown(chatID, `👤 **ADD KONTAK KE GRUP**

Kirim daftar nomor yang mau ditambahkan, satu per baris (boleh juga dipisah koma):

`+"```"+`
628123456789
628198765432
`+"```")
}

// handleCtcNumbersInput menerima daftar nomor, lanjut minta target grup
func (h *Handler) handleCtcNumbersInput(chatID int64, text string) {
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
	state.flow = flowCtcTargets
	h.setState(chatID, state)

	h.sendMarkdown(chatID, fmt.Sprintf(`✅ %d nomor diterima.

Sekarang kirim nama grup target, satu per baris.
Ketik **all** untuk semua grup tempat bot jadi admin.`, len(numbers)))
}

// handleCtcTargetsInput menerima target grup lalu menjalankan proses add
func (h *Handler) handleCtcTargetsInput(chatID int64, text string) {
	state := h.getState(chatID)
	if state == nil {
		return
	}
	numbers := state.ctcNumbers
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

	h.sendMarkdown(chatID, fmt.Sprintf("⏳ Menambahkan %d nomor ke %d grup...", len(numbers), len(targets)))

	go h.runAddContacts(chatID, slotID, numbers, targets)
}

// runAddContacts menjalankan add satu per satu dan melaporkan hasil per nomor
func (h *Handler) runAddContacts(chatID int64, slotID string, numbers []string, targets []core.GroupSummary) {
	var sb strings.Builder
	sb.WriteString("📊 **HASIL ADD KONTAK**\n")

	added, failed := 0, 0
	for _, group := range targets {
		sb.WriteString(fmt.Sprintf("\n👥 **%s**\n", group.Name))

		for _, number := range numbers {
			// Skip nomor yang sudah jadi member, hemat satu RPC mutasi
			if inGroup, err := h.sup.IsParticipantInGroup(chatID, slotID, group.JID, number); err == nil && inGroup {
				sb.WriteString(fmt.Sprintf("• `%s` ℹ️ sudah member\n", number))
				continue
			}

			err := h.sup.AddParticipant(chatID, slotID, group.JID, number)
			switch {
			case err == nil:
				added++
				sb.WriteString(fmt.Sprintf("• `%s` ✅\n", number))
			default:
				failed++
				sb.WriteString(fmt.Sprintf("• `%s` ❌ %s\n", number, describeParticipantError(err)))
			}

			time.Sleep(interAddDelay)
		}
	}

	sb.WriteString(fmt.Sprintf("\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n✅ Berhasil: %d | ❌ Gagal: %d", added, failed))
	h.sendMarkdown(chatID, sb.String())
}

// resolveTargetGroups menerjemahkan input target ("all" atau daftar nama) jadi
// list grup. Untuk daftar nama, match case-insensitive terhadap nama grup.
func (h *Handler) resolveTargetGroups(chatID int64, slotID, input string) ([]core.GroupSummary, error) {
	groups, err := h.sup.FetchGroups(chatID, slotID)
	if err != nil {
		return nil, fmt.Errorf("gagal ambil daftar grup: %w", err)
	}

	if strings.EqualFold(strings.TrimSpace(input), "all") {
		var admins []core.GroupSummary
		for _, group := range groups {
			if group.IsSelfAdmin {
				admins = append(admins, group)
			}
		}
		if len(admins) == 0 {
			return nil, errors.New("bot tidak jadi admin di grup mana pun")
		}
		return admins, nil
	}

	names := utils.ParseGroupNames(input)
	byName := make(map[string]core.GroupSummary, len(groups))
	for _, group := range groups {
		byName[strings.ToLower(group.Name)] = group
	}

	var matched []core.GroupSummary
	var missing []string
	for _, name := range names {
		if group, ok := byName[strings.ToLower(name)]; ok {
			matched = append(matched, group)
		} else {
			missing = append(missing, name)
		}
	}

	if len(matched) == 0 {
		return nil, errors.New("tidak ada nama grup yang cocok")
	}
	if len(missing) > 0 {
		h.sendMarkdown(chatID, "⚠️ Grup tidak ditemukan, dilewati: "+strings.Join(missing, ", "))
	}
	return matched, nil
}

// describeParticipantError menerjemahkan error mutasi participant jadi pesan pendek
func describeParticipantError(err error) string {
	var participantErr *core.ParticipantError
	if errors.As(err, &participantErr) {
		return participantErr.Code.Reason()
	}
	switch {
	case errors.Is(err, core.ErrNotAdmin):
		return "Bot bukan admin di grup ini"
	case errors.Is(err, core.ErrTimeout):
		return "Timeout, coba lagi nanti"
	case errors.Is(err, core.ErrNotConnected):
		return "Session terputus"
	default:
		return err.Error()
	}
}
