package handlers

import (
	"fmt"
	"strings"
	"time"
)

// Delay antar rename supaya tidak kena rate limit
const interRenameDelay = 2 * time.Second

// startRenameFlow memulai flow rename grup massal: minta target dulu
func (h *Handler) startRenameFlow(chatID int64) {
	if h.requireConnected(chatID) == "" {
		return
	}

	h.setState(chatID, &chatState{flow: flowRenameTargets})
	h.sendMarkdown(chatID, `✏️ **RENAME GRUP MASSAL**

Kirim nama grup yang mau di-rename, satu per baris.
Ketik **all** untuk semua grup tempat bot jadi admin.

Urutan penomoran mengikuti urutan natural nama grup.`)
}

// handleRenameTargetsInput menerima target, lanjut minta base name
func (h *Handler) handleRenameTargetsInput(chatID int64, text string) {
	state := h.getState(chatID)
	if state == nil {
		return
	}

	slotID := h.requireConnected(chatID)
	if slotID == "" {
		h.clearState(chatID)
		return
	}

	targets, err := h.resolveTargetGroups(chatID, slotID, text)
	if err != nil {
		h.sendMarkdown(chatID, fmt.Sprintf("❌ %v", err))
		return
	}

	names := make([]string, 0, len(targets))
	for _, group := range targets {
		names = append(names, group.Name)
	}
	state.renameTargets = names
	state.flow = flowRenameBase
	h.setState(chatID, state)

	h.sendMarkdown(chatID, fmt.Sprintf(`✅ %d grup dipilih.

Sekarang kirim nama dasar yang baru. Grup akan dinamai berurutan:

`+"`<nama> 1`, `<nama> 2`, dst.", len(targets)))
}

// handleRenameBaseInput menerima base name lalu menjalankan rename
func (h *Handler) handleRenameBaseInput(chatID int64, text string) {
	state := h.getState(chatID)
	if state == nil {
		return
	}
	targetNames := state.renameTargets
	h.clearState(chatID)

	baseName := strings.TrimSpace(text)
	if baseName == "" {
		h.sendMarkdown(chatID, "❌ Nama dasar tidak boleh kosong.")
		return
	}

	slotID := h.requireConnected(chatID)
	if slotID == "" {
		return
	}

	h.sendMarkdown(chatID, fmt.Sprintf("⏳ Rename %d grup jadi **%s N**...", len(targetNames), baseName))

	go h.runRename(chatID, slotID, targetNames, baseName)
}

// runRename menjalankan rename berurutan dengan penomoran
func (h *Handler) runRename(chatID int64, slotID string, targetNames []string, baseName string) {
	// Resolve ulang JID dari nama, urutan FetchGroups sudah natural
	groups, err := h.sup.FetchGroups(chatID, slotID)
	if err != nil {
		h.sendMarkdown(chatID, fmt.Sprintf("❌ Rename gagal: %v", err))
		return
	}

	wanted := make(map[string]bool, len(targetNames))
	for _, name := range targetNames {
		wanted[strings.ToLower(name)] = true
	}

	var sb strings.Builder
	sb.WriteString("✏️ **HASIL RENAME**\n\n")

	counter := 0
	failed := 0
	for _, group := range groups {
		if !wanted[strings.ToLower(group.Name)] {
			continue
		}
		counter++
		newName := fmt.Sprintf("%s %d", baseName, counter)

		if err := h.sup.RenameGroup(chatID, slotID, group.JID, newName); err != nil {
			failed++
			sb.WriteString(fmt.Sprintf("• %s → %s ❌ %s\n", group.Name, newName, describeParticipantError(err)))
		} else {
			sb.WriteString(fmt.Sprintf("• %s → %s ✅\n", group.Name, newName))
		}

		time.Sleep(interRenameDelay)
	}

	if counter == 0 {
		h.sendMarkdown(chatID, "❌ Tidak ada grup yang cocok untuk di-rename.")
		return
	}

	sb.WriteString(fmt.Sprintf("\n✅ Berhasil: %d | ❌ Gagal: %d", counter-failed, failed))
	h.sendMarkdown(chatID, sb.String())
}
