package handlers

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Qilleer/debughampirdone/core"
	"github.com/Qilleer/debughampirdone/utils"
)

// blastRun adalah progress satu blast yang sedang jalan
type blastRun struct {
	mu         sync.Mutex
	shouldStop bool
	sent       int
	failed     int
}

func (r *blastRun) stop() {
	r.mu.Lock()
	r.shouldStop = true
	r.mu.Unlock()
}

func (r *blastRun) stopped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shouldStop
}

// startBlastFlow memulai flow blast: minta isi pesan dulu
func (h *Handler) startBlastFlow(chatID int64) {
	if h.requireConnected(chatID) == "" {
		return
	}

	h.blastMu.Lock()
	running := h.blastRuns[chatID] != nil
	h.blastMu.Unlock()
	if running {
		h.sendMarkdown(chatID, "⚠️ Masih ada blast yang jalan. Stop dulu dengan /stopblast.")
		return
	}

	h.setState(chatID, &chatState{flow: flowBlastMessage})
	h.sendMarkdown(chatID, `📢 **BLAST PESAN KE SEMUA GRUP**

Kirim isi pesan yang mau di-blast.

💡 Pesan dikirim ke semua grup slot aktif, satu per satu dengan delay acak biar aman.`)
}

// handleBlastMessageInput menerima isi pesan, lanjut minta delay
func (h *Handler) handleBlastMessageInput(chatID int64, text string) {
	state := h.getState(chatID)
	if state == nil {
		return
	}
	state.blastMessage = text
	state.flow = flowBlastDelay
	h.setState(chatID, state)

	h.sendMarkdown(chatID, `⏱️ **DELAY ANTAR GRUP**

Kirim rentang delay dalam detik, format: `+"`min max`"+`

Contoh: `+"`5 15`"+` (jeda acak 5-15 detik antar grup)`)
}

// handleBlastDelayInput menerima rentang delay, tampilkan konfirmasi
func (h *Handler) handleBlastDelayInput(chatID int64, text string) {
	state := h.getState(chatID)
	if state == nil {
		return
	}

	fields := strings.Fields(text)
	if len(fields) != 2 {
		h.sendMarkdown(chatID, "❌ Format salah. Kirim dua angka, contoh: `5 15`")
		return
	}
	minDelay, err1 := strconv.Atoi(fields[0])
	maxDelay, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil || minDelay < 1 || maxDelay < minDelay {
		h.sendMarkdown(chatID, "❌ Delay tidak valid. Minimal 1 detik dan max >= min.")
		return
	}

	state.blastMinDelay = minDelay
	state.blastMaxDelay = maxDelay
	state.flow = flowNone
	h.setState(chatID, state)

	slotID := h.sup.ResolveSlot(chatID, "")
	groups, err := h.sup.FetchGroups(chatID, slotID)
	if err != nil {
		h.clearState(chatID)
		h.sendMarkdown(chatID, utils.FormatError(err))
		return
	}

	preview := state.blastMessage
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}

	text = fmt.Sprintf(`📢 **KONFIRMASI BLAST**

🎯 Target: %d grup (%s)
⏱️ Delay: %d-%d detik antar grup

━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
📝 **PESAN**
━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
%s

Mulai sekarang?`,
		len(groups), core.SlotLabel(slotID), minDelay, maxDelay, preview)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚀 Mulai", "blast_start"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Batal", "blast_cancel"),
		),
	)
	h.sendWithKeyboard(chatID, text, keyboard)
}

// handleBlastStart menjalankan blast di goroutine
func (h *Handler) handleBlastStart(chatID int64) {
	state := h.getState(chatID)
	if state == nil || state.blastMessage == "" {
		h.sendMarkdown(chatID, "❌ Tidak ada blast yang disiapkan. Mulai lagi dari menu ya!")
		return
	}
	h.clearState(chatID)

	slotID := h.requireConnected(chatID)
	if slotID == "" {
		return
	}

	run := &blastRun{}
	h.blastMu.Lock()
	if h.blastRuns[chatID] != nil {
		h.blastMu.Unlock()
		h.sendMarkdown(chatID, "⚠️ Masih ada blast yang jalan.")
		return
	}
	h.blastRuns[chatID] = run
	h.blastMu.Unlock()

	h.sendMarkdown(chatID, "🚀 **Blast dimulai!**\n\nGunakan /stopblast untuk menghentikan.")

	go h.runBlast(chatID, slotID, state.blastMessage, state.blastMinDelay, state.blastMaxDelay, run)
}

// runBlast loop kirim pesan ke semua grup dengan delay acak
func (h *Handler) runBlast(chatID int64, slotID, message string, minDelay, maxDelay int, run *blastRun) {
	defer func() {
		h.blastMu.Lock()
		delete(h.blastRuns, chatID)
		h.blastMu.Unlock()
	}()

	groups, err := h.sup.FetchGroups(chatID, slotID)
	if err != nil {
		h.sendMarkdown(chatID, fmt.Sprintf("❌ Blast gagal: %v", err))
		return
	}

	for i, group := range groups {
		if run.stopped() {
			break
		}

		if err := h.sup.SendTextMessage(chatID, slotID, group.JID, message); err != nil {
			run.failed++
			h.logger.Warn("Blast: gagal kirim ke %s (owner=%d): %v", group.Name, chatID, err)
		} else {
			run.sent++
		}

		// Delay acak antar grup, kecuali setelah grup terakhir
		if i < len(groups)-1 && !run.stopped() {
			delay := minDelay
			if maxDelay > minDelay {
				delay += rand.Intn(maxDelay - minDelay + 1)
			}
			time.Sleep(time.Duration(delay) * time.Second)
		}
	}

	status := "✅ **BLAST SELESAI**"
	if run.stopped() {
		status = "⏹️ **BLAST DIHENTIKAN**"
	}
	h.sendMarkdown(chatID, fmt.Sprintf(`%s

📊 **HASIL**
• Terkirim: %d
• Gagal: %d
• Total grup: %d`, status, run.sent, run.failed, len(groups)))
}

// handleStopBlast menghentikan blast yang sedang jalan
func (h *Handler) handleStopBlast(chatID int64) {
	h.blastMu.Lock()
	run := h.blastRuns[chatID]
	h.blastMu.Unlock()

	if run == nil {
		h.sendMarkdown(chatID, "ℹ️ Tidak ada blast yang sedang jalan.")
		return
	}
	run.stop()
	h.sendMarkdown(chatID, "⏹️ Blast akan berhenti setelah pesan saat ini terkirim.")
}
