package handlers

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Qilleer/debughampirdone/core"
	"github.com/Qilleer/debughampirdone/ui"
	"github.com/Qilleer/debughampirdone/utils"
)

// showMainMenu menampilkan dashboard atau layar penawaran premium
func (h *Handler) showMainMenu(chatID int64) {
	isPremium, premium := h.store.GetPremiumInfo(chatID)
	if !isPremium {
		wasPremium := premium.Expiry != nil
		ui.ShowPremiumOffer(h.bot, chatID, h.cfg.Payment.FirstSlotPrice, wasPremium)
		return
	}

	activeSlot := h.store.GetActiveSlot(chatID)
	view := ui.MenuView{
		UserID:         chatID,
		PremiumExpiry:  utils.FormatTimestampForUser(chatID, *premium.Expiry, "02 Jan 2006 15:04"),
		TotalSlots:     premium.TotalSlots,
		ConnectedCount: len(h.sup.ConnectedSlots(chatID)),
		ActiveSlot:     h.buildSlotView(chatID, activeSlot, activeSlot),
	}
	if data, err := h.store.LoadUser(chatID); err == nil {
		view.UsedSlots = len(data.Sessions)
	}

	ui.ShowMainMenu(h.bot, chatID, view)
}

// showPremiumRequired menampilkan layar penawaran saat fitur diblokir gate premium
func (h *Handler) showPremiumRequired(chatID int64) {
	_, premium := h.store.GetPremiumInfo(chatID)
	ui.ShowPremiumOffer(h.bot, chatID, h.cfg.Payment.FirstSlotPrice, premium.Expiry != nil)
}

// buildSlotView merangkum state satu slot dari store + supervisor
func (h *Handler) buildSlotView(chatID int64, slotID, activeSlot string) ui.SlotView {
	view := ui.SlotView{
		SlotID:       slotID,
		Label:        core.SlotLabel(slotID),
		IsActiveSlot: slotID == activeSlot,
		Connected:    h.sup.IsSlotConnected(chatID, slotID),
	}

	if data, err := h.store.LoadUser(chatID); err == nil {
		if slot := data.Sessions[slotID]; slot != nil {
			view.SessionName = slot.SessionName
			view.AutoAccept = slot.AutoAccept.Enabled
			if slot.LastConnect != nil {
				view.LastConnect = utils.FormatTimestampForUser(chatID, *slot.LastConnect, "02 Jan 2006 15:04")
			}
		}
	}

	// State in-memory lebih segar dari file untuk session yang sedang hidup
	if conn := h.sup.GetConnection(chatID, slotID); conn != nil && conn.SessionName != "" {
		view.SessionName = conn.SessionName
	}
	return view
}

// showSessionManager menampilkan semua slot user dengan aksinya
func (h *Handler) showSessionManager(chatID int64) {
	if !h.requirePremium(chatID) {
		return
	}

	data, err := h.store.LoadUser(chatID)
	if err != nil {
		h.sendMarkdown(chatID, "❌ Gagal memuat data kamu, coba lagi ya!")
		return
	}

	slotIDs := make([]string, 0, len(data.Sessions))
	for slotID := range data.Sessions {
		slotIDs = append(slotIDs, slotID)
	}
	sort.Slice(slotIDs, func(i, j int) bool { return utils.NaturalLess(slotIDs[i], slotIDs[j]) })

	activeSlot := h.store.GetActiveSlot(chatID)
	views := make([]ui.SlotView, 0, len(slotIDs))
	for _, slotID := range slotIDs {
		views = append(views, h.buildSlotView(chatID, slotID, activeSlot))
	}

	quotaFull := h.store.GetNextAvailableSlot(chatID) == ""
	ui.ShowSessionManager(h.bot, chatID, views, h.cfg.Payment.AdditionalSlotPrice, quotaFull)
}

// handleSwitchSlot mengganti active slot user
func (h *Handler) handleSwitchSlot(chatID int64, slotID string) {
	if !h.requirePremium(chatID) {
		return
	}
	if err := h.store.SwitchActiveSlot(chatID, slotID); err != nil {
		h.sendMarkdown(chatID, fmt.Sprintf("❌ Gagal ganti slot: %v", err))
		return
	}
	h.sendMarkdown(chatID, "⭐ Slot aktif sekarang: **"+core.SlotLabel(slotID)+"**")
	h.showSessionManager(chatID)
}

// startLoginFlow memulai flow login untuk slot tertentu (atau slot aktif)
func (h *Handler) startLoginFlow(chatID int64, slotID string) {
	if !h.requirePremium(chatID) {
		return
	}

	slotID = h.sup.ResolveSlot(chatID, slotID)
	if h.sup.IsSlotConnected(chatID, slotID) {
		h.sendMarkdown(chatID, "✅ **"+core.SlotLabel(slotID)+"** sudah terhubung!\n\nLogout dulu kalau mau ganti akun.")
		return
	}

	h.setState(chatID, &chatState{flow: flowLoginPhone, loginSlot: slotID})
	ui.ShowLoginPrompt(h.bot, chatID, core.SlotLabel(slotID))
}

// handleLoginPhoneInput memproses input nomor telepon (atau "qr") dari flow login
func (h *Handler) handleLoginPhoneInput(chatID int64, text string) {
	state := h.getState(chatID)
	if state == nil {
		return
	}
	slotID := state.loginSlot
	h.clearState(chatID)

	if strings.EqualFold(text, "qr") {
		h.sendMarkdown(chatID, "⏳ Menyiapkan QR code...")
		go func() {
			if _, err := h.sup.CreateConnection(chatID, slotID, false, false); err != nil {
				h.logger.Warn("Session: gagal buat connection QR owner=%d slot=%s: %v", chatID, slotID, err)
			}
		}()
		return
	}

	phone := utils.NormalizePhoneNumber(text)
	if phone == "" {
		h.setState(chatID, &chatState{flow: flowLoginPhone, loginSlot: slotID})
		h.sendMarkdown(chatID, "❌ **Nomor Tidak Valid**\n\nKirim ulang nomormu (contoh: 628123456789) atau ketik **qr**.")
		return
	}

	h.sendMarkdown(chatID, "⏳ Menghubungkan ke WhatsApp dan meminta pairing code...")

	// Pairing jalan di goroutine, kode dikirim lewat notifier saat siap
	go func() {
		if _, err := h.sup.CreateConnection(chatID, slotID, false, false); err != nil {
			return
		}
		if _, err := h.sup.GeneratePairingCode(chatID, phone, slotID); err != nil {
			h.logger.Warn("Session: gagal generate pairing code owner=%d slot=%s: %v", chatID, slotID, err)
			h.sendMarkdown(chatID, "❌ Gagal meminta pairing code. Cek nomornya lalu coba lagi ya!")
		}
	}()
}

// showLogoutConfirm menampilkan konfirmasi logout slot
func (h *Handler) showLogoutConfirm(chatID int64, slotID string) {
	if !h.requirePremium(chatID) {
		return
	}
	slotID = h.sup.ResolveSlot(chatID, slotID)
	ui.ShowLogoutConfirm(h.bot, chatID, slotID, core.SlotLabel(slotID))
}

// handleLogout menjalankan logout slot setelah konfirmasi
func (h *Handler) handleLogout(chatID int64, slotID string) {
	slotID = h.sup.ResolveSlot(chatID, slotID)

	if err := h.sup.Logout(chatID, slotID); err != nil {
		h.sendMarkdown(chatID, fmt.Sprintf("❌ Gagal logout: %v", err))
		return
	}
	h.sendMarkdown(chatID, "🚪 **"+core.SlotLabel(slotID)+"** berhasil logout.\n\nData login slot ini sudah dihapus.")
	h.showMainMenu(chatID)
}

// showStatus menampilkan ringkasan lengkap akun user
func (h *Handler) showStatus(chatID int64) {
	isPremium, premium := h.store.GetPremiumInfo(chatID)

	var sb strings.Builder
	sb.WriteString("📊 **STATUS AKUN**\n\n")

	if isPremium {
		sb.WriteString("👑 Premium: ✅ Aktif\n")
		sb.WriteString("⏰ Berlaku sampai: " + utils.FormatTimestampForUser(chatID, *premium.Expiry, "02 Jan 2006 15:04") + "\n")
		sb.WriteString(fmt.Sprintf("📱 Total slot: %d\n", premium.TotalSlots))
	} else {
		sb.WriteString("👑 Premium: ❌ Tidak aktif\n")
	}

	connected := h.sup.ConnectedSlots(chatID)
	sort.Slice(connected, func(i, j int) bool { return utils.NaturalLess(connected[i], connected[j]) })
	sb.WriteString(fmt.Sprintf("🟢 Session terhubung: %d\n", len(connected)))
	activeSlot := h.store.GetActiveSlot(chatID)
	for _, slotID := range connected {
		view := h.buildSlotView(chatID, slotID, activeSlot)
		sb.WriteString(fmt.Sprintf("   • %s - %s\n", view.Label, view.SessionName))
	}

	sb.WriteString("⭐ Slot aktif: " + core.SlotLabel(activeSlot) + "\n")

	if len(premium.PaymentHistory) > 0 {
		sb.WriteString("\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n💳 **RIWAYAT PEMBAYARAN**\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
		history := premium.PaymentHistory
		if len(history) > 5 {
			history = history[len(history)-5:]
		}
		for _, record := range history {
			sb.WriteString(fmt.Sprintf("• %s - Rp %d (%s)\n",
				utils.FormatTimestampForUser(chatID, record.Date, "02 Jan 2006"), record.Amount, record.Type))
		}
	}

	h.sendMarkdown(chatID, sb.String())
}

// handleAddPremiumCommand memproses /addpremium <userID> <hari> <slot> (admin only)
func (h *Handler) handleAddPremiumCommand(chatID int64, args string) {
	if !h.cfg.IsAdmin(chatID) {
		h.sendMarkdown(chatID, "❌ Command ini khusus admin.")
		return
	}

	fields := strings.Fields(args)
	if len(fields) != 3 {
		h.sendMarkdown(chatID, "Format: `/addpremium <userID> <hari> <slot>`\n\nContoh: `/addpremium 123456789 30 1`")
		return
	}

	userID, err1 := strconv.ParseInt(fields[0], 10, 64)
	days, err2 := strconv.Atoi(fields[1])
	slots, err3 := strconv.Atoi(fields[2])
	if err1 != nil || err2 != nil || err3 != nil {
		h.sendMarkdown(chatID, "❌ Semua argumen harus angka.")
		return
	}

	if err := h.store.AddPremium(userID, days, slots); err != nil {
		h.sendMarkdown(chatID, fmt.Sprintf("❌ Gagal: %v", err))
		return
	}

	h.sendMarkdown(chatID, fmt.Sprintf("✅ Premium user `%d` ditambah %d hari + %d slot.", userID, days, slots))
	h.sendMarkdown(userID, fmt.Sprintf("🎉 **PREMIUM AKTIF!**\n\nAkun kamu mendapat %d hari premium + %d slot dari admin.\n\nGunakan /menu untuk mulai.", days, slots))
}
