package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Qilleer/debughampirdone/core"
	"github.com/Qilleer/debughampirdone/ui"
	"github.com/Qilleer/debughampirdone/utils"
)

// flowKind menandai input teks apa yang sedang ditunggu dari satu chat
type flowKind int

const (
	flowNone flowKind = iota
	flowLoginPhone
	flowBlastMessage
	flowBlastDelay
	flowCtcNumbers
	flowCtcTargets
	flowAdminNumbers
	flowAdminTargets
	flowRenameTargets
	flowRenameBase
)

// chatState adalah state percakapan per chat. Satu chat hanya bisa di satu
// flow pada satu waktu; memulai flow baru membatalkan flow lama.
type chatState struct {
	flow flowKind

	// login
	loginSlot string

	// admin management
	promote bool

	// blast
	blastMessage  string
	blastMinDelay int
	blastMaxDelay int

	// add contacts
	ctcNumbers []string

	// rename
	renameTargets []string
}

// Handler adalah front-end Telegram: routing command, callback, dan input
// teks ke supervisor session dan payment manager
type Handler struct {
	bot      *tgbotapi.BotAPI
	sup      *core.Supervisor
	store    *utils.UserStore
	cfg      *utils.Config
	payments *PaymentManager
	logger   *utils.AppLogger

	mu     sync.Mutex
	states map[int64]*chatState

	// Blast yang sedang jalan per chat, di-guard terpisah dari states
	// karena dibaca dari goroutine runBlast
	blastMu   sync.Mutex
	blastRuns map[int64]*blastRun
}

// NewHandler membuat router Telegram dengan semua dependency
func NewHandler(bot *tgbotapi.BotAPI, sup *core.Supervisor, store *utils.UserStore, cfg *utils.Config, payments *PaymentManager) *Handler {
	return &Handler{
		bot:       bot,
		sup:       sup,
		store:     store,
		cfg:       cfg,
		payments:  payments,
		logger:    utils.GetLogger(),
		states:    make(map[int64]*chatState),
		blastRuns: make(map[int64]*blastRun),
	}
}

// HandleUpdate adalah entry point semua update Telegram
func (h *Handler) HandleUpdate(update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		userID := update.CallbackQuery.From.ID
		if !h.cfg.CheckAccess(userID) {
			h.answerCallback(update.CallbackQuery.ID, "❌ Akses ditolak")
			return
		}
		h.handleCallback(update.CallbackQuery)
		return
	}

	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	if !h.cfg.CheckAccess(chatID) {
		h.sendMarkdown(chatID, "❌ **AKSES DITOLAK**\n\nKamu tidak terdaftar di bot ini. Hubungi admin untuk akses.")
		return
	}

	if from := update.Message.From; from != nil {
		h.store.TouchUser(chatID, from.UserName, from.FirstName)
	}

	if update.Message.IsCommand() {
		h.handleCommand(update.Message)
		return
	}

	if update.Message.Document != nil {
		h.handleDocumentInput(update.Message)
		return
	}

	if update.Message.Text != "" {
		h.handleTextInput(update.Message)
	}
}

// handleCommand memproses command dari Telegram
func (h *Handler) handleCommand(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	switch message.Command() {
	case "start", "menu":
		h.clearState(chatID)
		h.showMainMenu(chatID)

	case "help":
		h.sendMarkdown(chatID, ui.HelpText())

	case "stopblast":
		h.handleStopBlast(chatID)

	case "addpremium":
		// Admin only: /addpremium <userID> <hari> <slot>
		h.handleAddPremiumCommand(chatID, message.CommandArguments())

	default:
		h.sendMarkdown(chatID, "❓ Command tidak dikenal. Gunakan /menu untuk melihat menu utama.")
	}
}

// handleCallback memproses klik tombol inline
func (h *Handler) handleCallback(callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID
	data := callback.Data

	h.answerCallback(callback.ID, "")

	// Callback dengan suffix dinamis dicek dulu
	switch {
	case strings.HasPrefix(data, "switch_slot_"):
		h.handleSwitchSlot(chatID, strings.TrimPrefix(data, "switch_slot_"))
		return
	case strings.HasPrefix(data, "login_slot_"):
		h.startLoginFlow(chatID, strings.TrimPrefix(data, "login_slot_"))
		return
	case strings.HasPrefix(data, "logout_slot_"):
		h.showLogoutConfirm(chatID, strings.TrimPrefix(data, "logout_slot_"))
		return
	case strings.HasPrefix(data, "logout_confirm_"):
		h.handleLogout(chatID, strings.TrimPrefix(data, "logout_confirm_"))
		return
	case strings.HasPrefix(data, "check_payment_"):
		h.handleCheckPayment(chatID, strings.TrimPrefix(data, "check_payment_"))
		return
	case strings.HasPrefix(data, "cancel_payment_"):
		h.handleCancelPayment(chatID, strings.TrimPrefix(data, "cancel_payment_"))
		return
	}

	switch data {
	case "main_menu":
		h.clearState(chatID)
		h.showMainMenu(chatID)

	case "login":
		h.startLoginFlow(chatID, "")

	case "session_manager":
		h.showSessionManager(chatID)

	case "status":
		h.showStatus(chatID)

	case "auto_accept":
		h.showAutoAcceptMenu(chatID)

	case "autoaccept_on":
		h.handleAutoAcceptToggle(chatID, true)

	case "autoaccept_off":
		h.handleAutoAcceptToggle(chatID, false)

	case "blast":
		h.startBlastFlow(chatID)

	case "blast_start":
		h.handleBlastStart(chatID)

	case "blast_cancel":
		h.clearState(chatID)
		h.sendMarkdown(chatID, "❌ Blast dibatalkan.")
		h.showMainMenu(chatID)

	case "add_ctc":
		h.startCtcFlow(chatID)

	case "admin_management":
		h.showAdminManagementMenu(chatID)

	case "promote_admin":
		h.startAdminFlow(chatID, true)

	case "demote_admin":
		h.startAdminFlow(chatID, false)

	case "rename_groups":
		h.startRenameFlow(chatID)

	case "logout":
		h.showLogoutConfirm(chatID, "")

	case "logout_cancel":
		h.sendMarkdown(chatID, "✅ Logout dibatalkan.")
		h.showMainMenu(chatID)

	case "buy_premium_first":
		h.startPayment(chatID, PaymentFirstSlot)

	case "buy_additional_slot":
		h.startPayment(chatID, PaymentAdditionalSlot)

	case "renew_premium":
		h.startPayment(chatID, PaymentRenewal)

	case "cancel_input":
		h.clearState(chatID)
		h.sendMarkdown(chatID, "❌ Input dibatalkan.")
		h.showMainMenu(chatID)

	default:
		h.logger.Debug("Handler: callback tidak dikenal: %s", data)
	}
}

// Batas ukuran file .txt yang diterima sebagai input daftar
const maxDocumentSize = 512 * 1024

// handleDocumentInput menerima file .txt sebagai pengganti input teks untuk
// flow yang menunggu daftar (nomor, nama grup) atau isi pesan blast
func (h *Handler) handleDocumentInput(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	state := h.getState(chatID)
	if state == nil || state.flow == flowNone {
		h.sendMarkdown(chatID, "💡 Gunakan /menu untuk melihat menu utama.")
		return
	}

	doc := message.Document
	if !strings.HasSuffix(strings.ToLower(doc.FileName), ".txt") {
		h.sendMarkdown(chatID, "❌ Hanya file **.txt** yang diterima.")
		return
	}
	if doc.FileSize > maxDocumentSize {
		h.sendMarkdown(chatID, "❌ File terlalu besar, maksimal 512 KB.")
		return
	}

	content, err := h.downloadDocument(doc.FileID)
	if err != nil {
		h.logger.Warn("Handler: gagal download file dari %d: %v", chatID, err)
		h.sendMarkdown(chatID, "❌ Gagal membaca file, coba kirim ulang ya!")
		return
	}

	switch state.flow {
	case flowCtcNumbers:
		h.handleCtcNumbersInput(chatID, content)
	case flowAdminNumbers:
		h.handleAdminNumbersInput(chatID, content)
	case flowBlastMessage:
		h.handleBlastMessageInput(chatID, content)
	case flowCtcTargets:
		h.handleCtcTargetsInput(chatID, content)
	case flowAdminTargets:
		h.handleAdminTargetsInput(chatID, content)
	case flowRenameTargets:
		h.handleRenameTargetsInput(chatID, content)
	default:
		h.sendMarkdown(chatID, "❌ Langkah ini butuh input teks, bukan file.")
	}
}

// downloadDocument mengambil isi file yang dikirim user lewat Telegram
func (h *Handler) downloadDocument(fileID string) (string, error) {
	url, err := h.bot.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file URL: %w", err)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if len(body) > maxDocumentSize {
		return "", fmt.Errorf("file melebihi batas ukuran")
	}
	return string(body), nil
}

// handleTextInput meneruskan pesan teks biasa ke flow yang sedang aktif
func (h *Handler) handleTextInput(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	state := h.getState(chatID)
	if state == nil || state.flow == flowNone {
		h.sendMarkdown(chatID, "💡 Gunakan /menu untuk melihat menu utama.")
		return
	}

	switch state.flow {
	case flowLoginPhone:
		h.handleLoginPhoneInput(chatID, text)
	case flowBlastMessage:
		h.handleBlastMessageInput(chatID, text)
	case flowBlastDelay:
		h.handleBlastDelayInput(chatID, text)
	case flowCtcNumbers:
		h.handleCtcNumbersInput(chatID, text)
	case flowCtcTargets:
		h.handleCtcTargetsInput(chatID, text)
	case flowAdminNumbers:
		h.handleAdminNumbersInput(chatID, text)
	case flowAdminTargets:
		h.handleAdminTargetsInput(chatID, text)
	case flowRenameTargets:
		h.handleRenameTargetsInput(chatID, text)
	case flowRenameBase:
		h.handleRenameBaseInput(chatID, text)
	}
}

// requirePremium mengecek entitlement sebelum fitur session dipakai.
// Kalau tidak premium, tampilkan layar penawaran dan return false.
func (h *Handler) requirePremium(chatID int64) bool {
	if h.store.IsPremiumUser(chatID) {
		return true
	}
	h.showPremiumRequired(chatID)
	return false
}

// requireConnected mengecek ada slot aktif yang terhubung.
// Return slot id kalau ada, atau "" setelah kirim pesan error.
func (h *Handler) requireConnected(chatID int64) string {
	if !h.requirePremium(chatID) {
		return ""
	}
	slotID := h.sup.ResolveSlot(chatID, "")
	if !h.sup.IsSlotConnected(chatID, slotID) {
		h.sendMarkdown(chatID, "❌ **BELUM TERHUBUNG**\n\nSlot aktif ("+core.SlotLabel(slotID)+") belum terhubung ke WhatsApp.\n\nLogin dulu lewat menu utama ya!")
		return ""
	}
	return slotID
}

// ===== state helpers =====

func (h *Handler) getState(chatID int64) *chatState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.states[chatID]
}

func (h *Handler) setState(chatID int64, state *chatState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states[chatID] = state
}

func (h *Handler) clearState(chatID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.states, chatID)
}

// ===== kirim pesan helpers =====

func (h *Handler) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	if _, err := h.bot.Send(msg); err != nil {
		h.logger.Warn("Handler: gagal kirim pesan ke %d: %v", chatID, err)
	}
}

func (h *Handler) sendWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboard
	if _, err := h.bot.Send(msg); err != nil {
		h.logger.Warn("Handler: gagal kirim pesan ke %d: %v", chatID, err)
	}
}

func (h *Handler) answerCallback(callbackID, text string) {
	callback := tgbotapi.NewCallback(callbackID, text)
	if _, err := h.bot.Request(callback); err != nil {
		h.logger.Debug("Handler: gagal answer callback: %v", err)
	}
}
