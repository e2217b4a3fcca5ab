package handlers

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Qilleer/debughampirdone/utils"
)

// PaymentType adalah jenis pembelian
type PaymentType string

const (
	PaymentFirstSlot      PaymentType = "first_slot"
	PaymentAdditionalSlot PaymentType = "additional_slot"
	PaymentRenewal        PaymentType = "renewal"
)

// Interval background checker pembayaran
const paymentCheckInterval = 60 * time.Second

// Transaction adalah satu pembayaran QRIS yang sedang menunggu
type Transaction struct {
	TrxID        string
	UserID       int64
	Type         PaymentType
	BaseAmount   int
	UniqueAmount int
	CreatedAt    time.Time
	ExpiresAt    time.Time
	MessageID    int
}

// okeconnectResponse adalah bentuk response API mutasi okeconnect
type okeconnectResponse struct {
	Status string `json:"status"`
	Data   []struct {
		Date   string `json:"date"`
		Amount string `json:"amount"`
		Type   string `json:"type"`
		Brand  string `json:"brand_name"`
	} `json:"data"`
}

// PaymentManager mengelola pembayaran QRIS: pembuatan QR dinamis dengan
// nominal unik, polling mutasi, expiry, dan side effect premium.
type PaymentManager struct {
	cfg        *utils.Config
	store      *utils.UserStore
	bot        *tgbotapi.BotAPI
	logger     *utils.AppLogger
	httpClient *http.Client

	mu      sync.Mutex
	pending map[string]*Transaction
}

// NewPaymentManager membuat PaymentManager
func NewPaymentManager(cfg *utils.Config, store *utils.UserStore, bot *tgbotapi.BotAPI) *PaymentManager {
	return &PaymentManager{
		cfg:        cfg,
		store:      store,
		bot:        bot,
		logger:     utils.GetLogger(),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		pending:    make(map[string]*Transaction),
	}
}

// priceFor menghitung harga dasar sebuah jenis pembelian
func (pm *PaymentManager) priceFor(userID int64, paymentType PaymentType) int {
	payment := pm.cfg.Payment
	switch paymentType {
	case PaymentFirstSlot:
		return payment.FirstSlotPrice
	case PaymentAdditionalSlot:
		return payment.AdditionalSlotPrice
	case PaymentRenewal:
		// Perpanjangan dihitung dari jumlah slot yang dimiliki
		_, premium := pm.store.GetPremiumInfo(userID)
		slots := premium.TotalSlots
		if slots < 1 {
			slots = 1
		}
		return payment.FirstSlotPrice + (slots-1)*payment.AdditionalSlotPrice
	}
	return 0
}

// CreatePayment membuat transaksi baru: nominal unik, QR dinamis, entry pending.
// Nominal unik dicari dengan +1 sampai tidak bentrok dengan pending lain,
// supaya mutasi masuk bisa dipetakan balik ke transaksi yang tepat.
func (pm *PaymentManager) CreatePayment(userID int64, paymentType PaymentType) (*Transaction, []byte, error) {
	if pm.cfg.Payment.QRISText == "" {
		return nil, nil, fmt.Errorf("QRIS statis belum dikonfigurasi")
	}

	baseAmount := pm.priceFor(userID, paymentType)
	if baseAmount <= 0 {
		return nil, nil, fmt.Errorf("harga tidak valid untuk tipe %s", paymentType)
	}

	pm.mu.Lock()
	// Satu user satu pembayaran pending
	for _, tx := range pm.pending {
		if tx.UserID == userID {
			pm.mu.Unlock()
			return nil, nil, fmt.Errorf("masih ada pembayaran yang menunggu, selesaikan atau batalkan dulu")
		}
	}

	amount := baseAmount
	for pm.amountInUseLocked(amount) {
		amount++
	}

	now := time.Now()
	tx := &Transaction{
		TrxID:        fmt.Sprintf("TRX%d%04d", now.Unix(), rand.Intn(10000)),
		UserID:       userID,
		Type:         paymentType,
		BaseAmount:   baseAmount,
		UniqueAmount: amount,
		CreatedAt:    now,
		ExpiresAt:    now.Add(pm.cfg.PaymentTimeout()),
	}
	pm.pending[tx.TrxID] = tx
	pm.mu.Unlock()

	payload, err := utils.GenerateDynamicQRIS(pm.cfg.Payment.QRISText, amount)
	if err != nil {
		pm.removePending(tx.TrxID)
		return nil, nil, fmt.Errorf("gagal generate QRIS: %w", err)
	}

	png, err := utils.RenderQRPNG(payload, 400)
	if err != nil {
		pm.removePending(tx.TrxID)
		return nil, nil, fmt.Errorf("gagal render QR: %w", err)
	}

	pm.logger.Info("Payment: transaksi %s dibuat user=%d tipe=%s nominal=%d", tx.TrxID, userID, paymentType, amount)
	return tx, png, nil
}

func (pm *PaymentManager) amountInUseLocked(amount int) bool {
	for _, tx := range pm.pending {
		if tx.UniqueAmount == amount {
			return true
		}
	}
	return false
}

// GetPending mengembalikan transaksi pending by id, nil kalau tidak ada
func (pm *PaymentManager) GetPending(trxID string) *Transaction {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return pm.pending[trxID]
}

// SetMessageID menyimpan message id QR yang dikirim (untuk dihapus nanti)
func (pm *PaymentManager) SetMessageID(trxID string, messageID int) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if tx := pm.pending[trxID]; tx != nil {
		tx.MessageID = messageID
	}
}

func (pm *PaymentManager) removePending(trxID string) *Transaction {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	tx := pm.pending[trxID]
	delete(pm.pending, trxID)
	return tx
}

// CheckPaymentStatus cek mutasi QRIS apakah nominal unik transaksi sudah masuk.
// Return true kalau pembayaran ditemukan (side effect premium langsung jalan).
func (pm *PaymentManager) CheckPaymentStatus(trxID string) (bool, error) {
	tx := pm.GetPending(trxID)
	if tx == nil {
		return false, fmt.Errorf("transaksi tidak ditemukan atau sudah selesai")
	}

	url := fmt.Sprintf("https://gateway.okeconnect.com/api/mutasi/qris/%s/%s",
		pm.cfg.Payment.OkeConnectID, pm.cfg.Payment.OkeConnectKey)

	resp, err := pm.httpClient.Get(url)
	if err != nil {
		return false, fmt.Errorf("gagal hubungi gateway pembayaran: %w", err)
	}
	defer resp.Body.Close()

	var result okeconnectResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("response gateway tidak valid: %w", err)
	}
	if result.Status != "success" {
		return false, fmt.Errorf("gateway pembayaran menolak request")
	}

	wanted := strconv.Itoa(tx.UniqueAmount)
	for _, mutation := range result.Data {
		if mutation.Amount == wanted {
			pm.processSuccessfulPayment(tx)
			return true, nil
		}
	}
	return false, nil
}

// processSuccessfulPayment menjalankan side effect sesuai jenis pembelian
func (pm *PaymentManager) processSuccessfulPayment(tx *Transaction) {
	// Hapus dari pending dulu supaya checker background tidak memproses dua kali
	if pm.removePending(tx.TrxID) == nil {
		return
	}

	days := pm.cfg.Payment.PremiumDurationDays
	var err error
	var successText string

	switch tx.Type {
	case PaymentFirstSlot:
		err = pm.store.AddPremium(tx.UserID, days, 1)
		successText = fmt.Sprintf("🎉 **PEMBAYARAN BERHASIL!**\n\n👑 Premium aktif %d hari + 1 slot session.\n\nGunakan /menu untuk mulai login WhatsApp.", days)

	case PaymentAdditionalSlot:
		err = pm.store.AddPremium(tx.UserID, 0, 1)
		if err == nil {
			if slotID := pm.store.GetNextAvailableSlot(tx.UserID); slotID != "" {
				if createErr := pm.store.CreateSessionSlot(tx.UserID, slotID); createErr != nil {
					pm.logger.Warn("Payment: gagal buat slot baru user=%d: %v", tx.UserID, createErr)
				}
			}
		}
		successText = "🎉 **PEMBAYARAN BERHASIL!**\n\n📱 1 slot session baru ditambahkan.\n\nCek di menu Kelola Session ya!"

	case PaymentRenewal:
		err = pm.store.AddPremium(tx.UserID, days, 0)
		successText = fmt.Sprintf("🎉 **PEMBAYARAN BERHASIL!**\n\n🔄 Premium diperpanjang %d hari.", days)
	}

	if err != nil {
		pm.logger.Error("Payment: transaksi %s sukses tapi gagal apply: %v", tx.TrxID, err)
		pm.notify(tx.UserID, "⚠️ Pembayaran diterima tapi ada kendala teknis. Hubungi admin dengan kode transaksi: `"+tx.TrxID+"`")
		return
	}

	if err := pm.store.AddPaymentRecord(tx.UserID, tx.UniqueAmount, string(tx.Type), tx.TrxID); err != nil {
		pm.logger.Warn("Payment: gagal simpan riwayat transaksi %s: %v", tx.TrxID, err)
	}

	pm.deleteQRMessage(tx)
	pm.notify(tx.UserID, successText)
	pm.logger.Success("Payment: transaksi %s selesai user=%d tipe=%s", tx.TrxID, tx.UserID, tx.Type)
}

// CancelPayment membatalkan transaksi pending milik user
func (pm *PaymentManager) CancelPayment(userID int64, trxID string) bool {
	tx := pm.GetPending(trxID)
	if tx == nil || tx.UserID != userID {
		return false
	}
	pm.removePending(trxID)
	pm.deleteQRMessage(tx)
	pm.logger.Info("Payment: transaksi %s dibatalkan user=%d", trxID, userID)
	return true
}

// StartChecker menjalankan background loop: cek mutasi semua pending tiap
// menit dan bersihkan yang expired
func (pm *PaymentManager) StartChecker() {
	go func() {
		ticker := time.NewTicker(paymentCheckInterval)
		defer ticker.Stop()

		for range ticker.C {
			pm.sweepPending()
		}
	}()
	pm.logger.Info("Payment: background checker aktif (interval %v)", paymentCheckInterval)
}

// sweepPending memproses semua transaksi pending satu putaran
func (pm *PaymentManager) sweepPending() {
	pm.mu.Lock()
	snapshot := make([]*Transaction, 0, len(pm.pending))
	for _, tx := range pm.pending {
		snapshot = append(snapshot, tx)
	}
	pm.mu.Unlock()

	now := time.Now()
	for _, tx := range snapshot {
		if now.After(tx.ExpiresAt) {
			pm.removePending(tx.TrxID)
			pm.deleteQRMessage(tx)
			pm.notify(tx.UserID, "⏰ **PEMBAYARAN EXPIRED**\n\nWaktu pembayaran habis, transaksi dibatalkan.\n\nBuat ulang lewat /menu kalau masih mau lanjut.")
			pm.logger.Info("Payment: transaksi %s expired user=%d", tx.TrxID, tx.UserID)
			continue
		}

		if paid, err := pm.CheckPaymentStatus(tx.TrxID); err != nil {
			pm.logger.Debug("Payment: cek mutasi %s gagal: %v", tx.TrxID, err)
		} else if paid {
			pm.logger.Info("Payment: transaksi %s terdeteksi lunas oleh checker", tx.TrxID)
		}
	}
}

func (pm *PaymentManager) deleteQRMessage(tx *Transaction) {
	if tx.MessageID == 0 {
		return
	}
	if _, err := pm.bot.Request(tgbotapi.NewDeleteMessage(tx.UserID, tx.MessageID)); err != nil {
		pm.logger.Debug("Payment: gagal hapus pesan QR trx=%s: %v", tx.TrxID, err)
	}
}

func (pm *PaymentManager) notify(userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	msg.ParseMode = "Markdown"
	if _, err := pm.bot.Send(msg); err != nil {
		pm.logger.Warn("Payment: gagal kirim notifikasi ke %d: %v", userID, err)
	}
}

// ===== sisi Telegram =====

// startPayment memvalidasi jenis pembelian lalu kirim QR pembayaran
func (h *Handler) startPayment(chatID int64, paymentType PaymentType) {
	isPremium, premium := h.store.GetPremiumInfo(chatID)

	switch paymentType {
	case PaymentFirstSlot:
		if isPremium {
			h.sendMarkdown(chatID, "✅ Kamu sudah premium! Pakai menu perpanjang atau beli slot tambahan.")
			return
		}
	case PaymentAdditionalSlot:
		if !isPremium {
			h.sendMarkdown(chatID, "❌ Slot tambahan butuh premium aktif. Beli premium dulu ya!")
			return
		}
	case PaymentRenewal:
		if premium.Expiry == nil {
			// Belum pernah premium, arahkan ke pembelian pertama
			paymentType = PaymentFirstSlot
		}
	}

	tx, png, err := h.payments.CreatePayment(chatID, paymentType)
	if err != nil {
		h.sendMarkdown(chatID, fmt.Sprintf("❌ %v", err))
		return
	}

	caption := fmt.Sprintf(`💳 **PEMBAYARAN QRIS**

💰 Nominal: **Rp %d**
🧾 Kode: `+"`%s`"+`
⏰ Berlaku sampai: %s

Scan QR di atas dengan e-wallet atau m-banking apa saja.

⚠️ **Bayar sesuai nominal persis** (termasuk digit terakhir), sistem mendeteksi pembayaran dari nominal unik ini.

Status dicek otomatis tiap menit, atau klik tombol cek di bawah.`,
		tx.UniqueAmount, tx.TrxID,
		utils.FormatTimestampForUser(chatID, tx.ExpiresAt, "15:04"))

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "qris.png", Bytes: png})
	photo.Caption = caption
	photo.ParseMode = "Markdown"
	photo.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Cek Pembayaran", "check_payment_"+tx.TrxID),
			tgbotapi.NewInlineKeyboardButtonData("❌ Batalkan", "cancel_payment_"+tx.TrxID),
		),
	)

	sent, err := h.bot.Send(photo)
	if err != nil {
		h.logger.Warn("Payment: gagal kirim QR ke %d: %v", chatID, err)
		h.payments.CancelPayment(chatID, tx.TrxID)
		h.sendMarkdown(chatID, "❌ Gagal mengirim QR pembayaran, coba lagi ya!")
		return
	}
	h.payments.SetMessageID(tx.TrxID, sent.MessageID)
}

// handleCheckPayment cek manual status pembayaran dari tombol
func (h *Handler) handleCheckPayment(chatID int64, trxID string) {
	tx := h.payments.GetPending(trxID)
	if tx == nil || tx.UserID != chatID {
		h.sendMarkdown(chatID, "ℹ️ Transaksi tidak ditemukan atau sudah selesai.")
		return
	}

	paid, err := h.payments.CheckPaymentStatus(trxID)
	if err != nil {
		h.sendMarkdown(chatID, utils.FormatUserError(utils.ErrorPayment, err, "cek status pembayaran"))
		return
	}
	if !paid {
		h.sendMarkdown(chatID, "⏳ Pembayaran belum terdeteksi.\n\nKalau baru bayar, tunggu 1-2 menit lalu cek lagi.")
	}
	// Kalau paid, notifikasi sukses sudah dikirim oleh payment manager
}

// handleCancelPayment membatalkan pembayaran dari tombol
func (h *Handler) handleCancelPayment(chatID int64, trxID string) {
	if !h.payments.CancelPayment(chatID, trxID) {
		h.sendMarkdown(chatID, "ℹ️ Transaksi tidak ditemukan atau sudah selesai.")
		return
	}
	h.sendMarkdown(chatID, "❌ Pembayaran dibatalkan.")
	h.showMainMenu(chatID)
}
