package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"

	"github.com/Qilleer/debughampirdone/utils"
)

const (
	// Batas waktu semua RPC protokol
	rpcTimeout = 15 * time.Second

	// Delay sebelum sweep pending request setelah connect,
	// supaya state grup sudah selesai sync dulu
	connectSettleDelay = 5 * time.Second

	// Rate limit kirim gambar QR per slot
	qrRateLimit = 30 * time.Second

	// Delay antar restore session saat startup
	interRestoreDelay = 1 * time.Second
)

// Supervisor memegang tabel connection yang hidup untuk semua owner dan slot.
// Semua akses tabel lewat mutex; mutasi per-slot hanya menyentuh entry slot
// itu sendiri sehingga slot yang berbeda tidak saling mengganggu.
type Supervisor struct {
	store    *utils.UserStore
	notifier Notifier
	logger   *utils.AppLogger

	reconnectDelay       time.Duration
	maxReconnectAttempts int

	mu                sync.RWMutex
	sessions          map[int64]map[string]*Connection
	reconnectAttempts map[string]int
}

// NewSupervisor membuat Supervisor dengan dependency yang di-inject
func NewSupervisor(store *utils.UserStore, notifier Notifier, cfg *utils.Config) *Supervisor {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	reconnectDelay := 5 * time.Second
	maxAttempts := 3
	if cfg != nil {
		reconnectDelay = cfg.ReconnectDelay()
		maxAttempts = cfg.Settings.MaxReconnectAttempts
	}
	return &Supervisor{
		store:                store,
		notifier:             notifier,
		logger:               utils.GetLogger(),
		reconnectDelay:       reconnectDelay,
		maxReconnectAttempts: maxAttempts,
		sessions:             make(map[int64]map[string]*Connection),
		reconnectAttempts:    make(map[string]int),
	}
}

// SetNotifier mengganti notification sink (dipanggil sekali saat startup
// setelah Telegram bot siap)
func (s *Supervisor) SetNotifier(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n != nil {
		s.notifier = n
	}
}

func slotKey(ownerID int64, slotID string) string {
	return fmt.Sprintf("%d:%s", ownerID, slotID)
}

// ResolveSlot mengembalikan slot yang dipakai kalau caller tidak menyebut
// slot eksplisit: active slot dari store, default "slot_1"
func (s *Supervisor) ResolveSlot(ownerID int64, slotID string) string {
	if slotID != "" {
		return slotID
	}
	return s.store.GetActiveSlot(ownerID)
}

// GetConnection mengembalikan Connection untuk slot, nil jika tidak ada
func (s *Supervisor) GetConnection(ownerID int64, slotID string) *Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[ownerID][slotID]
}

// GetConnectedClient mengembalikan client yang hidup dan open untuk slot.
// Fail fast dengan ErrNotConnected kalau tidak ada.
func (s *Supervisor) GetConnectedClient(ownerID int64, slotID string) (*whatsmeow.Client, error) {
	slotID = s.ResolveSlot(ownerID, slotID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	conn := s.sessions[ownerID][slotID]
	if conn == nil || conn.Client == nil || !conn.IsConnected || !conn.Client.IsConnected() {
		return nil, ErrNotConnected
	}
	return conn.Client, nil
}

// registerConnection memasukkan Connection ke tabel sebelum socket open.
// Client lama untuk slot yang sama di-disconnect dulu supaya tidak ada dua
// socket hidup untuk satu slot.
func (s *Supervisor) registerConnection(conn *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sessions[conn.OwnerID] == nil {
		s.sessions[conn.OwnerID] = make(map[string]*Connection)
	}
	if old := s.sessions[conn.OwnerID][conn.SlotID]; old != nil && old.Client != nil {
		old.teardown()
	}
	s.sessions[conn.OwnerID][conn.SlotID] = conn
}

// removeConnection menghapus entry slot dari tabel (untuk logout)
func (s *Supervisor) removeConnection(ownerID int64, slotID string) *Connection {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn := s.sessions[ownerID][slotID]
	if conn != nil {
		delete(s.sessions[ownerID], slotID)
		if len(s.sessions[ownerID]) == 0 {
			delete(s.sessions, ownerID)
		}
	}
	delete(s.reconnectAttempts, slotKey(ownerID, slotID))
	return conn
}

// resetConnectionEntry mengganti entry slot dengan Connection kosong yang
// isConnected=false (untuk terminal disconnect: slot tetap terdaftar tapi
// tidak punya socket)
func (s *Supervisor) resetConnectionEntry(ownerID int64, slotID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old := s.sessions[ownerID][slotID]; old != nil {
		old.teardown()
	}
	if s.sessions[ownerID] == nil {
		s.sessions[ownerID] = make(map[string]*Connection)
	}
	s.sessions[ownerID][slotID] = &Connection{
		OwnerID: ownerID,
		SlotID:  slotID,
	}
	delete(s.reconnectAttempts, slotKey(ownerID, slotID))
}

// CreateConnection membuat connection baru untuk slot dan mendaftarkannya
// di tabel sebelum socket open. Kredensial lama tidak pernah dihapus di sini.
// Untuk path reconnect/restore, kegagalan tidak dinotifikasi ke owner.
func (s *Supervisor) CreateConnection(ownerID int64, slotID string, isReconnect, isRestore bool) (*Connection, error) {
	slotID = s.ResolveSlot(ownerID, slotID)

	if err := utils.EnsureSessionDir(ownerID, slotID); err != nil {
		return nil, err
	}
	hadCredentials := utils.HasSessionCredentials(ownerID, slotID)

	dbLog := waLog.Stdout("Database", "ERROR", true)
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&mode=rwc&_journal_mode=DELETE&cache=shared&_busy_timeout=10000&_sync=1",
		utils.SessionDBPath(ownerID, slotID))

	container, err := sqlstore.New(context.Background(), "sqlite3", dsn, dbLog)
	if err != nil {
		return nil, s.connectionFailed(ownerID, isReconnect, isRestore, fmt.Errorf("failed to create SQL store: %w", err))
	}

	deviceStore, err := container.GetFirstDevice(context.Background())
	if err != nil {
		return nil, s.connectionFailed(ownerID, isReconnect, isRestore, fmt.Errorf("failed to get device store: %w", err))
	}

	baseLog := waLog.Stdout("Client", "ERROR", true)
	client := whatsmeow.NewClient(deviceStore, &utils.FilteredLogger{Logger: baseLog})

	// Ambil setting auto-accept yang tersimpan supaya connection baru langsung
	// pakai preferensi terakhir user
	autoAccept := false
	if data, err := s.store.LoadUser(ownerID); err == nil {
		if slot := data.Sessions[slotID]; slot != nil {
			autoAccept = slot.AutoAccept.Enabled
		}
	}

	conn := &Connection{
		OwnerID:           ownerID,
		SlotID:            slotID,
		Client:            client,
		AutoAcceptEnabled: autoAccept,
		hadCredentials:    hadCredentials,
		isRestore:         isRestore,
		isReconnect:       isReconnect,
	}
	conn.handlerID = client.AddEventHandler(s.makeEventHandler(conn))
	s.registerConnection(conn)

	if err := client.Connect(); err != nil {
		s.removeConnection(ownerID, slotID)
		return nil, s.connectionFailed(ownerID, isReconnect, isRestore, fmt.Errorf("failed to connect: %w", err))
	}

	s.logger.Info("Supervisor: connection dibuat untuk owner=%d slot=%s (reconnect=%v restore=%v creds=%v)",
		ownerID, slotID, isReconnect, isRestore, hadCredentials)
	return conn, nil
}

// connectionFailed menangani kegagalan create: notifikasi hanya untuk
// aksi login eksplisit, path reconnect/restore diam
func (s *Supervisor) connectionFailed(ownerID int64, isReconnect, isRestore bool, err error) error {
	s.logger.Error("Supervisor: gagal membuat connection untuk owner=%d: %v", ownerID, err)
	if !isReconnect && !isRestore {
		_ = s.notifier.SendText(ownerID, "❌ Gagal membuat koneksi WhatsApp. Coba lagi nanti ya!")
	}
	return err
}

// GeneratePairingCode meminta pairing code untuk slot yang connection-nya
// sudah dibuat. Kode berlaku ±60 detik, di-enforce oleh server WhatsApp.
func (s *Supervisor) GeneratePairingCode(ownerID int64, phoneNumber, slotID string) (string, error) {
	slotID = s.ResolveSlot(ownerID, slotID)

	s.mu.Lock()
	conn := s.sessions[ownerID][slotID]
	if conn == nil || conn.Client == nil {
		s.mu.Unlock()
		return "", ErrNoConnection
	}
	conn.IsWaitingForPairingCode = true
	client := conn.Client
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	code, err := client.PairPhone(ctx, phoneNumber, true, whatsmeow.PairClientChrome, "Chrome (Windows)")
	if err != nil {
		return "", wrapRPCError(ctx, err, "failed to request pairing code")
	}

	_ = s.notifier.SendText(ownerID, fmt.Sprintf(
		"🔑 **PAIRING CODE**\n\nKode: `%s`\n\nBuka WhatsApp > Perangkat Tertaut > Tautkan dengan nomor telepon, lalu masukkan kode di atas.\n\n⏰ Kode berlaku 60 detik.", code))
	return code, nil
}

// Logout menutup socket slot, menghapus kredensial dan entry in-memory,
// lalu menulis state inactive ke store. Idempotent: slot yang sudah tidak
// ada bukan error.
func (s *Supervisor) Logout(ownerID int64, slotID string) error {
	slotID = s.ResolveSlot(ownerID, slotID)

	conn := s.removeConnection(ownerID, slotID)
	if conn != nil && conn.Client != nil {
		if conn.Client.Store.ID != nil {
			ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
			if err := conn.Client.Logout(ctx); err != nil {
				// Logout remote gagal (mis. socket sudah mati), lanjut cleanup lokal
				s.logger.Warn("Supervisor: logout remote gagal untuk owner=%d slot=%s: %v", ownerID, slotID, err)
			}
			cancel()
		}
		// teardown menulis field connection, jadi tetap lewat mutex walau
		// entry-nya sudah keluar dari tabel (continuation basi masih bisa
		// membaca connection yang sama)
		s.mu.Lock()
		conn.teardown()
		s.mu.Unlock()
	}

	if err := utils.DeleteSessionCredentials(ownerID, slotID); err != nil {
		return err
	}

	inactive := false
	emptyName := ""
	var noTime *time.Time
	if err := s.store.UpdateSlotState(ownerID, slotID, utils.SlotUpdate{
		SessionName: &emptyName,
		LastConnect: &noTime,
		IsActive:    &inactive,
	}); err != nil {
		return err
	}

	s.logger.Info("Supervisor: logout owner=%d slot=%s selesai", ownerID, slotID)
	return nil
}

// ToggleAutoAccept mengubah setting auto-accept slot di memory dan store.
// Kalau diaktifkan saat connection sudah open, handler di-wire (idempotent)
// dan satu sweep pending request langsung dijadwalkan.
func (s *Supervisor) ToggleAutoAccept(ownerID int64, enabled bool, slotID string) (string, error) {
	slotID = s.ResolveSlot(ownerID, slotID)

	if err := s.store.UpdateSlotState(ownerID, slotID, utils.SlotUpdate{AutoAccept: &enabled}); err != nil {
		return "", err
	}

	s.mu.Lock()
	conn := s.sessions[ownerID][slotID]
	var sweepConn *Connection
	if conn != nil {
		conn.AutoAcceptEnabled = enabled
		if enabled && conn.IsConnected {
			s.wireAutoAcceptLocked(conn)
			sweepConn = conn
		}
	}
	s.mu.Unlock()

	if sweepConn != nil {
		go s.sweepPendingRequests(sweepConn)
	}

	s.logger.Info("Supervisor: auto-accept owner=%d slot=%s -> %v", ownerID, slotID, enabled)
	return slotID, nil
}

// RestoreAllSessions memindai credential store saat startup dan menghidupkan
// kembali semua slot milik owner yang premiumnya masih aktif. Entitlement
// dicek ulang di sini, bukan dari cache sebelum restart.
func (s *Supervisor) RestoreAllSessions() []utils.RestorableSlot {
	slots, err := utils.ScanRestorableSlots()
	if err != nil {
		s.logger.Error("Supervisor: gagal scan session untuk restore: %v", err)
		return nil
	}

	var restored []utils.RestorableSlot
	for i, slot := range slots {
		if !s.store.IsPremiumUser(slot.OwnerID) {
			s.logger.Warn("Supervisor: skip restore owner=%d slot=%s (premium tidak aktif)", slot.OwnerID, slot.SlotID)
			continue
		}

		if _, err := s.CreateConnection(slot.OwnerID, slot.SlotID, false, true); err != nil {
			s.logger.Warn("Supervisor: gagal restore owner=%d slot=%s: %v", slot.OwnerID, slot.SlotID, err)
			continue
		}
		restored = append(restored, slot)

		// Jangan burst ke server WhatsApp
		if i < len(slots)-1 {
			time.Sleep(interRestoreDelay)
		}
	}

	s.logger.Success("Supervisor: restore selesai, %d dari %d session hidup kembali", len(restored), len(slots))
	return restored
}

// DisconnectAll menutup semua socket yang hidup (untuk shutdown).
// State durable tidak diubah supaya restore berikutnya tetap jalan.
func (s *Supervisor) DisconnectAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for ownerID, slots := range s.sessions {
		for slotID, conn := range slots {
			if conn.Client != nil {
				conn.teardown()
				count++
				s.logger.Info("Supervisor: disconnect owner=%d slot=%s", ownerID, slotID)
			}
		}
	}
	s.sessions = make(map[int64]map[string]*Connection)
	s.reconnectAttempts = make(map[string]int)
	return count
}

// ConnectedSlots mengembalikan daftar slot yang sedang terhubung untuk owner
func (s *Supervisor) ConnectedSlots(ownerID int64) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var connected []string
	for slotID, conn := range s.sessions[ownerID] {
		if conn.IsConnected {
			connected = append(connected, slotID)
		}
	}
	return connected
}

// IsSlotConnected mengecek apakah slot sedang punya socket open
func (s *Supervisor) IsSlotConnected(ownerID int64, slotID string) bool {
	slotID = s.ResolveSlot(ownerID, slotID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	conn := s.sessions[ownerID][slotID]
	return conn != nil && conn.IsConnected
}

// SendTextMessage mengirim pesan teks lewat slot yang terhubung
func (s *Supervisor) SendTextMessage(ownerID int64, slotID string, to types.JID, text string) error {
	client, err := s.GetConnectedClient(ownerID, slotID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	_, err = client.SendMessage(ctx, to, &waE2E.Message{
		Conversation: proto.String(text),
	})
	if err != nil {
		return wrapRPCError(ctx, err, "failed to send message")
	}
	return nil
}

// SlotLabel membuat label tampilan dari slot id: "slot_2" -> "Slot 2"
func SlotLabel(slotID string) string {
	number := strings.TrimPrefix(slotID, "slot_")
	return fmt.Sprintf("Slot %s", number)
}
