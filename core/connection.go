package core

import (
	"fmt"
	"time"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/types/events"

	"github.com/Qilleer/debughampirdone/utils"
)

// Connection adalah handle in-memory satu slot. Volatile: dibangun ulang dari
// credential store + user store setelah restart. Field di-guard oleh mutex
// Supervisor, bukan mutex sendiri.
type Connection struct {
	OwnerID int64
	SlotID  string
	Client  *whatsmeow.Client

	IsConnected             bool
	IsWaitingForPairingCode bool
	IsWaitingForQR          bool
	LastQRTime              time.Time
	SessionName             string
	AutoAcceptEnabled       bool

	// Handle subscription event handler utama dan handler auto-accept.
	// autoAcceptHandlerID != 0 berarti handler join-request sudah ter-wire,
	// jadi wiring kedua jadi no-op (guard idempotensi).
	handlerID           uint32
	autoAcceptHandlerID uint32

	hadCredentials bool
	isRestore      bool
	isReconnect    bool
}

// teardown melepas event handler dan menutup socket. Aman dipanggil
// berulang kali.
func (c *Connection) teardown() {
	if c.Client == nil {
		return
	}
	if c.autoAcceptHandlerID != 0 {
		c.Client.RemoveEventHandler(c.autoAcceptHandlerID)
		c.autoAcceptHandlerID = 0
	}
	if c.handlerID != 0 {
		c.Client.RemoveEventHandler(c.handlerID)
		c.handlerID = 0
	}
	c.Client.Disconnect()
	c.IsConnected = false
}

// makeEventHandler membuat event handler utama untuk satu connection.
// Handler di-scope ke connection ini saja; event slot lain lewat handler
// milik connection masing-masing.
func (s *Supervisor) makeEventHandler(conn *Connection) func(interface{}) {
	return func(evt interface{}) {
		switch v := evt.(type) {
		case *events.Connected:
			s.handleOpen(conn)

		case *events.PairSuccess:
			s.mu.Lock()
			conn.IsWaitingForPairingCode = false
			conn.IsWaitingForQR = false
			s.mu.Unlock()
			s.logger.Success("Connection: pairing sukses owner=%d slot=%s (%s)", conn.OwnerID, conn.SlotID, v.ID.User)

		case *events.QR:
			s.handleQR(conn, v.Codes)

		case *events.LoggedOut:
			code := int(v.Reason)
			if code == 0 {
				code = 401
			}
			s.handleClose(conn, code)

		case *events.ConnectFailure:
			s.handleClose(conn, int(v.Reason))

		case *events.Disconnected:
			// Stream putus tanpa status code: anggap gangguan sementara
			s.handleClose(conn, 0)

		case *events.JoinedGroup:
			// Bot baru masuk grup: langsung cek pending request di grup itu
			if _, enabled := s.autoAcceptState(conn); enabled {
				go s.approvePendingInGroup(conn, v.JID)
			}
		}
	}
}

// handleOpen menangani transisi ke state OPEN
func (s *Supervisor) handleOpen(conn *Connection) {
	ownerID, slotID := conn.OwnerID, conn.SlotID

	s.mu.Lock()
	// Connection bisa sudah diganti (logout/reconnect menyela); jangan sentuh
	// state slot kalau entry tabel bukan lagi connection ini
	if s.sessions[ownerID][slotID] != conn {
		s.mu.Unlock()
		return
	}

	conn.IsConnected = true
	conn.IsWaitingForPairingCode = false
	conn.IsWaitingForQR = false
	s.reconnectAttempts[slotKey(ownerID, slotID)] = 0

	// Nama session dari profil remote, fallback label slot
	sessionName := conn.Client.Store.PushName
	if sessionName == "" {
		sessionName = SlotLabel(slotID)
	}
	conn.SessionName = sessionName

	wireSweep := false
	if conn.AutoAcceptEnabled {
		s.wireAutoAcceptLocked(conn)
		wireSweep = true
	}
	isRestore := conn.isRestore
	s.mu.Unlock()

	now := time.Now()
	nowPtr := &now
	active := true
	if err := s.store.UpdateSlotState(ownerID, slotID, utils.SlotUpdate{
		SessionName: &sessionName,
		LastConnect: &nowPtr,
		IsActive:    &active,
	}); err != nil {
		s.logger.Warn("Connection: gagal persist state open owner=%d slot=%s: %v", ownerID, slotID, err)
	}

	s.logger.Success("Connection: open owner=%d slot=%s (%s)", ownerID, slotID, sessionName)

	if wireSweep {
		// Tunggu state grup selesai sync dulu sebelum sweep. Continuation
		// cek ulang tabel saat jalan: logout yang menyela bikin sweep no-op.
		time.AfterFunc(connectSettleDelay, func() {
			s.mu.RLock()
			stillOpen := s.sessions[ownerID][slotID] == conn && conn.IsConnected
			s.mu.RUnlock()
			if !stillOpen {
				return
			}
			s.sweepPendingRequests(conn)
		})
	}

	if !isRestore {
		_ = s.notifier.SendText(ownerID, "✅ **WHATSAPP TERHUBUNG!**\n\nSession *"+sessionName+"* siap dipakai.\n\nGunakan /menu untuk mulai.")
	}
}

// handleClose mengklasifikasikan close event dan menjalankan kebijakan
// reconnect/terminal
func (s *Supervisor) handleClose(conn *Connection, statusCode int) {
	ownerID, slotID := conn.OwnerID, conn.SlotID

	s.mu.Lock()
	if s.sessions[ownerID][slotID] != conn {
		// Entry sudah diganti (logout atau reconnect lain), close event basi
		s.mu.Unlock()
		return
	}
	conn.IsConnected = false
	s.mu.Unlock()

	if ClassifyDisconnect(statusCode) == DisconnectTerminal {
		s.logger.Warn("Connection: terminal disconnect owner=%d slot=%s code=%d", ownerID, slotID, statusCode)
		s.handleTerminal(conn, statusCode, true)
		return
	}

	s.handleTransient(conn, statusCode)
}

// handleTransient menjalankan kebijakan retry: maksimal maxReconnectAttempts
// percobaan berturut-turut dengan delay tetap, notifikasi hanya di percobaan
// pertama
func (s *Supervisor) handleTransient(conn *Connection, statusCode int) {
	ownerID, slotID := conn.OwnerID, conn.SlotID
	key := slotKey(ownerID, slotID)

	s.mu.Lock()
	s.reconnectAttempts[key]++
	attempt := s.reconnectAttempts[key]
	s.mu.Unlock()

	if attempt > s.maxReconnectAttempts {
		// Budget retry habis: perlakukan sebagai terminal tapi kredensial
		// dipertahankan untuk recovery manual
		s.logger.Warn("Connection: retry habis owner=%d slot=%s setelah %d percobaan", ownerID, slotID, attempt-1)
		s.handleTerminal(conn, statusCode, false)
		return
	}

	s.logger.Info("Connection: transient disconnect owner=%d slot=%s (code=%d), reconnect percobaan %d/%d dalam %v",
		ownerID, slotID, statusCode, attempt, s.maxReconnectAttempts, s.reconnectDelay)

	if attempt == 1 && !conn.isRestore {
		_ = s.notifier.SendText(ownerID, "⚠️ Koneksi WhatsApp terputus, mencoba menyambung ulang...")
	}

	time.AfterFunc(s.reconnectDelay, func() {
		// Continuation basi jadi no-op kalau entry slot sudah diganti/dihapus
		// oleh logout yang menyela
		s.mu.RLock()
		current := s.sessions[ownerID][slotID]
		s.mu.RUnlock()
		if current != conn {
			return
		}

		if _, err := s.CreateConnection(ownerID, slotID, true, false); err != nil {
			// Kegagalan connect di path reconnect dihitung lewat close event
			// berikutnya, tidak di sini
			s.logger.Warn("Connection: reconnect gagal owner=%d slot=%s: %v", ownerID, slotID, err)
		}
	})
}

// handleTerminal membersihkan slot yang disconnect-nya tidak bisa dipulihkan.
// deleteCredentials hanya true untuk unauthorized/forbidden; budget retry
// habis tetap menyisakan kredensial.
func (s *Supervisor) handleTerminal(conn *Connection, statusCode int, deleteCredentials bool) {
	ownerID, slotID := conn.OwnerID, conn.SlotID

	if deleteCredentials {
		if err := utils.DeleteSessionCredentials(ownerID, slotID); err != nil {
			s.logger.Error("Connection: gagal hapus kredensial owner=%d slot=%s: %v", ownerID, slotID, err)
		}
	}

	s.resetConnectionEntry(ownerID, slotID)

	inactive := false
	if err := s.store.UpdateSlotState(ownerID, slotID, utils.SlotUpdate{IsActive: &inactive}); err != nil {
		s.logger.Warn("Connection: gagal persist state terminal owner=%d slot=%s: %v", ownerID, slotID, err)
	}

	if !conn.isRestore {
		if deleteCredentials {
			_ = s.notifier.SendText(ownerID, fmt.Sprintf(
				"🚪 **SESSION LOGOUT**\n\nWhatsApp melaporkan session sudah tidak berlaku (kode %d).\n\nData login dihapus, silakan login ulang lewat /menu.", statusCode))
		} else {
			_ = s.notifier.SendText(ownerID, fmt.Sprintf(
				"❌ **KONEKSI GAGAL**\n\nSudah %dx mencoba menyambung ulang tapi gagal terus.\n\nCoba login ulang lewat /menu.", s.maxReconnectAttempts))
		}
	}
}

// handleQR mengirim gambar QR login ke owner. Dibatasi satu gambar per 30
// detik per slot, dan hanya untuk slot yang belum punya kredensial.
func (s *Supervisor) handleQR(conn *Connection, codes []string) {
	if len(codes) == 0 {
		return
	}

	s.mu.Lock()
	if conn.hadCredentials {
		s.mu.Unlock()
		return
	}
	if !conn.LastQRTime.IsZero() && time.Since(conn.LastQRTime) < qrRateLimit {
		s.mu.Unlock()
		return
	}
	conn.LastQRTime = time.Now()
	conn.IsWaitingForQR = true
	ownerID := conn.OwnerID
	s.mu.Unlock()

	png, err := utils.RenderQRPNG(codes[0], 300)
	if err != nil {
		s.logger.Error("Connection: gagal render QR owner=%d: %v", ownerID, err)
		return
	}

	if err := s.notifier.SendImage(ownerID, png,
		"📱 **SCAN QR CODE**\n\nBuka WhatsApp > Perangkat Tertaut > Tautkan Perangkat, lalu scan QR di atas.\n\n⏰ QR berganti tiap beberapa detik, gambar baru dikirim maksimal 30 detik sekali."); err != nil {
		s.logger.Warn("Connection: gagal kirim QR owner=%d: %v", ownerID, err)
	}
}
