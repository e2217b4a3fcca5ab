package core

import (
	"context"
	"strings"
	"time"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
)

// Delay antar approval supaya tidak kena rate limit server
const interApprovalDelay = 1 * time.Second

// autoAcceptState membaca client dan flag auto-accept di bawah lock.
// Event handler dan continuation jalan di goroutine sendiri sementara
// ToggleAutoAccept menulis flag-nya, jadi snapshot wajib lewat mutex.
func (s *Supervisor) autoAcceptState(conn *Connection) (*whatsmeow.Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return conn.Client, conn.AutoAcceptEnabled
}

// wireAutoAcceptLocked memasang handler join-request untuk satu connection.
// Dipanggil dengan s.mu held. Idempotent: subscription kedua jadi no-op
// karena handle subscription pertama masih tersimpan.
func (s *Supervisor) wireAutoAcceptLocked(conn *Connection) {
	if conn.autoAcceptHandlerID != 0 || conn.Client == nil {
		return
	}
	conn.autoAcceptHandlerID = conn.Client.AddEventHandler(func(evt interface{}) {
		if v, ok := evt.(*events.GroupInfo); ok {
			if _, enabled := s.autoAcceptState(conn); enabled {
				// Event membership update (termasuk join request) untuk grup
				// ini: cek dan approve pending request-nya
				go s.approvePendingInGroup(conn, v.JID)
			}
		}
	})
	s.logger.Debug("AutoAccept: handler ter-wire owner=%d slot=%s", conn.OwnerID, conn.SlotID)
}

// sweepPendingRequests memeriksa semua grup tempat slot ini jadi admin dan
// approve semua pending join request yang ditemukan. Dipanggil setelah
// connect (dengan settle delay) dan saat auto-accept diaktifkan.
func (s *Supervisor) sweepPendingRequests(conn *Connection) {
	client, enabled := s.autoAcceptState(conn)
	if !enabled || client == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	groups, err := client.GetJoinedGroups(ctx)
	cancel()
	if err != nil {
		s.logger.Warn("AutoAccept: gagal ambil daftar grup owner=%d slot=%s: %v", conn.OwnerID, conn.SlotID, err)
		return
	}

	swept := 0
	for _, group := range groups {
		if !isSelfAdminInGroup(client, group) {
			continue
		}
		s.approvePendingInGroup(conn, group.JID)
		swept++
	}
	s.logger.Info("AutoAccept: sweep selesai owner=%d slot=%s (%d grup admin dicek)", conn.OwnerID, conn.SlotID, swept)
}

// approvePendingInGroup mengambil daftar pending request satu grup dan
// approve satu per satu. Error per-participant ditelan supaya satu nomor
// bermasalah tidak membatalkan sisanya.
func (s *Supervisor) approvePendingInGroup(conn *Connection, groupJID types.JID) {
	client, enabled := s.autoAcceptState(conn)
	if !enabled || client == nil {
		return
	}

	pending := listPendingParticipants(client, groupJID)
	if len(pending) == 0 {
		return
	}

	s.logger.Info("AutoAccept: %d pending request di grup %s (owner=%d slot=%s)", len(pending), groupJID.User, conn.OwnerID, conn.SlotID)

	approved := 0
	for i, participant := range pending {
		ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
		_, err := client.UpdateGroupRequestParticipants(ctx, groupJID, []types.JID{participant}, whatsmeow.ParticipantChangeApprove)
		cancel()
		if err != nil {
			s.logger.Warn("AutoAccept: gagal approve %s di grup %s: %v", participant.User, groupJID.User, err)
		} else {
			approved++
		}

		if i < len(pending)-1 {
			time.Sleep(interApprovalDelay)
		}
	}

	if approved > 0 {
		s.logger.Success("AutoAccept: %d/%d request di-approve di grup %s", approved, len(pending), groupJID.User)
	}
}

// listPendingParticipants query daftar pending request satu grup.
// Query pertama kadang gagal transient sesaat setelah connect, jadi dicoba
// sekali lagi setelah jeda pendek sebelum menyerah.
func listPendingParticipants(client *whatsmeow.Client, groupJID types.JID) []types.JID {
	for attempt := 0; attempt < 2; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
		requests, err := client.GetGroupRequestParticipants(ctx, groupJID)
		cancel()
		if err == nil {
			var pending []types.JID
			for _, req := range requests {
				pending = append(pending, req.JID)
			}
			return pending
		}
		if attempt == 0 {
			time.Sleep(interApprovalDelay)
		}
	}
	return nil
}

// isSelfAdminInGroup mengecek apakah identitas slot ini admin di grup.
// Server bisa merepresentasikan akun yang sama lewat dua skema id (JID
// telepon dan LID), jadi match dicoba tiga arah: JID persis, LID persis,
// atau bagian numerik (tanpa device suffix) yang sama.
func isSelfAdminInGroup(client *whatsmeow.Client, info *types.GroupInfo) bool {
	if client.Store.ID == nil || info == nil {
		return false
	}
	selfJID := *client.Store.ID
	selfLID := client.Store.LID

	for _, participant := range info.Participants {
		if !participant.IsAdmin && !participant.IsSuperAdmin {
			continue
		}
		if participant.JID.User == selfJID.User {
			return true
		}
		if !selfLID.IsEmpty() && (participant.JID.User == selfLID.User || participant.LID.User == selfLID.User) {
			return true
		}
		if numericUser(participant.JID.User) == numericUser(selfJID.User) {
			return true
		}
		if !selfLID.IsEmpty() && numericUser(participant.LID.User) == numericUser(selfLID.User) {
			return true
		}
	}
	return false
}

// numericUser membuang device suffix dari bagian user sebuah id:
// "628123:12" -> "628123"
func numericUser(user string) string {
	if user == "" {
		return ""
	}
	if idx := strings.IndexByte(user, ':'); idx >= 0 {
		user = user[:idx]
	}
	return user
}
