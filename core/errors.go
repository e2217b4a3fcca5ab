package core

import (
	"context"
	"errors"
	"fmt"
)

// Error dasar yang dipakai di seluruh operasi session
var (
	// ErrNotConnected berarti slot target tidak punya socket yang hidup dan open
	ErrNotConnected = errors.New("session tidak terhubung")

	// ErrNoConnection berarti belum ada Connection untuk slot (pairing butuh createConnection dulu)
	ErrNoConnection = errors.New("connection belum dibuat untuk slot ini")

	// ErrTimeout berarti RPC protokol melewati batas 15 detik
	ErrTimeout = errors.New("operasi timeout")

	// ErrNotAdmin berarti bot bukan admin di grup target
	ErrNotAdmin = errors.New("bot bukan admin di grup ini")

	// ErrNotPremium berarti owner tidak punya entitlement premium aktif
	ErrNotPremium = errors.New("premium tidak aktif")
)

// wrapRPCError menerjemahkan kegagalan RPC protokol: deadline yang lewat
// dilaporkan sebagai ErrTimeout, kegagalan lain di-wrap dengan konteksnya
func wrapRPCError(ctx context.Context, err error, msg string) error {
	if ctx.Err() != nil {
		return ErrTimeout
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// ParticipantStatusCode adalah enumerasi kode status per-participant dari
// mutasi grup (add/promote/demote/approve)
type ParticipantStatusCode int

const (
	ParticipantStatusOK           ParticipantStatusCode = 200
	ParticipantStatusBadRequest   ParticipantStatusCode = 400
	ParticipantStatusUnauthorized ParticipantStatusCode = 401
	ParticipantStatusPrivacy      ParticipantStatusCode = 403
	ParticipantStatusNotFound     ParticipantStatusCode = 404
	ParticipantStatusTimeout      ParticipantStatusCode = 408
	ParticipantStatusInGroup      ParticipantStatusCode = 409
)

// ParticipantError adalah penolakan remote untuk satu participant
type ParticipantError struct {
	JID  string
	Code ParticipantStatusCode
}

func (e *ParticipantError) Error() string {
	return fmt.Sprintf("participant %s: %s", e.JID, e.Code.Reason())
}

// Reason memetakan kode status ke alasan yang bisa ditampilkan ke user.
// Kode yang tidak dikenal jatuh ke pesan generik yang tetap membawa kode mentahnya.
func (c ParticipantStatusCode) Reason() string {
	switch c {
	case ParticipantStatusPrivacy:
		return "Setting privasi menolak (nomor memblokir bot atau membatasi invite grup)"
	case ParticipantStatusTimeout:
		return "Timeout, coba lagi nanti"
	case ParticipantStatusInGroup:
		return "Sudah jadi member grup"
	case ParticipantStatusBadRequest:
		return "Request tidak valid (nomor tidak terdaftar di WhatsApp?)"
	case ParticipantStatusUnauthorized:
		return "Tidak diizinkan (bot bukan admin?)"
	case ParticipantStatusNotFound:
		return "Nomor tidak ditemukan"
	default:
		return fmt.Sprintf("Error tidak dikenal (kode %d)", int(c))
	}
}

// DisconnectKind mengklasifikasikan close event dari protokol
type DisconnectKind int

const (
	// DisconnectTransient: boleh reconnect otomatis
	DisconnectTransient DisconnectKind = iota
	// DisconnectTerminal: logout/banned, kredensial harus dihapus
	DisconnectTerminal
)

// ClassifyDisconnect memetakan status code close event ke transient/terminal.
// 401 (logged out) dan 403 (forbidden/banned) berarti kredensial sudah tidak
// berlaku di sisi server, sisanya dianggap gangguan sementara.
func ClassifyDisconnect(statusCode int) DisconnectKind {
	switch statusCode {
	case 401, 403:
		return DisconnectTerminal
	default:
		return DisconnectTransient
	}
}
