package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyDisconnect(t *testing.T) {
	assert.Equal(t, DisconnectTerminal, ClassifyDisconnect(401))
	assert.Equal(t, DisconnectTerminal, ClassifyDisconnect(403))

	assert.Equal(t, DisconnectTransient, ClassifyDisconnect(0))
	assert.Equal(t, DisconnectTransient, ClassifyDisconnect(408))
	assert.Equal(t, DisconnectTransient, ClassifyDisconnect(500))
	assert.Equal(t, DisconnectTransient, ClassifyDisconnect(515))
}

func TestParticipantStatusReason(t *testing.T) {
	assert.Contains(t, ParticipantStatusPrivacy.Reason(), "privasi")
	assert.Contains(t, ParticipantStatusInGroup.Reason(), "member")
	assert.Contains(t, ParticipantStatusTimeout.Reason(), "Timeout")

	// Kode tak dikenal tetap membawa kode mentahnya
	assert.Contains(t, ParticipantStatusCode(999).Reason(), "999")
}

func TestParticipantError(t *testing.T) {
	err := &ParticipantError{JID: "628123456789", Code: ParticipantStatusPrivacy}
	assert.Contains(t, err.Error(), "628123456789")

	var target *ParticipantError
	assert.True(t, errors.As(error(err), &target))
	assert.Equal(t, ParticipantStatusPrivacy, target.Code)
}

func TestWrapRPCError(t *testing.T) {
	cause := errors.New("socket closed")

	// Deadline yang lewat dilaporkan sebagai ErrTimeout, apapun error aslinya
	expired, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, wrapRPCError(expired, cause, "failed to request pairing code"), ErrTimeout)

	// Kegagalan lain di-wrap dengan konteks dan tetap bisa di-unwrap
	err := wrapRPCError(context.Background(), cause, "failed to send message")
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to send message")
}

func TestSlotLabel(t *testing.T) {
	assert.Equal(t, "Slot 1", SlotLabel("slot_1"))
	assert.Equal(t, "Slot 12", SlotLabel("slot_12"))
}

func TestSlotKey(t *testing.T) {
	assert.Equal(t, "42:slot_1", slotKey(42, "slot_1"))
}
