package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Qilleer/debughampirdone/utils"
)

func newTestSupervisor(t *testing.T) *Supervisor {
	t.Helper()
	store, err := utils.NewUserStore(t.TempDir())
	require.NoError(t, err)
	return NewSupervisor(store, nil, nil)
}

func TestResolveSlotDefault(t *testing.T) {
	sup := newTestSupervisor(t)

	assert.Equal(t, "slot_1", sup.ResolveSlot(42, ""))
	assert.Equal(t, "slot_3", sup.ResolveSlot(42, "slot_3"))
}

func TestRegisterAndRemoveConnection(t *testing.T) {
	sup := newTestSupervisor(t)

	conn := &Connection{OwnerID: 42, SlotID: "slot_1"}
	sup.registerConnection(conn)

	assert.Equal(t, conn, sup.GetConnection(42, "slot_1"))
	assert.Nil(t, sup.GetConnection(42, "slot_2"))

	removed := sup.removeConnection(42, "slot_1")
	assert.Equal(t, conn, removed)
	assert.Nil(t, sup.GetConnection(42, "slot_1"))

	// Hapus slot yang sudah tidak ada bukan error
	assert.Nil(t, sup.removeConnection(42, "slot_1"))
}

func TestRegisterConnectionReplacesOldEntry(t *testing.T) {
	sup := newTestSupervisor(t)

	old := &Connection{OwnerID: 42, SlotID: "slot_1", IsConnected: true}
	sup.registerConnection(old)

	replacement := &Connection{OwnerID: 42, SlotID: "slot_1"}
	sup.registerConnection(replacement)

	// Entry lama diganti: continuation yang masih memegang old jadi basi
	assert.Equal(t, replacement, sup.GetConnection(42, "slot_1"))
	assert.NotEqual(t, old, sup.GetConnection(42, "slot_1"))
}

func TestResetConnectionEntry(t *testing.T) {
	sup := newTestSupervisor(t)

	conn := &Connection{OwnerID: 42, SlotID: "slot_1", IsConnected: true, SessionName: "Akun"}
	sup.registerConnection(conn)
	sup.reconnectAttempts[slotKey(42, "slot_1")] = 2

	sup.resetConnectionEntry(42, "slot_1")

	// Slot tetap terdaftar tapi dalam keadaan kosong
	entry := sup.GetConnection(42, "slot_1")
	require.NotNil(t, entry)
	assert.NotEqual(t, conn, entry)
	assert.False(t, entry.IsConnected)
	assert.Empty(t, entry.SessionName)

	sup.mu.RLock()
	_, hasAttempts := sup.reconnectAttempts[slotKey(42, "slot_1")]
	sup.mu.RUnlock()
	assert.False(t, hasAttempts)
}

func TestGetConnectedClientFailFast(t *testing.T) {
	sup := newTestSupervisor(t)

	// Tidak ada connection sama sekali
	_, err := sup.GetConnectedClient(42, "slot_1")
	assert.ErrorIs(t, err, ErrNotConnected)

	// Ada entry tapi tidak open
	sup.registerConnection(&Connection{OwnerID: 42, SlotID: "slot_1"})
	_, err = sup.GetConnectedClient(42, "slot_1")
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestConnectedSlots(t *testing.T) {
	sup := newTestSupervisor(t)

	sup.registerConnection(&Connection{OwnerID: 42, SlotID: "slot_1", IsConnected: true})
	sup.registerConnection(&Connection{OwnerID: 42, SlotID: "slot_2"})
	sup.registerConnection(&Connection{OwnerID: 43, SlotID: "slot_1", IsConnected: true})

	connected := sup.ConnectedSlots(42)
	assert.Equal(t, []string{"slot_1"}, connected)

	assert.True(t, sup.IsSlotConnected(42, "slot_1"))
	assert.False(t, sup.IsSlotConnected(42, "slot_2"))
}
