package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *UserStore {
	t.Helper()
	store, err := NewUserStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestLoadUserDefault(t *testing.T) {
	store := newTestStore(t)

	data, err := store.LoadUser(111)
	require.NoError(t, err)
	assert.Equal(t, int64(111), data.UserID)
	assert.NotNil(t, data.Sessions)
	assert.Nil(t, data.Premium.Expiry)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	store := newTestStore(t)

	data, err := store.LoadUser(222)
	require.NoError(t, err)
	data.Username = "tester"
	data.Sessions["slot_1"] = &SlotState{SessionName: "Akun Utama"}
	require.NoError(t, store.SaveUser(data))

	loaded, err := store.LoadUser(222)
	require.NoError(t, err)
	assert.Equal(t, "tester", loaded.Username)
	assert.Equal(t, "Akun Utama", loaded.Sessions["slot_1"].SessionName)
}

func TestAddPremiumCreatesFirstSlot(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.AddPremium(333, 30, 1))

	assert.True(t, store.IsPremiumUser(333))
	data, err := store.LoadUser(333)
	require.NoError(t, err)
	assert.Equal(t, 1, data.Premium.TotalSlots)
	assert.Contains(t, data.Sessions, "slot_1")
	assert.Equal(t, "slot_1", data.ActiveSlot)
}

func TestAddPremiumExtendsFromExpiry(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.AddPremium(444, 30, 1))
	data, err := store.LoadUser(444)
	require.NoError(t, err)
	firstExpiry := *data.Premium.Expiry

	// Perpanjangan saat masih aktif di-extend dari expiry, bukan dari sekarang
	require.NoError(t, store.AddPremium(444, 30, 0))
	data, err = store.LoadUser(444)
	require.NoError(t, err)

	expected := firstExpiry.AddDate(0, 0, 30)
	assert.WithinDuration(t, expected, *data.Premium.Expiry, time.Second)
	assert.Equal(t, 1, data.Premium.TotalSlots)
}

func TestIsPremiumUserExpired(t *testing.T) {
	store := newTestStore(t)

	data, err := store.LoadUser(555)
	require.NoError(t, err)
	expired := time.Now().Add(-time.Hour)
	data.Premium.Expiry = &expired
	require.NoError(t, store.SaveUser(data))

	assert.False(t, store.IsPremiumUser(555))
}

func TestGetNextAvailableSlot(t *testing.T) {
	store := newTestStore(t)

	// Tanpa kuota, tidak ada slot tersedia
	assert.Equal(t, "", store.GetNextAvailableSlot(666))

	require.NoError(t, store.AddPremium(666, 30, 2))
	// slot_1 sudah dibuat otomatis, berikutnya slot_2
	assert.Equal(t, "slot_2", store.GetNextAvailableSlot(666))

	require.NoError(t, store.CreateSessionSlot(666, "slot_2"))
	// Kuota penuh
	assert.Equal(t, "", store.GetNextAvailableSlot(666))
}

func TestSwitchActiveSlot(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.AddPremium(777, 30, 2))
	require.NoError(t, store.CreateSessionSlot(777, "slot_2"))

	assert.Equal(t, "slot_1", store.GetActiveSlot(777))
	require.NoError(t, store.SwitchActiveSlot(777, "slot_2"))
	assert.Equal(t, "slot_2", store.GetActiveSlot(777))

	// Slot yang tidak ada ditolak
	assert.Error(t, store.SwitchActiveSlot(777, "slot_9"))
}

func TestUpdateSlotStateMerge(t *testing.T) {
	store := newTestStore(t)

	name := "Akun Bisnis"
	enabled := true
	require.NoError(t, store.UpdateSlotState(888, "slot_1", SlotUpdate{
		SessionName: &name,
		AutoAccept:  &enabled,
	}))

	// Partial update tidak menyentuh field lain
	now := time.Now()
	nowPtr := &now
	active := true
	require.NoError(t, store.UpdateSlotState(888, "slot_1", SlotUpdate{
		LastConnect: &nowPtr,
		IsActive:    &active,
	}))

	data, err := store.LoadUser(888)
	require.NoError(t, err)
	slot := data.Sessions["slot_1"]
	require.NotNil(t, slot)
	assert.Equal(t, "Akun Bisnis", slot.SessionName)
	assert.True(t, slot.AutoAccept.Enabled)
	assert.True(t, slot.IsActive)
	require.NotNil(t, slot.LastConnect)

	// LastConnect bisa di-reset ke nil lewat pointer-ke-pointer
	var noTime *time.Time
	require.NoError(t, store.UpdateSlotState(888, "slot_1", SlotUpdate{LastConnect: &noTime}))
	data, err = store.LoadUser(888)
	require.NoError(t, err)
	assert.Nil(t, data.Sessions["slot_1"].LastConnect)
}

func TestAddPaymentRecord(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.AddPaymentRecord(999, 15001, "first_slot", "TRX123"))

	data, err := store.LoadUser(999)
	require.NoError(t, err)
	require.Len(t, data.Premium.PaymentHistory, 1)
	assert.Equal(t, 15001, data.Premium.PaymentHistory[0].Amount)
	assert.Equal(t, "TRX123", data.Premium.PaymentHistory[0].TrxID)
}

func TestListOwners(t *testing.T) {
	store := newTestStore(t)

	for _, id := range []int64{30, 10, 20} {
		data, err := store.LoadUser(id)
		require.NoError(t, err)
		require.NoError(t, store.SaveUser(data))
	}

	owners, err := store.ListOwners()
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20, 30}, owners)
}
