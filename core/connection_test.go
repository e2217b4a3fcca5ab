package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/types"
)

// recordingNotifier merekam notifikasi yang dikirim supervisor
type recordingNotifier struct {
	mu     sync.Mutex
	texts  []string
	images int
}

func (n *recordingNotifier) SendText(ownerID int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.texts = append(n.texts, text)
	return nil
}

func (n *recordingNotifier) SendImage(ownerID int64, image []byte, caption string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.images++
	return nil
}

func (n *recordingNotifier) DeleteMessage(int64, int) error { return nil }

func (n *recordingNotifier) imageCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.images
}

func (n *recordingNotifier) sentTexts() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.texts...)
}

func TestLogoutIdempotent(t *testing.T) {
	t.Chdir(t.TempDir())
	sup := newTestSupervisor(t)

	conn := &Connection{OwnerID: 42, SlotID: "slot_1", IsConnected: true}
	sup.registerConnection(conn)

	require.NoError(t, sup.Logout(42, "slot_1"))
	assert.Nil(t, sup.GetConnection(42, "slot_1"))

	data, err := sup.store.LoadUser(42)
	require.NoError(t, err)
	require.NotNil(t, data.Sessions["slot_1"])
	assert.False(t, data.Sessions["slot_1"].IsActive)
	assert.Empty(t, data.Sessions["slot_1"].SessionName)
	assert.Nil(t, data.Sessions["slot_1"].LastConnect)

	// Logout kedua pada slot yang sudah bersih tetap sukses
	require.NoError(t, sup.Logout(42, "slot_1"))
	assert.Nil(t, sup.GetConnection(42, "slot_1"))
}

func TestReconnectBudgetExhaustedGoesTerminal(t *testing.T) {
	t.Chdir(t.TempDir())
	sup := newTestSupervisor(t)
	sink := &recordingNotifier{}
	sup.SetNotifier(sink)

	conn := &Connection{OwnerID: 42, SlotID: "slot_1", IsConnected: true}
	sup.registerConnection(conn)

	// Close transient pertama: counter naik, entry slot tetap conn ini
	sup.handleClose(conn, 500)
	sup.mu.RLock()
	attempts := sup.reconnectAttempts[slotKey(42, "slot_1")]
	sup.mu.RUnlock()
	assert.Equal(t, 1, attempts)
	assert.Equal(t, conn, sup.GetConnection(42, "slot_1"))

	// Counter sudah di batas: close berikutnya menghabiskan budget dan
	// diperlakukan terminal
	sup.mu.Lock()
	sup.reconnectAttempts[slotKey(42, "slot_1")] = sup.maxReconnectAttempts
	sup.mu.Unlock()

	sup.handleClose(conn, 500)

	entry := sup.GetConnection(42, "slot_1")
	require.NotNil(t, entry)
	assert.NotEqual(t, conn, entry)
	assert.False(t, entry.IsConnected)

	sup.mu.RLock()
	_, hasAttempts := sup.reconnectAttempts[slotKey(42, "slot_1")]
	sup.mu.RUnlock()
	assert.False(t, hasAttempts)

	// Owner diberi tahu koneksi gagal, bukan pesan logout
	texts := sink.sentTexts()
	require.NotEmpty(t, texts)
	assert.Contains(t, texts[len(texts)-1], "KONEKSI GAGAL")
}

func TestOpenResetsReconnectCounter(t *testing.T) {
	t.Chdir(t.TempDir())
	sup := newTestSupervisor(t)

	jid := types.NewJID("628111111111", types.DefaultUserServer)
	conn := &Connection{
		OwnerID: 42,
		SlotID:  "slot_1",
		Client:  &whatsmeow.Client{Store: &store.Device{ID: &jid, PushName: "Akun Utama"}},
	}
	sup.registerConnection(conn)
	sup.mu.Lock()
	sup.reconnectAttempts[slotKey(42, "slot_1")] = 2
	sup.mu.Unlock()

	sup.handleOpen(conn)

	assert.True(t, conn.IsConnected)
	assert.Equal(t, "Akun Utama", conn.SessionName)
	sup.mu.RLock()
	assert.Equal(t, 0, sup.reconnectAttempts[slotKey(42, "slot_1")])
	sup.mu.RUnlock()
}

func TestQRRateLimit(t *testing.T) {
	sup := newTestSupervisor(t)
	sink := &recordingNotifier{}
	sup.SetNotifier(sink)

	conn := &Connection{OwnerID: 42, SlotID: "slot_1"}
	sup.registerConnection(conn)

	// Dua event QR berturut-turut dalam jendela rate limit: hanya satu
	// gambar yang terkirim
	sup.handleQR(conn, []string{"qr-payload-1"})
	sup.handleQR(conn, []string{"qr-payload-2"})
	assert.Equal(t, 1, sink.imageCount())
	assert.True(t, conn.IsWaitingForQR)

	// Slot yang sudah punya kredensial tidak pernah dikirimi QR
	relogin := &Connection{OwnerID: 43, SlotID: "slot_1", hadCredentials: true}
	sup.registerConnection(relogin)
	sup.handleQR(relogin, []string{"qr-payload-3"})
	assert.Equal(t, 1, sink.imageCount())

	// Event QR tanpa payload diabaikan
	sup.handleQR(conn, nil)
	assert.Equal(t, 1, sink.imageCount())
}

func TestToggleAutoAcceptConcurrentWithEventReads(t *testing.T) {
	sup := newTestSupervisor(t)

	conn := &Connection{OwnerID: 42, SlotID: "slot_1"}
	sup.registerConnection(conn)

	// Toggle dari Telegram dan pembacaan flag dari event handler berjalan
	// paralel; keduanya harus lewat mutex supervisor
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		enabled := i%2 == 0
		wg.Add(2)
		go func(enabled bool) {
			defer wg.Done()
			_, err := sup.ToggleAutoAccept(42, enabled, "slot_1")
			assert.NoError(t, err)
		}(enabled)
		go func() {
			defer wg.Done()
			client, _ := sup.autoAcceptState(conn)
			assert.Nil(t, client)
		}()
	}
	wg.Wait()

	_, err := sup.ToggleAutoAccept(42, true, "slot_1")
	require.NoError(t, err)
	_, enabled := sup.autoAcceptState(conn)
	assert.True(t, enabled)
}
