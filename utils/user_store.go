package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// PremiumInfo menyimpan status entitlement premium user
type PremiumInfo struct {
	Expiry         *time.Time      `json:"expiry"`
	TotalSlots     int             `json:"totalSlots"`
	LastPayment    *time.Time      `json:"lastPayment"`
	PaymentHistory []PaymentRecord `json:"paymentHistory"`
}

// PaymentRecord adalah satu entry riwayat pembayaran
type PaymentRecord struct {
	Date   time.Time `json:"date"`
	Amount int       `json:"amount"`
	Type   string    `json:"type"` // "first_slot", "additional_slot", "renewal"
	TrxID  string    `json:"trx_id"`
}

// AutoAcceptConfig menyimpan setting auto-accept per slot
type AutoAcceptConfig struct {
	Enabled bool `json:"enabled"`
}

// SlotState adalah state durable satu slot session
type SlotState struct {
	SessionName string           `json:"sessionName,omitempty"`
	AutoAccept  AutoAcceptConfig `json:"autoAccept"`
	LastConnect *time.Time       `json:"lastConnect"`
	IsActive    bool             `json:"isActive"`
}

// SlotUpdate adalah partial update untuk SlotState (field nil = tidak diubah)
type SlotUpdate struct {
	SessionName *string
	AutoAccept  *bool
	LastConnect **time.Time
	IsActive    *bool
}

// UserData adalah struktur file data/users/<id>.json
type UserData struct {
	UserID      int64                 `json:"userId"`
	Username    string                `json:"username,omitempty"`
	FirstName   string                `json:"first_name,omitempty"`
	JoinedAt    time.Time             `json:"joined_at"`
	LastSeen    time.Time             `json:"last_seen"`
	Premium     PremiumInfo           `json:"premium"`
	Sessions    map[string]*SlotState `json:"sessions"`
	ActiveSlot  string                `json:"activeSlot,omitempty"`
	LastUpdated time.Time             `json:"lastUpdated"`
}

// UserStore mengelola file JSON per-user di data/users/
// Semua write di-serialize dengan mutex supaya dua update slot yang
// hampir bersamaan tidak saling menimpa isi file.
type UserStore struct {
	dir string
	mu  sync.Mutex
}

// NewUserStore membuat UserStore dan memastikan direktorinya ada
func NewUserStore(dir string) (*UserStore, error) {
	if dir == "" {
		dir = filepath.Join("data", "users")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create users directory: %w", err)
	}
	return &UserStore{dir: dir}, nil
}

func (s *UserStore) userFilePath(userID int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d.json", userID))
}

// defaultUser membuat struktur user baru
func defaultUser(userID int64) *UserData {
	now := time.Now()
	return &UserData{
		UserID:   userID,
		JoinedAt: now,
		LastSeen: now,
		Premium: PremiumInfo{
			PaymentHistory: []PaymentRecord{},
		},
		Sessions: make(map[string]*SlotState),
	}
}

// LoadUser memuat data user, mengembalikan struktur default jika file belum ada
func (s *UserStore) LoadUser(userID int64) (*UserData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadUserLocked(userID)
}

func (s *UserStore) loadUserLocked(userID int64) (*UserData, error) {
	raw, err := os.ReadFile(s.userFilePath(userID))
	if os.IsNotExist(err) {
		return defaultUser(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user %d: %w", userID, err)
	}

	var data UserData
	if err := json.Unmarshal(raw, &data); err != nil {
		GetLogger().Warn("UserStore: file user %d corrupt, pakai struktur default: %v", userID, err)
		return defaultUser(userID), nil
	}

	// Perbaiki struktur lama/rusak
	if data.UserID == 0 {
		data.UserID = userID
	}
	if data.Sessions == nil {
		data.Sessions = make(map[string]*SlotState)
	}
	if data.Premium.PaymentHistory == nil {
		data.Premium.PaymentHistory = []PaymentRecord{}
	}

	return &data, nil
}

// SaveUser menyimpan data user, backup file lama dulu sebelum overwrite
func (s *UserStore) SaveUser(data *UserData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveUserLocked(data)
}

func (s *UserStore) saveUserLocked(data *UserData) error {
	path := s.userFilePath(data.UserID)

	// Backup sebelum save
	if _, err := os.Stat(path); err == nil {
		if err := BackupFile(path); err != nil {
			GetLogger().Warn("UserStore: gagal backup file user %d: %v", data.UserID, err)
		}
	}

	data.LastUpdated = time.Now()

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user %d: %w", data.UserID, err)
	}

	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write user %d: %w", data.UserID, err)
	}
	return nil
}

// IsPremiumUser mengecek apakah premium user masih aktif
func (s *UserStore) IsPremiumUser(userID int64) bool {
	data, err := s.LoadUser(userID)
	if err != nil {
		GetLogger().Warn("UserStore: gagal cek premium user %d: %v", userID, err)
		return false
	}
	return data.Premium.Expiry != nil && data.Premium.Expiry.After(time.Now())
}

// GetPremiumInfo mengembalikan ringkasan entitlement user
func (s *UserStore) GetPremiumInfo(userID int64) (isPremium bool, info PremiumInfo) {
	data, err := s.LoadUser(userID)
	if err != nil {
		return false, PremiumInfo{}
	}
	isPremium = data.Premium.Expiry != nil && data.Premium.Expiry.After(time.Now())
	return isPremium, data.Premium
}

// AddPremium menambah durasi premium dan/atau jumlah slot.
// Jika masih premium, durasi di-extend dari expiry sekarang.
func (s *UserStore) AddPremium(userID int64, durationDays, additionalSlots int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadUserLocked(userID)
	if err != nil {
		return err
	}

	now := time.Now()
	base := now
	if data.Premium.Expiry != nil && data.Premium.Expiry.After(now) {
		base = *data.Premium.Expiry
	}
	expiry := base.AddDate(0, 0, durationDays)
	data.Premium.Expiry = &expiry
	data.Premium.TotalSlots += additionalSlots
	data.Premium.LastPayment = &now

	// Buat slot pertama otomatis kalau user belum punya slot sama sekali
	if additionalSlots > 0 && len(data.Sessions) == 0 {
		data.Sessions["slot_1"] = &SlotState{}
		data.ActiveSlot = "slot_1"
	}

	return s.saveUserLocked(data)
}

// AddPaymentRecord menambah entry riwayat pembayaran
func (s *UserStore) AddPaymentRecord(userID int64, amount int, paymentType, trxID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadUserLocked(userID)
	if err != nil {
		return err
	}

	data.Premium.PaymentHistory = append(data.Premium.PaymentHistory, PaymentRecord{
		Date:   time.Now(),
		Amount: amount,
		Type:   paymentType,
		TrxID:  trxID,
	})
	return s.saveUserLocked(data)
}

// GetNextAvailableSlot mencari slot id berikutnya yang belum dipakai.
// Return "" jika kuota slot user sudah penuh.
func (s *UserStore) GetNextAvailableSlot(userID int64) string {
	data, err := s.LoadUser(userID)
	if err != nil {
		return ""
	}
	if len(data.Sessions) >= data.Premium.TotalSlots {
		return ""
	}
	slotNumber := 1
	for {
		slotID := fmt.Sprintf("slot_%d", slotNumber)
		if _, exists := data.Sessions[slotID]; !exists {
			return slotID
		}
		slotNumber++
	}
}

// CreateSessionSlot membuat slot baru, jadi active slot jika yang pertama
func (s *UserStore) CreateSessionSlot(userID int64, slotID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadUserLocked(userID)
	if err != nil {
		return err
	}
	if _, exists := data.Sessions[slotID]; exists {
		return fmt.Errorf("slot %s sudah ada", slotID)
	}

	data.Sessions[slotID] = &SlotState{}
	if data.ActiveSlot == "" {
		data.ActiveSlot = slotID
	}
	return s.saveUserLocked(data)
}

// SwitchActiveSlot mengganti active slot user
func (s *UserStore) SwitchActiveSlot(userID int64, slotID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadUserLocked(userID)
	if err != nil {
		return err
	}
	if _, exists := data.Sessions[slotID]; !exists {
		return fmt.Errorf("slot %s tidak ditemukan", slotID)
	}
	data.ActiveSlot = slotID
	return s.saveUserLocked(data)
}

// GetActiveSlot mengembalikan active slot user, default "slot_1"
func (s *UserStore) GetActiveSlot(userID int64) string {
	data, err := s.LoadUser(userID)
	if err != nil || data.ActiveSlot == "" {
		return "slot_1"
	}
	return data.ActiveSlot
}

// UpdateSlotState melakukan merge-style partial update pada state slot.
// Slot dibuat kalau belum ada supaya toggle bisa jalan sebelum login pertama.
func (s *UserStore) UpdateSlotState(userID int64, slotID string, update SlotUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadUserLocked(userID)
	if err != nil {
		return err
	}

	slot := data.Sessions[slotID]
	if slot == nil {
		slot = &SlotState{}
		data.Sessions[slotID] = slot
	}

	if update.SessionName != nil {
		slot.SessionName = *update.SessionName
	}
	if update.AutoAccept != nil {
		slot.AutoAccept.Enabled = *update.AutoAccept
	}
	if update.LastConnect != nil {
		slot.LastConnect = *update.LastConnect
	}
	if update.IsActive != nil {
		slot.IsActive = *update.IsActive
	}

	return s.saveUserLocked(data)
}

// ListOwners mengembalikan semua user ID yang punya file data, urut ascending
func (s *UserStore) ListOwners() ([]int64, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read users directory: %w", err)
	}

	var owners []int64
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(name, ".json"), 10, 64)
		if err != nil {
			continue
		}
		owners = append(owners, id)
	}

	sort.Slice(owners, func(i, j int) bool { return owners[i] < owners[j] })
	return owners, nil
}

// TouchUser update info dasar user (dipanggil tiap interaksi Telegram)
func (s *UserStore) TouchUser(userID int64, username, firstName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadUserLocked(userID)
	if err != nil {
		return
	}
	if username != "" {
		data.Username = username
	}
	if firstName != "" {
		data.FirstName = firstName
	}
	data.LastSeen = time.Now()
	if err := s.saveUserLocked(data); err != nil {
		GetLogger().Warn("UserStore: gagal update last_seen user %d: %v", userID, err)
	}
}
