package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

// Layout credential store:
//   data/sessions/wa_<ownerID>_<slotID>/whatsmeow.db
// Satu folder per slot. Keberadaan file whatsmeow.db dipakai sebagai
// penanda "slot ini punya kredensial dan bisa di-restore saat startup".

const sessionDBFileName = "whatsmeow.db"

var sessionDirPattern = regexp.MustCompile(`^wa_(\d+)_(slot_\d+)$`)

// SessionsRoot mengembalikan root folder credential store
func SessionsRoot() string {
	return filepath.Join("data", "sessions")
}

// SessionDirPath mengembalikan path folder credential untuk satu slot
func SessionDirPath(ownerID int64, slotID string) string {
	return filepath.Join(SessionsRoot(), fmt.Sprintf("wa_%d_%s", ownerID, slotID))
}

// SessionDBPath mengembalikan path file database whatsmeow untuk satu slot
func SessionDBPath(ownerID int64, slotID string) string {
	return filepath.Join(SessionDirPath(ownerID, slotID), sessionDBFileName)
}

// EnsureSessionDir membuat folder credential slot jika belum ada.
// Tidak pernah menghapus isi folder yang sudah ada.
func EnsureSessionDir(ownerID int64, slotID string) error {
	if err := os.MkdirAll(SessionDirPath(ownerID, slotID), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	return nil
}

// HasSessionCredentials mengecek apakah slot punya kredensial tersimpan
func HasSessionCredentials(ownerID int64, slotID string) bool {
	info, err := os.Stat(SessionDBPath(ownerID, slotID))
	return err == nil && !info.IsDir()
}

// DeleteSessionCredentials menghapus seluruh folder credential slot.
// Idempotent: folder yang sudah tidak ada bukan error.
func DeleteSessionCredentials(ownerID int64, slotID string) error {
	err := os.RemoveAll(SessionDirPath(ownerID, slotID))
	if err != nil {
		return fmt.Errorf("failed to delete session directory: %w", err)
	}
	return nil
}

// RestorableSlot adalah satu slot yang ditemukan saat scan restore
type RestorableSlot struct {
	OwnerID int64
	SlotID  string
}

// ScanRestorableSlots memindai data/sessions/ dan mengembalikan semua slot
// yang punya kredensial tersimpan, urut per owner lalu per slot
func ScanRestorableSlots() ([]RestorableSlot, error) {
	entries, err := os.ReadDir(SessionsRoot())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var slots []RestorableSlot
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		matches := sessionDirPattern.FindStringSubmatch(entry.Name())
		if matches == nil {
			continue
		}
		ownerID, err := strconv.ParseInt(matches[1], 10, 64)
		if err != nil {
			continue
		}
		slotID := matches[2]
		if !HasSessionCredentials(ownerID, slotID) {
			continue
		}
		slots = append(slots, RestorableSlot{OwnerID: ownerID, SlotID: slotID})
	}

	sort.Slice(slots, func(i, j int) bool {
		if slots[i].OwnerID != slots[j].OwnerID {
			return slots[i].OwnerID < slots[j].OwnerID
		}
		return NaturalLess(slots[i].SlotID, slots[j].SlotID)
	})
	return slots, nil
}
