package core

// Notifier adalah port satu arah ke front-end messaging (Telegram).
// Supervisor hanya butuh tiga operasi ini; error dari sink cukup di-log,
// tidak pernah mengubah state session.
type Notifier interface {
	SendText(ownerID int64, text string) error
	SendImage(ownerID int64, image []byte, caption string) error
	DeleteMessage(ownerID int64, messageID int) error
}

// noopNotifier dipakai kalau Supervisor dibuat tanpa sink (mis. di test)
type noopNotifier struct{}

func (noopNotifier) SendText(int64, string) error          { return nil }
func (noopNotifier) SendImage(int64, []byte, string) error { return nil }
func (noopNotifier) DeleteMessage(int64, int) error        { return nil }
