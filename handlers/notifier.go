package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier adalah sink notifikasi session ke Telegram. Owner id user
// dipakai langsung sebagai chat id karena bot ini selalu dipakai lewat private
// chat.
type TelegramNotifier struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramNotifier membuat notifier di atas bot API yang sudah hidup
func NewTelegramNotifier(bot *tgbotapi.BotAPI) *TelegramNotifier {
	return &TelegramNotifier{bot: bot}
}

// SendText mengirim pesan Markdown ke owner
func (n *TelegramNotifier) SendText(ownerID int64, text string) error {
	msg := tgbotapi.NewMessage(ownerID, text)
	msg.ParseMode = "Markdown"
	_, err := n.bot.Send(msg)
	return err
}

// SendImage mengirim gambar (mis. QR login) dengan caption Markdown
func (n *TelegramNotifier) SendImage(ownerID int64, image []byte, caption string) error {
	photo := tgbotapi.NewPhoto(ownerID, tgbotapi.FileBytes{
		Name:  "image.png",
		Bytes: image,
	})
	photo.Caption = caption
	photo.ParseMode = "Markdown"
	_, err := n.bot.Send(photo)
	return err
}

// DeleteMessage menghapus pesan yang pernah dikirim bot (mis. QR pembayaran
// yang sudah expired)
func (n *TelegramNotifier) DeleteMessage(ownerID int64, messageID int) error {
	_, err := n.bot.Request(tgbotapi.NewDeleteMessage(ownerID, messageID))
	return err
}
