package utils

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// GenerateDynamicQRIS membuat payload QRIS dinamis dari payload statis merchant.
// Langkahnya mengikuti format EMVCo:
//  1. Buang 4 digit CRC lama di akhir payload
//  2. Ganti tag 010211 (statis) jadi 010212 (dinamis)
//  3. Sisipkan field nominal "54" + panjang + nominal sebelum "5802ID"
//  4. Hitung ulang CRC16-CCITT dan append sebagai hex uppercase
func GenerateDynamicQRIS(staticQRIS string, amount int) (string, error) {
	if staticQRIS == "" {
		return "", fmt.Errorf("QRIS statis kosong")
	}
	if amount <= 0 {
		return "", fmt.Errorf("nominal harus lebih dari 0")
	}
	if len(staticQRIS) <= 4 {
		return "", fmt.Errorf("payload QRIS statis tidak valid")
	}

	trimmed := staticQRIS[:len(staticQRIS)-4]
	dynamic := strings.Replace(trimmed, "010211", "010212", 1)

	parts := strings.SplitN(dynamic, "5802ID", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("payload QRIS tidak mengandung country code 5802ID")
	}

	amountStr := fmt.Sprintf("%d", amount)
	amountField := fmt.Sprintf("54%02d%s5802ID", len(amountStr), amountStr)
	payload := parts[0] + amountField + parts[1]

	return payload + fmt.Sprintf("%04X", crc16CCITT(payload)), nil
}

// crc16CCITT menghitung CRC16-CCITT (poly 0x1021, init 0xFFFF) atas payload
func crc16CCITT(s string) uint16 {
	crc := uint16(0xFFFF)
	for i := 0; i < len(s); i++ {
		crc ^= uint16(s[i]) << 8
		for j := 0; j < 8; j++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// RenderQRPNG membuat gambar QR code PNG dari payload
func RenderQRPNG(payload string, size int) ([]byte, error) {
	if size <= 0 {
		size = 300
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}
