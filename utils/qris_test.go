package utils

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStaticQRIS = "00020101021126610014COM.GO-JEK.WWW01189360091430123456780210G1234567890303UMI51440014ID.CO.QRIS.WWW0215ID10200123456780303UMI5204581253033605802ID5912TOKO CONTOH16007KOTA Z6105123456304ABCD"

func TestCRC16CCITT(t *testing.T) {
	// Vector standar CRC-16/CCITT-FALSE
	assert.Equal(t, uint16(0x29B1), crc16CCITT("123456789"))
	assert.Equal(t, uint16(0xFFFF), crc16CCITT(""))
}

func TestGenerateDynamicQRIS(t *testing.T) {
	payload, err := GenerateDynamicQRIS(sampleStaticQRIS, 15001)
	require.NoError(t, err)

	// Tag point of initiation berubah dari statis ke dinamis
	assert.Contains(t, payload, "010212")
	assert.NotContains(t, payload, "010211")

	// Field nominal disisipkan tepat sebelum country code
	assert.Contains(t, payload, "54" + "05" + "15001" + "5802ID")

	// CRC lama dibuang, CRC baru valid untuk payload baru
	assert.NotContains(t, payload, "ABCD")
	body := payload[:len(payload)-4]
	assert.Equal(t, fmt.Sprintf("%04X", crc16CCITT(body)), payload[len(payload)-4:])
}

func TestGenerateDynamicQRISAmountLength(t *testing.T) {
	payload, err := GenerateDynamicQRIS(sampleStaticQRIS, 5000)
	require.NoError(t, err)
	assert.Contains(t, payload, "54045000" + "5802ID")
}

func TestGenerateDynamicQRISInvalidInput(t *testing.T) {
	_, err := GenerateDynamicQRIS("", 15000)
	assert.Error(t, err)

	_, err = GenerateDynamicQRIS(sampleStaticQRIS, 0)
	assert.Error(t, err)

	// Payload tanpa country code Indonesia ditolak
	_, err = GenerateDynamicQRIS("000201010211630412AB", 15000)
	assert.Error(t, err)
}

func TestRenderQRPNG(t *testing.T) {
	png, err := RenderQRPNG("00020101021263041234", 300)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(png), "\x89PNG"))
}
