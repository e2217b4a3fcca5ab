package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhoneNumber(t *testing.T) {
	assert.Equal(t, "628123456789", NormalizePhoneNumber("628123456789"))
	assert.Equal(t, "628123456789", NormalizePhoneNumber("+62 812-3456-789"))
	assert.Equal(t, "628123456789", NormalizePhoneNumber("08123456789"))
	assert.Equal(t, "628123456789", NormalizePhoneNumber("  628123456789  "))

	// Terlalu pendek / panjang / bukan nomor
	assert.Equal(t, "", NormalizePhoneNumber("12345"))
	assert.Equal(t, "", NormalizePhoneNumber("1234567890123456"))
	assert.Equal(t, "", NormalizePhoneNumber("halo"))
	assert.Equal(t, "", NormalizePhoneNumber(""))
}

func TestParsePhoneNumbers(t *testing.T) {
	input := "628111111111\n0812222222, 628111111111\n\n628333333333 628444444444"
	numbers := ParsePhoneNumbers(input)

	// Duplikat dibuang, urutan input dipertahankan
	assert.Equal(t, []string{"628111111111", "62812222222", "628333333333", "628444444444"}, numbers)
}

func TestParsePhoneNumbersEmpty(t *testing.T) {
	assert.Empty(t, ParsePhoneNumbers("bukan nomor\n---\n"))
}

func TestParseGroupNames(t *testing.T) {
	input := "Grup A\n  Grup B  \n\ngrup a\nGrup C"
	names := ParseGroupNames(input)

	// Duplikat case-insensitive dibuang
	assert.Equal(t, []string{"Grup A", "Grup B", "Grup C"}, names)
}
