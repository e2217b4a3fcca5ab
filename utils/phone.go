package utils

import (
	"regexp"
	"strings"
)

var nonDigitPattern = regexp.MustCompile(`\D`)

// NormalizePhoneNumber membersihkan input nomor telepon jadi digit saja.
// Prefix 0 diganti 62 (format Indonesia), prefix + dibuang.
// Return "" kalau hasilnya bukan nomor yang masuk akal.
func NormalizePhoneNumber(input string) string {
	digits := nonDigitPattern.ReplaceAllString(strings.TrimSpace(input), "")
	if digits == "" {
		return ""
	}
	if strings.HasPrefix(digits, "0") {
		digits = "62" + digits[1:]
	}
	if len(digits) < 8 || len(digits) > 15 {
		return ""
	}
	return digits
}

// ParsePhoneNumbers mem-parse input multi-baris (atau isi file .txt) jadi
// list nomor yang sudah dinormalisasi. Duplikat dibuang, urutan dipertahankan.
func ParsePhoneNumbers(input string) []string {
	seen := make(map[string]bool)
	var numbers []string

	for _, line := range strings.Split(input, "\n") {
		// Satu baris boleh berisi beberapa nomor dipisah koma/spasi
		for _, field := range strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ';' || r == ' ' || r == '\t'
		}) {
			number := NormalizePhoneNumber(field)
			if number == "" || seen[number] {
				continue
			}
			seen[number] = true
			numbers = append(numbers, number)
		}
	}
	return numbers
}

// ParseGroupNames mem-parse input multi-baris jadi list nama grup.
// Baris kosong dibuang, duplikat (case-insensitive) dibuang.
func ParseGroupNames(input string) []string {
	seen := make(map[string]bool)
	var names []string

	for _, line := range strings.Split(input, "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, name)
	}
	return names
}
