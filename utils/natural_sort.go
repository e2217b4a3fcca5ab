package utils

import (
	"strconv"
	"strings"
	"unicode"
)

// Natural sorting untuk string yang mengandung angka.
// Contoh: "Grup 1", "Grup 2", "Grup 10" bukan "Grup 1", "Grup 10", "Grup 2".

type token struct {
	isNumber bool
	number   int64
	text     string
}

// splitIntoTokens splits a string into text and number tokens
func splitIntoTokens(s string) []token {
	var tokens []token
	var currentText strings.Builder
	var currentNumber strings.Builder
	inNumber := false

	for _, r := range s {
		if unicode.IsDigit(r) {
			if !inNumber && currentText.Len() > 0 {
				tokens = append(tokens, token{isNumber: false, text: currentText.String()})
				currentText.Reset()
			}
			inNumber = true
			currentNumber.WriteRune(r)
		} else {
			if inNumber && currentNumber.Len() > 0 {
				num, _ := strconv.ParseInt(currentNumber.String(), 10, 64)
				tokens = append(tokens, token{isNumber: true, number: num, text: currentNumber.String()})
				currentNumber.Reset()
			}
			inNumber = false
			currentText.WriteRune(r)
		}
	}

	if currentNumber.Len() > 0 {
		num, _ := strconv.ParseInt(currentNumber.String(), 10, 64)
		tokens = append(tokens, token{isNumber: true, number: num, text: currentNumber.String()})
	}
	if currentText.Len() > 0 {
		tokens = append(tokens, token{isNumber: false, text: currentText.String()})
	}

	return tokens
}

// NaturalLess compares two strings using natural sorting
func NaturalLess(s1, s2 string) bool {
	tokens1 := splitIntoTokens(strings.ToLower(s1))
	tokens2 := splitIntoTokens(strings.ToLower(s2))

	for i := 0; i < len(tokens1) && i < len(tokens2); i++ {
		t1 := tokens1[i]
		t2 := tokens2[i]

		if t1.isNumber && t2.isNumber {
			if t1.number != t2.number {
				return t1.number < t2.number
			}
			continue
		}

		if !t1.isNumber && !t2.isNumber {
			if t1.text != t2.text {
				return t1.text < t2.text
			}
			continue
		}

		// Satu angka, satu teks: angka duluan
		if t1.isNumber {
			return true
		}
		return false
	}

	return len(tokens1) < len(tokens2)
}
