package amount

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Separator — разделитель групп разрядов в отображаемой сумме.
const Separator = " "

// maxDigits — длиннее этого число не помещается в int64 без риска переполнения.
const maxDigits = 18

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// FormatAmountRu группирует разряды: "12345" → "12 345".
// Пустая строка и строки не из одних цифр возвращаются без изменений.
func FormatAmountRu(digits string) string {
	if digits == "" {
		return ""
	}
	for _, r := range digits {
		if !isDigit(r) {
			return digits
		}
	}
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	b.Grow(n + n/3)
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteString(Separator)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// CountDigits считает только цифры.
func CountDigits(s string) int {
	n := 0
	for _, r := range s {
		if isDigit(r) {
			n++
		}
	}
	return n
}

// StripNonDigits оставляет только цифры.
func StripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if isDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CaretPosForDigitIndex переводит "сколько цифр слева от каретки" в позицию
// (в символах) внутри отформатированной строки.
func CaretPosForDigitIndex(formatted string, digitIndex int) int {
	if digitIndex <= 0 {
		return 0
	}
	seen := 0
	pos := 0
	for _, r := range formatted {
		pos++
		if isDigit(r) {
			seen++
			if seen == digitIndex {
				return pos
			}
		}
	}
	return utf8.RuneCountInString(formatted)
}

// Clamp приводит строку цифр к диапазону [0, max]. При unlimited верхней
// границы нет. Ведущие нули убираются.
func Clamp(digits string, max int, unlimited bool) string {
	if digits == "" {
		return ""
	}
	trimmed := strings.TrimLeft(digits, "0")
	if trimmed == "" {
		return "0"
	}
	if unlimited {
		return trimmed
	}
	if len(trimmed) > maxDigits {
		return strconv.Itoa(max)
	}
	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || n > int64(max) {
		return strconv.Itoa(max)
	}
	return trimmed
}

// Parse возвращает целое значение строки цифр.
func Parse(digits string) (int, bool) {
	if digits == "" || len(digits) > maxDigits || CountDigits(digits) != len(digits) {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}
