package amount

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmountRu(t *testing.T) {
	cases := map[string]string{
		"":        "",
		"5":       "5",
		"500":     "500",
		"5000":    "5 000",
		"12345":   "12 345",
		"123456":  "123 456",
		"1234567": "1 234 567",
		"12a3":    "12a3",
		"1 234":   "1 234",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatAmountRu(in), "input %q", in)
	}
}

func randomDigits(r *rand.Rand) string {
	n := r.Intn(16)
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('0' + r.Intn(10))
	}
	return string(b)
}

func TestFormatAmountRu_NonLossy(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		d := randomDigits(r)
		assert.Equal(t, d, StripNonDigits(FormatAmountRu(d)))
	}
}

func TestCountDigits(t *testing.T) {
	assert.Equal(t, 0, CountDigits(""))
	assert.Equal(t, 5, CountDigits("12 345"))
	assert.Equal(t, 3, CountDigits("a1b2c3₽"))
}

func TestCaretPosForDigitIndex(t *testing.T) {
	assert.Equal(t, 0, CaretPosForDigitIndex("12 345", 0))
	assert.Equal(t, 0, CaretPosForDigitIndex("12 345", -3))
	assert.Equal(t, 1, CaretPosForDigitIndex("12 345", 1))
	assert.Equal(t, 2, CaretPosForDigitIndex("12 345", 2))
	assert.Equal(t, 4, CaretPosForDigitIndex("12 345", 3))
	assert.Equal(t, 6, CaretPosForDigitIndex("12 345", 5))
	assert.Equal(t, 6, CaretPosForDigitIndex("12 345", 99))
	assert.Equal(t, 0, CaretPosForDigitIndex("", 2))
}

func TestCaretPosForDigitIndex_PrefixHasExactDigits(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 300; i++ {
		formatted := FormatAmountRu(randomDigits(r))
		total := CountDigits(formatted)
		for idx := 0; idx <= total+1; idx++ {
			pos := CaretPosForDigitIndex(formatted, idx)
			want := idx
			if want > total {
				want = total
			}
			assert.Equal(t, want, CountDigits(formatted[:pos]), "formatted=%q idx=%d", formatted, idx)
		}
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, "", Clamp("", 5000, false))
	assert.Equal(t, "0", Clamp("000", 5000, false))
	assert.Equal(t, "70", Clamp("0070", 5000, false))
	assert.Equal(t, "5000", Clamp("5000", 5000, false))
	assert.Equal(t, "5000", Clamp("5001", 5000, false))
	assert.Equal(t, "1000", Clamp(strings.Repeat("9", 40), 1000, false))
	assert.Equal(t, "999999", Clamp("999999", 5000, true))
}

func TestParse(t *testing.T) {
	n, ok := Parse("1500")
	assert.True(t, ok)
	assert.Equal(t, 1500, n)
	_, ok = Parse("")
	assert.False(t, ok)
	_, ok = Parse("1 500")
	assert.False(t, ok)
	_, ok = Parse(strings.Repeat("9", 30))
	assert.False(t, ok)
}
