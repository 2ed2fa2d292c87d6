package utils

import (
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// PaymentReference builds a reference of the form PAY-<unix millis>-<9 base36 chars>.
func PaymentReference(now time.Time, rng *rand.Rand) string {
	var b strings.Builder
	b.WriteString("PAY-")
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 10))
	b.WriteByte('-')
	for i := 0; i < 9; i++ {
		if rng != nil {
			b.WriteByte(base36[rng.IntN(len(base36))])
		} else {
			b.WriteByte(base36[rand.IntN(len(base36))])
		}
	}
	return b.String()
}

// RoundCents rounds an amount to two decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// ToCents converts a currency amount to integer minor units.
func ToCents(v float64) int64 {
	return int64(math.Round(v * 100))
}
