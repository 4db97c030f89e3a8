package grocery

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dukerupert/pantry/internal/apperror"
	"github.com/dukerupert/pantry/internal/model"
)

const maxLabelLen = 64

// NormalizeLabel trims a free-text label such as a unit or category and
// rejects values that are too long or contain control characters. Empty is
// allowed.
func NormalizeLabel(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxLabelLen {
		return "", apperror.ValidationFailed(field, field+" must be at most 64 characters")
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return "", apperror.ValidationFailed(field, field+" contains invalid characters")
		}
	}
	return s, nil
}

// ParseQuantity parses a non-negative decimal. Both "1.5" and "1,5" are
// accepted; an empty string is zero.
func ParseQuantity(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, nil
	}
	q, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(q) || math.IsInf(q, 0) {
		return 0, apperror.ValidationFailed("quantity", "quantity must be a number")
	}
	if q < 0 {
		return 0, apperror.ValidationFailed("quantity", "quantity must not be negative")
	}
	return q, nil
}

// ParsePrice converts a decimal string to cents, rounding half up on the
// third decimal place. "12.34" and "12,34" both give 1234; an empty string
// is zero.
func ParsePrice(s string) (model.Money, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, nil
	}
	invalid := apperror.ValidationFailed("price", "price must be a number")
	if strings.HasPrefix(s, "-") {
		return 0, apperror.ValidationFailed("price", "price must not be negative")
	}
	s = strings.TrimPrefix(s, "+")

	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" && fracPart == "" {
		return 0, invalid
	}
	if intPart == "" {
		intPart = "0"
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return 0, invalid
	}

	tooLarge := apperror.ValidationFailed("price", "price must be at most "+model.MaxPrice.String())
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, tooLarge
		}
		return 0, invalid
	}
	if iv > int64(model.MaxPrice)/100 {
		return 0, tooLarge
	}

	var cents int64
	if len(fracPart) > 0 {
		cents = int64(fracPart[0]-'0') * 10
	}
	if len(fracPart) > 1 {
		cents += int64(fracPart[1] - '0')
	}
	if len(fracPart) > 2 && fracPart[2] >= '5' {
		cents++
	}
	price := model.Money(iv*100 + cents)
	if price > model.MaxPrice {
		return 0, tooLarge
	}
	return price, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

type ExpiryState string

const (
	ExpiryFresh   ExpiryState = "fresh"
	ExpiryNear    ExpiryState = "near"
	ExpiryExpired ExpiryState = "expired"
)

// ExpiryStatus classifies an expiry date relative to now. An item is near
// expiry when it expires within nearDays whole days.
func ExpiryStatus(expiry, now time.Time, nearDays int) ExpiryState {
	if expiry.Before(now) {
		return ExpiryExpired
	}
	days := int(expiry.Sub(now).Hours() / 24)
	if days <= nearDays {
		return ExpiryNear
	}
	return ExpiryFresh
}
