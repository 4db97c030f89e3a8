package model

import (
	"fmt"
	"strconv"
)

// Money is a non-negative amount in cents. The currency is not tracked.
type Money int64

// MaxPrice is the largest price a single grocery may carry. Sums of up to
// several million such prices stay within int64.
const MaxPrice Money = 1_000_000_000_000

func (m Money) String() string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s%d.%02d", sign, int64(m)/100, int64(m)%100)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("money: %w", err)
	}
	if f < 0 {
		*m = Money(f*100 - 0.5)
		return nil
	}
	*m = Money(f*100 + 0.5)
	return nil
}
