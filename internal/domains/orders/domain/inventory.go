package domain

import (
	"errors"
	"strings"
)

// Direction selects how a manual stock update moves the quantity.
type Direction string

const (
	Increase Direction = "increase"
	Decrease Direction = "decrease"
)

var (
	ErrInvalidDirection = errors.New(`direction must be "increase" or "decrease"`)
	ErrInvalidAmount    = errors.New("quantity update must be greater than zero")
)

func ParseDirection(raw string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(raw))) {
	case Increase:
		return Increase, nil
	case Decrease:
		return Decrease, nil
	default:
		return "", ErrInvalidDirection
	}
}

// Delta turns an amount into the signed quantity change.
func (d Direction) Delta(amount int) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	switch d {
	case Increase:
		return amount, nil
	case Decrease:
		return -amount, nil
	default:
		return 0, ErrInvalidDirection
	}
}
