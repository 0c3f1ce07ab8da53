// Package codec converts numeric identifiers to fixed-width base62 short codes and back.
package codec

import (
	"errors"
	"fmt"
)

const (
	// Alphabet is digits, then lowercase, then uppercase. A symbol's value is its index.
	Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// Base is the number of symbols in Alphabet.
	Base = int64(len(Alphabet))
	// Width is the length of every encoded code.
	Width = 7
	// MaxID is the largest identifier that fits in Width symbols (62^7 - 1).
	MaxID int64 = 3_521_614_606_207
)

var (
	ErrRangeExceeded = errors.New("identifier outside encodable range")
	ErrInvalidSymbol = errors.New("symbol not in base62 alphabet")
	ErrInvalidWidth  = errors.New("code has wrong width")
)

var symbolIndex [256]int8

func init() {
	for i := range symbolIndex {
		symbolIndex[i] = -1
	}
	for i := 0; i < len(Alphabet); i++ {
		symbolIndex[Alphabet[i]] = int8(i)
	}
}

// Encode returns the Width-symbol code for id.
func Encode(id int64) (string, error) {
	if id < 0 || id > MaxID {
		return "", fmt.Errorf("%w: %d", ErrRangeExceeded, id)
	}

	buf := make([]byte, Width)
	for i := range buf {
		buf[i] = Alphabet[0]
	}

	// least significant symbol first, written right to left
	pos := Width - 1
	for {
		buf[pos] = Alphabet[id%Base]
		id /= Base
		if id == 0 {
			break
		}
		pos--
	}

	return string(buf), nil
}

// Decode is the inverse of Encode. The code must be exactly Width symbols.
func Decode(code string) (int64, error) {
	if len(code) != Width {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrInvalidWidth, len(code), Width)
	}

	var acc int64
	for i := 0; i < len(code); i++ {
		idx := symbolIndex[code[i]]
		if idx < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidSymbol, code[i])
		}
		acc = acc*Base + int64(idx)
	}

	return acc, nil
}

// IsCode reports whether s has the shape of a generated code.
func IsCode(s string) bool {
	if len(s) != Width {
		return false
	}
	for i := 0; i < len(s); i++ {
		if symbolIndex[s[i]] < 0 {
			return false
		}
	}
	return true
}
