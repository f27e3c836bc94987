// Package base58 converts between the Bitcoin-alphabet base-58 text form and
// fixed-width big-endian byte buffers. All arithmetic is exact integer work on
// the buffer itself; there is no floating point and no big.Int.
package base58

import (
	"errors"
)

const Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var (
	ErrInvalidCharacter = errors.New("invalid base-58 value")
	ErrOutOfRange       = errors.New("base-58 value is out of range")
)

// decodeMap is built once at package initialisation and never written again.
var decodeMap = func() [256]int8 {
	var m [256]int8
	for i := range m {
		m[i] = -1
	}
	for i := 0; i < len(Alphabet); i++ {
		m[Alphabet[i]] = int8(i)
	}
	return m
}()

// DecodeFixed interprets s as a base-58 numeral and returns it as a big-endian
// buffer of exactly size bytes. A value that does not fit is an error rather
// than being truncated.
func DecodeFixed(s string, size int) ([]byte, error) {
	out := make([]byte, size)
	for i := 0; i < len(s); i++ {
		digit := decodeMap[s[i]]
		if digit < 0 {
			return nil, ErrInvalidCharacter
		}
		carry := int(digit)
		for j := size - 1; j >= 0; j-- {
			x := int(out[j])*58 + carry
			out[j] = byte(x)
			carry = x >> 8
		}
		if carry != 0 {
			return nil, ErrOutOfRange
		}
	}
	return out, nil
}

// Encode is the inverse of DecodeFixed. Every leading zero byte becomes
// exactly one leading '1'.
func Encode(b []byte) string {
	zeros := 0
	for zeros < len(b) && b[zeros] == 0 {
		zeros++
	}

	// little-endian base-58 digits of the non-zero tail
	digits := make([]byte, 0, len(b)*138/100+1)
	for _, v := range b[zeros:] {
		carry := int(v)
		for i := range digits {
			x := int(digits[i])<<8 + carry
			digits[i] = byte(x % 58)
			carry = x / 58
		}
		for carry > 0 {
			digits = append(digits, byte(carry%58))
			carry /= 58
		}
	}

	out := make([]byte, zeros+len(digits))
	for i := 0; i < zeros; i++ {
		out[i] = Alphabet[0]
	}
	for i, d := range digits {
		out[len(out)-1-i] = Alphabet[d]
	}
	return string(out)
}
