// Package asset models fixed-precision token quantities such as "10.0000 EOS".
package asset

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"account-provisioner/internal/pkg/errs"
)

const (
	maxPrecision    = 18
	maxSymbolLength = 7
)

var (
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidSymbol   = errors.New("invalid symbol")
)

// Symbol is a token code together with its decimal precision.
type Symbol struct {
	code      string
	precision uint8
}

func NewSymbol(code string, precision uint8) (Symbol, error) {
	if precision > maxPrecision || !validCode(code) {
		return Symbol{}, errs.Mark(errs.Wrapf(ErrInvalidSymbol, "%d,%s", precision, code), errs.ErrFormat)
	}
	return Symbol{code: code, precision: precision}, nil
}

// MustSymbol is for package-level fixtures.
func MustSymbol(code string, precision uint8) Symbol {
	s, err := NewSymbol(code, precision)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Symbol) Code() string     { return s.code }
func (s Symbol) Precision() uint8 { return s.precision }

// Scale is 10^precision, the number of minor units in one whole token.
func (s Symbol) Scale() int64 {
	scale := int64(1)
	for i := uint8(0); i < s.precision; i++ {
		scale *= 10
	}
	return scale
}

func (s Symbol) String() string {
	return strconv.Itoa(int(s.precision)) + "," + s.code
}

func validCode(code string) bool {
	if code == "" || len(code) > maxSymbolLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}

// Asset is an amount in minor units of its symbol.
type Asset struct {
	Amount int64
	Symbol Symbol
}

func New(amount int64, sym Symbol) Asset {
	return Asset{Amount: amount, Symbol: sym}
}

// IsValid mirrors the ledger rule: the magnitude must stay below 2^62.
func (a Asset) IsValid() bool {
	const maxAmount = int64(1)<<62 - 1
	return a.Amount >= -maxAmount && a.Amount <= maxAmount && validCode(a.Symbol.code)
}

func (a Asset) String() string {
	amount := a.Amount
	sign := ""
	if amount < 0 {
		sign = "-"
		if amount == math.MinInt64 {
			return sign + "overflow " + a.Symbol.code
		}
		amount = -amount
	}
	scale := a.Symbol.Scale()
	whole := strconv.FormatInt(amount/scale, 10)
	if a.Symbol.precision == 0 {
		return sign + whole + " " + a.Symbol.code
	}
	frac := strconv.FormatInt(amount%scale, 10)
	frac = strings.Repeat("0", int(a.Symbol.precision)-len(frac)) + frac
	return sign + whole + "." + frac + " " + a.Symbol.code
}

func (a Asset) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Asset) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Parse reads "<amount> <CODE>", taking the precision from the number of
// fractional digits.
func Parse(s string) (Asset, error) {
	fail := func(cause error) (Asset, error) {
		return Asset{}, errs.Mark(errs.Wrapf(cause, "parse asset %q", s), errs.ErrFormat)
	}

	number, code, ok := strings.Cut(strings.TrimSpace(s), " ")
	if !ok {
		return fail(ErrInvalidQuantity)
	}
	code = strings.TrimSpace(code)

	negative := strings.HasPrefix(number, "-")
	number = strings.TrimPrefix(number, "-")

	whole, frac, hasDot := strings.Cut(number, ".")
	if whole == "" || (hasDot && frac == "") || !digitsOnly(whole) || !digitsOnly(frac) {
		return fail(ErrInvalidQuantity)
	}

	sym, err := NewSymbol(code, uint8(min(len(frac), maxPrecision+1)))
	if err != nil {
		return fail(err)
	}

	amount, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil {
		return fail(ErrInvalidQuantity)
	}
	if negative {
		amount = -amount
	}

	a := Asset{Amount: amount, Symbol: sym}
	if !a.IsValid() {
		return fail(ErrInvalidQuantity)
	}
	return a, nil
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
