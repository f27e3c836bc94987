package key

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"

	"account-provisioner/internal/pkg/base58"
	"account-provisioner/internal/pkg/errs"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // ledger checksum algorithm
)

const (
	DataSize     = 33
	ChecksumSize = 4

	legacyPrefix = "EOS"
	k1Prefix     = "PUB_K1_"
	r1Prefix     = "PUB_R1_"
)

var (
	ErrUnrecognizedFormat = errors.New("unrecognized public key format")
	ErrChecksumMismatch   = errors.New("public key checksum mismatch")
)

type Curve uint8

const (
	CurveK1 Curve = 0
	CurveR1 Curve = 1
)

func (c Curve) String() string {
	switch c {
	case CurveK1:
		return "K1"
	case CurveR1:
		return "R1"
	default:
		return "unknown"
	}
}

// Record is a decoded public key. The zero value is not a valid key; records
// only come out of Parser.Parse.
type Record struct {
	curve Curve
	data  [DataSize]byte
	valid bool
}

func (r Record) Curve() Curve            { return r.curve }
func (r Record) Data() [DataSize]byte    { return r.data }
func (r Record) IsZero() bool            { return !r.valid }
func (r Record) Hex() string             { return hex.EncodeToString(r.data[:]) }
func (r Record) Equal(other Record) bool { return r == other }

// String renders the canonical PUB_<curve>_ form with a freshly computed
// checksum.
func (r Record) String() string {
	if !r.valid {
		return ""
	}
	prefix := k1Prefix
	if r.curve == CurveR1 {
		prefix = r1Prefix
	}
	return prefix + encodeWithChecksum(r.data, checksum(r.data, r.curve.String()))
}

// LegacyString renders the EOS-prefixed form; only K1 keys have one.
func (r Record) LegacyString() (string, bool) {
	if !r.valid || r.curve != CurveK1 {
		return "", false
	}
	return legacyPrefix + encodeWithChecksum(r.data, checksum(r.data, "")), true
}

func (r Record) MarshalText() ([]byte, error) {
	if !r.valid {
		return nil, errs.Mark(errs.New("cannot marshal empty public key"), errs.ErrFormat)
	}
	return []byte(r.String()), nil
}

// UnmarshalText always verifies the checksum: text produced by MarshalText
// carries a correct one.
func (r *Record) UnmarshalText(text []byte) error {
	parsed, err := Parser{VerifyChecksum: true}.Parse(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

type Parser struct {
	VerifyChecksum bool
}

func NewParser(verifyChecksum bool) Parser {
	return Parser{VerifyChecksum: verifyChecksum}
}

// Parse decodes a human-readable public key. It either returns a complete
// record or an error marked errs.ErrFormat.
func (p Parser) Parse(s string) (Record, error) {
	var (
		curve  Curve
		body   string
		suffix string
	)
	switch {
	case strings.HasPrefix(s, k1Prefix):
		curve, body, suffix = CurveK1, s[len(k1Prefix):], "K1"
	case strings.HasPrefix(s, r1Prefix):
		curve, body, suffix = CurveR1, s[len(r1Prefix):], "R1"
	case strings.HasPrefix(s, legacyPrefix):
		curve, body, suffix = CurveK1, s[len(legacyPrefix):], ""
	default:
		return Record{}, formatErr(ErrUnrecognizedFormat, s)
	}
	if body == "" {
		return Record{}, formatErr(ErrUnrecognizedFormat, s)
	}

	whole, err := base58.DecodeFixed(body, DataSize+ChecksumSize)
	if err != nil {
		return Record{}, formatErr(err, s)
	}

	rec := Record{curve: curve, valid: true}
	copy(rec.data[:], whole[:DataSize])

	if p.VerifyChecksum {
		want := checksum(rec.data, suffix)
		if !bytes.Equal(want[:], whole[DataSize:]) {
			return Record{}, formatErr(ErrChecksumMismatch, s)
		}
	}
	return rec, nil
}

func formatErr(cause error, s string) error {
	return errs.Mark(errs.Wrapf(cause, "parse public key %q", s), errs.ErrFormat)
}

func checksum(data [DataSize]byte, suffix string) [ChecksumSize]byte {
	h := ripemd160.New()
	h.Write(data[:])
	h.Write([]byte(suffix))
	var out [ChecksumSize]byte
	copy(out[:], h.Sum(nil))
	return out
}

func encodeWithChecksum(data [DataSize]byte, sum [ChecksumSize]byte) string {
	buf := make([]byte, 0, DataSize+ChecksumSize)
	buf = append(buf, data[:]...)
	buf = append(buf, sum[:]...)
	return base58.Encode(buf)
}
