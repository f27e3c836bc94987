package provisioning

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"account-provisioner/internal/domain/key"
	"account-provisioner/internal/domain/registration"
	"account-provisioner/internal/pkg/errs"
)

const memoSeparators = ":-"

var (
	ErrFieldCount  = errors.New("memo must have between 2 and 5 fields")
	ErrStakeAmount = errors.New("stake must be a positive whole number of tokens")
	ErrRAMAmount   = errors.New("ram must be a whole number of KiB above the minimum")
)

type Source int

const (
	SourceMemo Source = iota
	SourceReservation
)

func (s Source) String() string {
	if s == SourceReservation {
		return "reservation"
	}
	return "memo"
}

// Request is everything needed to price and create one account.
type Request struct {
	Account   AccountName
	OwnerKey  key.Record
	ActiveKey key.Record
	CPUStake  int64
	RAMBytes  uint32
	Source    Source

	// Set when Source is SourceReservation.
	ReservationID int64
}

// ParseMemo reads one of the memo layouts:
//
//	name:owner
//	name:owner:active
//	name:owner:cpu:ramkb
//	name:owner:active:cpu:ramkb
//
// ':' and '-' both separate fields. cpu is in whole tokens.
func (p Policy) ParseMemo(memo string, parser key.Parser) (Request, error) {
	fields := splitMemo(memo)
	if len(fields) < 2 || len(fields) > 5 {
		return Request{}, errs.Mark(errs.Wrapf(ErrFieldCount, "got %d", len(fields)), errs.ErrFormat)
	}

	name, err := ParseAccountName(fields[0])
	if err != nil {
		return Request{}, err
	}
	owner, err := parser.Parse(fields[1])
	if err != nil {
		return Request{}, errs.Wrap(err, "owner key")
	}

	req := Request{
		Account:   name,
		OwnerKey:  owner,
		ActiveKey: owner,
		CPUStake:  p.DefaultCPUStake,
		RAMBytes:  p.DefaultRAMBytes,
		Source:    SourceMemo,
	}

	var resources []string
	switch len(fields) {
	case 3:
		if req.ActiveKey, err = parser.Parse(fields[2]); err != nil {
			return Request{}, errs.Wrap(err, "active key")
		}
	case 4:
		resources = fields[2:]
	case 5:
		if req.ActiveKey, err = parser.Parse(fields[2]); err != nil {
			return Request{}, errs.Wrap(err, "active key")
		}
		resources = fields[3:]
	}

	if resources != nil {
		if req.CPUStake, err = p.parseStake(resources[0]); err != nil {
			return Request{}, err
		}
		if req.RAMBytes, err = p.parseRAM(resources[1]); err != nil {
			return Request{}, err
		}
	}
	return req, nil
}

// ReservationRequest builds the request for a memo that matched a stored
// reservation. Only the leading memo token is read, as the account name.
func (p Policy) ReservationRequest(memo string, res *registration.Reservation) (Request, error) {
	fields := splitMemo(memo)
	if len(fields) == 0 {
		return Request{}, errs.Mark(errs.Wrap(ErrInvalidAccountName, "empty memo"), errs.ErrFormat)
	}
	name, err := ParseAccountName(fields[0])
	if err != nil {
		return Request{}, err
	}
	return Request{
		Account:       name,
		OwnerKey:      res.OwnerKey(),
		ActiveKey:     res.ActiveKey(),
		CPUStake:      p.DefaultCPUStake,
		RAMBytes:      p.DefaultRAMBytes,
		Source:        SourceReservation,
		ReservationID: res.ID(),
	}, nil
}

func (p Policy) parseStake(s string) (int64, error) {
	whole, err := strconv.ParseInt(s, 10, 64)
	if err != nil || whole <= 0 {
		return 0, errs.Mark(errs.Wrapf(ErrStakeAmount, "%q", s), errs.ErrFormat)
	}
	scale := p.Core.Scale()
	if whole > math.MaxInt64/scale {
		return 0, errs.Mark(errs.Wrapf(ErrStakeAmount, "%q overflows", s), errs.ErrFormat)
	}
	return whole * scale, nil
}

func (p Policy) parseRAM(s string) (uint32, error) {
	kb, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errs.Mark(errs.Wrapf(ErrRAMAmount, "%q", s), errs.ErrFormat)
	}
	bytes := kb * 1024
	if bytes > math.MaxUint32 || bytes <= uint64(p.DefaultRAMBytes) {
		return 0, errs.Mark(errs.Wrapf(ErrRAMAmount, "%q", s), errs.ErrFormat)
	}
	return uint32(bytes), nil
}

func splitMemo(memo string) []string {
	trimmed := strings.Trim(memo, " ")
	if trimmed == "" {
		return nil
	}
	var fields []string
	start := 0
	for i := 0; i < len(trimmed); i++ {
		if strings.IndexByte(memoSeparators, trimmed[i]) >= 0 {
			fields = append(fields, strings.TrimSpace(trimmed[start:i]))
			start = i + 1
		}
	}
	return append(fields, strings.TrimSpace(trimmed[start:]))
}
