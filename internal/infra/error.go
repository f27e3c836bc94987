package infra

import (
	"errors"
	"log/slog"

	"account-provisioner/internal/pkg/errs"
)

type RepositoryErrorKind string

type RepositoryError struct {
	Kind RepositoryErrorKind
	msg  string
	err  error // wrapped low-level error
}

func (e RepositoryError) Error() string {
	if e.err != nil {
		return string(e.Kind) + ": " + e.msg + ": " + e.err.Error()
	}
	return string(e.Kind) + ": " + e.msg
}

func (e RepositoryError) Unwrap() error {
	return e.err
}

// WrapRepoErr logs and classifies a storage failure. Exhausted id space is
// additionally marked errs.ErrInvariantViolation so callers can stop the
// process.
func WrapRepoErr(slogger *slog.Logger, kind RepositoryErrorKind, msg string, err error) error {
	slogger.Error("Repository error: "+msg,
		slog.String("kind", string(kind)),
		slog.Any("error", err),
	)

	if err != nil {
		err = errs.Wrap(err, msg)
	}

	var out error = RepositoryError{Kind: kind, msg: msg, err: err}
	switch kind {
	case KindIDExhausted:
		out = errs.Mark(out, errs.ErrInvariantViolation)
	case KindStoreFailure, KindCorruptRecord:
		out = errs.Mark(out, errs.ErrDatabaseOperationFailed)
	}
	return out
}

func IsKind(err error, kind RepositoryErrorKind) bool {
	var e RepositoryError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Infrastructure-specific error kinds
const (
	KindStoreFailure  RepositoryErrorKind = "STORE_FAILURE"
	KindDuplicateKey  RepositoryErrorKind = "DUPLICATE_KEY"
	KindIDExhausted   RepositoryErrorKind = "ID_EXHAUSTED"
	KindCorruptRecord RepositoryErrorKind = "CORRUPT_RECORD"
)
