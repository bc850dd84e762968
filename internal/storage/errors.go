package storage

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/neexbeast/wwtravelclub/internal/travel"
)

// classify wraps err in a *travel.PersistenceError for op. Errors that are
// already classified pass through untouched.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var pe *travel.PersistenceError
	if errors.As(err, &pe) {
		return err
	}

	return travel.NewPersistenceError(op, kindOf(err), err)
}

// kindOf maps driver errors onto travel kinds using the SQLSTATE class where
// the server reported one.
func kindOf(err error) travel.Kind {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "23"):
			return travel.KindConstraintViolation
		case pgErr.Code == "22001", pgErr.Code == "22003":
			// string_data_right_truncation, numeric_value_out_of_range
			return travel.KindConstraintViolation
		case pgErr.Code == "40001", pgErr.Code == "40P01":
			return travel.KindConcurrencyConflict
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57P"):
			return travel.KindConnectivityFailure
		}
		return travel.KindStorageFailure
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return travel.KindConnectivityFailure
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return travel.KindConnectivityFailure
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return travel.KindConnectivityFailure
	}

	return travel.KindStorageFailure
}
