package storage

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/neexbeast/wwtravelclub/internal/travel"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want travel.Kind
	}{
		{"not null", &pgconn.PgError{Code: "23502"}, travel.KindConstraintViolation},
		{"foreign key", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23503"}), travel.KindConstraintViolation},
		{"too long", &pgconn.PgError{Code: "22001"}, travel.KindConstraintViolation},
		{"numeric overflow", &pgconn.PgError{Code: "22003"}, travel.KindConstraintViolation},
		{"serialization", &pgconn.PgError{Code: "40001"}, travel.KindConcurrencyConflict},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, travel.KindConcurrencyConflict},
		{"connection failure", &pgconn.PgError{Code: "08006"}, travel.KindConnectivityFailure},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, travel.KindConnectivityFailure},
		{"syntax", &pgconn.PgError{Code: "42601"}, travel.KindStorageFailure},
		{"dial", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}, travel.KindConnectivityFailure},
		{"canceled", context.Canceled, travel.KindConnectivityFailure},
		{"other", errors.New("boom"), travel.KindStorageFailure},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, kindOf(tc.err))
		})
	}
}

func TestClassify_PassesThroughClassified(t *testing.T) {
	orig := travel.NewPersistenceError("saving destination 1", travel.KindNotFound, nil)
	got := classify("outer op", fmt.Errorf("wrapped: %w", orig))
	assert.True(t, travel.IsKind(got, travel.KindNotFound))
	assert.NotContains(t, got.Error(), "outer op")
}

func TestClassify_Nil(t *testing.T) {
	assert.NoError(t, classify("op", nil))
}
