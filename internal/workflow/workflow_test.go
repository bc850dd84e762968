package workflow_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/wwtravelclub/internal/travel"
	"github.com/neexbeast/wwtravelclub/internal/workflow"
)

// memRepo keeps aggregates in memory and assigns ids the way storage would.
type memRepo struct {
	nextID  int
	byName  map[string]travel.Destination
	saveErr error
	saves   int
}

func newMemRepo() *memRepo {
	return &memRepo{nextID: 1, byName: map[string]travel.Destination{}}
}

func (m *memRepo) id() int {
	id := m.nextID
	m.nextID++
	return id
}

func (m *memRepo) CreateDestinationWithPackages(_ context.Context, dest travel.Destination, packages []travel.Package) (*travel.Destination, error) {
	dest.ID = m.id()
	dest.Packages = nil
	for _, p := range packages {
		p.ID = m.id()
		p.DestinationID = dest.ID
		dest.Packages = append(dest.Packages, p)
	}
	m.byName[dest.Name] = dest
	out := dest
	return &out, nil
}

func (m *memRepo) FindDestinationByName(_ context.Context, name string) (*travel.Destination, error) {
	d, ok := m.byName[name]
	if !ok {
		return nil, nil
	}
	d.Packages = append([]travel.Package(nil), d.Packages...)
	return &d, nil
}

func (m *memRepo) SaveDestination(_ context.Context, d *travel.Destination) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	stored := *d
	stored.Packages = append([]travel.Package(nil), d.Packages...)
	m.byName[d.Name] = stored
	return nil
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestPopulate(t *testing.T) {
	repo := newMemRepo()

	d, err := workflow.Populate(context.Background(), repo, discard())
	require.NoError(t, err)
	assert.NotZero(t, d.ID)
	require.Len(t, d.Packages, 2)
	for _, p := range d.Packages {
		assert.NotZero(t, p.ID)
		assert.Equal(t, d.ID, p.DestinationID)
		assert.Equal(t, 7, p.DurationInDays)
	}
	assert.Equal(t, "Summer in Florence", d.Packages[0].Name)
	assert.Equal(t, 2019, d.Packages[0].StartValidityDate.Year())
	assert.True(t, d.Packages[1].Price.Equal(decimal.NewFromInt(500)))

	found, err := repo.FindDestinationByName(context.Background(), "Florence")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, d.ID, found.ID)
	assert.Len(t, found.Packages, 2)
}

func TestModify(t *testing.T) {
	repo := newMemRepo()
	ctx := context.Background()
	created, err := workflow.Populate(ctx, repo, discard())
	require.NoError(t, err)

	d, err := workflow.Modify(ctx, repo, discard())
	require.NoError(t, err)
	assert.Equal(t, created.ID, d.ID)
	require.NotNil(t, d.Description)
	assert.Equal(t, workflow.NewDescription, *d.Description)
	assert.Equal(t, "1100.000", d.Packages[0].Price.StringFixed(3))
	assert.Equal(t, "550.000", d.Packages[1].Price.StringFixed(3))
	assert.Equal(t, 1, repo.saves, "all changes go out in one save")
}

func TestModify_NotPopulated(t *testing.T) {
	_, err := workflow.Modify(context.Background(), newMemRepo(), discard())
	require.Error(t, err)
	assert.ErrorIs(t, err, travel.ErrNotFound)
}

func TestModify_SaveFails(t *testing.T) {
	repo := newMemRepo()
	ctx := context.Background()
	_, err := workflow.Populate(ctx, repo, discard())
	require.NoError(t, err)

	repo.saveErr = travel.NewPersistenceError("saving destination 1", travel.KindConnectivityFailure, fmt.Errorf("dial tcp: refused"))
	_, err = workflow.Modify(ctx, repo, discard())
	require.Error(t, err)
	assert.ErrorIs(t, err, travel.ErrConnectivityFailure)

	stored, err := repo.FindDestinationByName(ctx, "Florence")
	require.NoError(t, err)
	assert.Nil(t, stored.Description, "failed save leaves stored aggregate untouched")
	assert.True(t, stored.Packages[0].Price.Equal(decimal.NewFromInt(1000)))
}
