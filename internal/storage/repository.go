package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/neexbeast/wwtravelclub/internal/travel"
)

// Querier abstracts the subset of pgxpool.Pool used by Repository.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// rowsQuerier is satisfied by both Querier and pgx.Tx.
type rowsQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository provides database access for destination aggregates.
type Repository struct {
	q Querier
}

// NewRepository constructs a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{q: pool}
}

// NewRepositoryWithQuerier constructs a Repository with a custom Querier (for tests).
func NewRepositoryWithQuerier(q Querier) *Repository {
	return &Repository{q: q}
}

// aggregateQuery loads one destination row, picked by the inner select, joined
// with all of its packages in id order. Doing it in one statement means the
// destination and its packages come from the same snapshot.
func aggregateQuery(inner string) string {
	return `
		SELECT d.id, d.name, d.country, d.description,
		       p.id, p.name, p.description, p.start_validity_date, p.end_validity_date,
		       p.duration_in_days, p.price::text
		FROM (` + inner + `) d
		LEFT JOIN packages p ON p.destination_id = d.id
		ORDER BY p.id
	`
}

var (
	qAggregateByName = aggregateQuery(`
		SELECT id, name, country, description
		FROM destinations
		WHERE name = $1
		ORDER BY id
		LIMIT 1`)

	qAggregateByID = aggregateQuery(`
		SELECT id, name, country, description
		FROM destinations
		WHERE id = $1`)

	qAggregateByIDForUpdate = aggregateQuery(`
		SELECT id, name, country, description
		FROM destinations
		WHERE id = $1
		FOR UPDATE`)
)

const (
	qInsertDestination = `
		INSERT INTO destinations (name, country, description)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	qInsertPackage = `
		INSERT INTO packages (destination_id, name, description, start_validity_date,
		                      end_validity_date, duration_in_days, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	qUpdateDestination = `
		UPDATE destinations
		SET name = $2, country = $3, description = $4
		WHERE id = $1
	`

	qUpdateDescription = `
		UPDATE destinations
		SET description = $2
		WHERE id = $1
	`

	qUpdatePackage = `
		UPDATE packages
		SET name = $3, description = $4, start_validity_date = $5,
		    end_validity_date = $6, duration_in_days = $7, price = $8
		WHERE id = $1 AND destination_id = $2
	`

	qUpdatePackagePrice = `
		UPDATE packages
		SET price = $2
		WHERE id = $1
	`

	qDeleteDestination = `
		DELETE FROM destinations
		WHERE id = $1
		RETURNING name
	`
)

// CreateDestinationWithPackages inserts dest and its packages in a single
// transaction. The packages of the created aggregate are dest.Packages
// followed by packages. The returned aggregate carries the generated ids;
// dest itself is not modified.
func (r *Repository) CreateDestinationWithPackages(ctx context.Context, dest travel.Destination, packages []travel.Package) (*travel.Destination, error) {
	const op = "creating destination"

	agg := dest
	agg.Packages = make([]travel.Package, 0, len(dest.Packages)+len(packages))
	agg.Packages = append(agg.Packages, dest.Packages...)
	agg.Packages = append(agg.Packages, packages...)

	if agg.ID != 0 {
		return nil, travel.NewPersistenceError(op, travel.KindConstraintViolation, errors.New("id is assigned by storage"))
	}
	for i := range agg.Packages {
		if agg.Packages[i].ID != 0 {
			return nil, travel.NewPersistenceError(op, travel.KindConstraintViolation, errors.New("package id is assigned by storage"))
		}
		agg.Packages[i].Price = travel.NormalizePrice(agg.Packages[i].Price)
	}
	if err := agg.Validate(); err != nil {
		return nil, err
	}

	err := inTx(ctx, r.q, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, qInsertDestination, agg.Name, agg.Country, agg.Description).Scan(&agg.ID); err != nil {
			return fmt.Errorf("inserting destination %s: %w", agg.Name, err)
		}

		for i := range agg.Packages {
			if err := insertPackage(ctx, tx, agg.ID, &agg.Packages[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, classify(op, err)
	}

	return &agg, nil
}

// FindDestinationByName returns the first destination (lowest id) whose name
// equals name, with its packages loaded. Returns nil, nil when none matches.
func (r *Repository) FindDestinationByName(ctx context.Context, name string) (*travel.Destination, error) {
	d, err := loadAggregate(ctx, r.q, qAggregateByName, name)
	if err != nil {
		return nil, classify(fmt.Sprintf("finding destination %s", name), err)
	}
	return d, nil
}

// GetDestination returns the destination with the given id and its packages.
// Returns nil, nil when the id does not exist.
func (r *Repository) GetDestination(ctx context.Context, id int) (*travel.Destination, error) {
	d, err := loadAggregate(ctx, r.q, qAggregateByID, id)
	if err != nil {
		return nil, classify(fmt.Sprintf("getting destination %d", id), err)
	}
	return d, nil
}

// UpdateDestinationDescription sets the description of destination id and
// returns the updated aggregate. A nil description clears it.
func (r *Repository) UpdateDestinationDescription(ctx context.Context, id int, description *string) (*travel.Destination, error) {
	op := fmt.Sprintf("updating description of destination %d", id)

	var updated *travel.Destination
	err := r.modify(ctx, op, id, func(tx pgx.Tx, d *travel.Destination) error {
		d.Description = description
		if _, err := tx.Exec(ctx, qUpdateDescription, d.ID, d.Description); err != nil {
			return fmt.Errorf("updating destination row: %w", err)
		}
		updated = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AdjustPackagePrices multiplies the price of every package of destination id
// by multiplier and returns the updated aggregate.
func (r *Repository) AdjustPackagePrices(ctx context.Context, id int, multiplier decimal.Decimal) (*travel.Destination, error) {
	op := fmt.Sprintf("adjusting package prices of destination %d", id)

	var updated *travel.Destination
	err := r.modify(ctx, op, id, func(tx pgx.Tx, d *travel.Destination) error {
		if err := d.AdjustPrices(multiplier); err != nil {
			return err
		}
		if err := d.Validate(); err != nil {
			return err
		}
		for _, p := range d.Packages {
			if _, err := tx.Exec(ctx, qUpdatePackagePrice, p.ID, p.Price.StringFixed(travel.PriceScale)); err != nil {
				return fmt.Errorf("updating price of package %d: %w", p.ID, err)
			}
		}
		updated = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SaveDestination writes every mutable column of d and of its packages in one
// transaction. Packages with a zero id are inserted and receive their ids
// once the transaction commits. A destination or package row that no longer
// exists fails the whole save with a not_found error.
func (r *Repository) SaveDestination(ctx context.Context, d *travel.Destination) error {
	op := fmt.Sprintf("saving destination %d", d.ID)

	if d.ID == 0 {
		return travel.NewPersistenceError(op, travel.KindConstraintViolation, errors.New("destination has not been created"))
	}

	work := *d
	work.Packages = make([]travel.Package, len(d.Packages))
	copy(work.Packages, d.Packages)
	for i := range work.Packages {
		work.Packages[i].Price = travel.NormalizePrice(work.Packages[i].Price)
	}
	if err := work.Validate(); err != nil {
		return err
	}

	err := inTx(ctx, r.q, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, qUpdateDestination, work.ID, work.Name, work.Country, work.Description)
		if err != nil {
			return fmt.Errorf("updating destination row: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return travel.NewPersistenceError(op, travel.KindNotFound, nil)
		}

		for i := range work.Packages {
			p := &work.Packages[i]
			if p.ID == 0 {
				if err := insertPackage(ctx, tx, work.ID, p); err != nil {
					return err
				}
				continue
			}

			tag, err := tx.Exec(ctx, qUpdatePackage,
				p.ID, work.ID, p.Name, p.Description, p.StartValidityDate,
				p.EndValidityDate, p.DurationInDays, p.Price.StringFixed(travel.PriceScale))
			if err != nil {
				return fmt.Errorf("updating package %d: %w", p.ID, err)
			}
			if tag.RowsAffected() == 0 {
				return travel.NewPersistenceError(op, travel.KindNotFound, fmt.Errorf("package %d", p.ID))
			}
			p.DestinationID = work.ID
		}
		return nil
	})
	if err != nil {
		return classify(op, err)
	}

	*d = work
	return nil
}

// DeleteDestination removes destination id; its packages are removed by the
// foreign key cascade. Returns the deleted destination's name.
func (r *Repository) DeleteDestination(ctx context.Context, id int) (string, error) {
	op := fmt.Sprintf("deleting destination %d", id)

	var name string
	if err := r.q.QueryRow(ctx, qDeleteDestination, id).Scan(&name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", travel.NewPersistenceError(op, travel.KindNotFound, nil)
		}
		return "", classify(op, err)
	}
	return name, nil
}

// modify runs a read-modify-write cycle on destination id: it locks and loads
// the aggregate, hands it to fn, and commits whatever fn wrote.
func (r *Repository) modify(ctx context.Context, op string, id int, fn func(tx pgx.Tx, d *travel.Destination) error) error {
	err := inTx(ctx, r.q, func(tx pgx.Tx) error {
		d, err := loadAggregate(ctx, tx, qAggregateByIDForUpdate, id)
		if err != nil {
			return err
		}
		if d == nil {
			return travel.NewPersistenceError(op, travel.KindNotFound, nil)
		}
		return fn(tx, d)
	})
	return classify(op, err)
}

func insertPackage(ctx context.Context, tx pgx.Tx, destinationID int, p *travel.Package) error {
	err := tx.QueryRow(ctx, qInsertPackage,
		destinationID, p.Name, p.Description, p.StartValidityDate,
		p.EndValidityDate, p.DurationInDays, p.Price.StringFixed(travel.PriceScale),
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("inserting package %s: %w", p.Name, err)
	}
	p.DestinationID = destinationID
	return nil
}

// loadAggregate runs one of the aggregate queries. Returns nil, nil when the
// query yields no destination row.
func loadAggregate(ctx context.Context, q rowsQuerier, sql string, arg any) (*travel.Destination, error) {
	rows, err := q.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("querying destination: %w", err)
	}
	defer rows.Close()

	var d *travel.Destination
	for rows.Next() {
		var (
			destID      int
			name        string
			country     string
			description *string

			pkgID          *int
			pkgName        *string
			pkgDescription *string
			start          *time.Time
			end            *time.Time
			duration       *int
			price          *string
		)

		if err := rows.Scan(
			&destID,
			&name,
			&country,
			&description,
			&pkgID,
			&pkgName,
			&pkgDescription,
			&start,
			&end,
			&duration,
			&price,
		); err != nil {
			return nil, fmt.Errorf("scanning destination row: %w", err)
		}

		if d == nil {
			d = &travel.Destination{
				ID:          destID,
				Name:        name,
				Country:     country,
				Description: description,
				Packages:    []travel.Package{},
			}
		}

		// No packages: the left join produced a single all-null package side.
		if pkgID == nil {
			continue
		}

		p := travel.Package{
			ID:                *pkgID,
			Description:       pkgDescription,
			StartValidityDate: start,
			EndValidityDate:   end,
			DestinationID:     destID,
		}
		if pkgName != nil {
			p.Name = *pkgName
		}
		if duration != nil {
			p.DurationInDays = *duration
		}
		if price != nil {
			p.Price, err = decimal.NewFromString(*price)
			if err != nil {
				return nil, fmt.Errorf("parsing price of package %d: %w", p.ID, err)
			}
		}
		d.Packages = append(d.Packages, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating destination rows: %w", err)
	}

	return d, nil
}
