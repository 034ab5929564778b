package store

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/goliatone/go-game-config/configuration"
)

var (
	_ configuration.Repository = (*ConfigurationRepository)(nil)
	_ configuration.Pinger     = (*ConfigurationRepository)(nil)
)

// timestampPrecision is the finest resolution every supported store keeps.
const timestampPrecision = time.Microsecond

// ConfigurationRepository persists configuration records through bun.
// Name uniqueness is owned by the ux_configurations_name index; the
// application level check in Create only produces a friendlier error.
type ConfigurationRepository struct {
	db    bun.IDB
	now   func() time.Time
	newID func() string
}

// Option customizes a ConfigurationRepository.
type Option func(*ConfigurationRepository)

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *ConfigurationRepository) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(fn func() string) Option {
	return func(r *ConfigurationRepository) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// NewConfigurationRepository returns a repository backed by db.
func NewConfigurationRepository(db bun.IDB, opts ...Option) *ConfigurationRepository {
	r := &ConfigurationRepository{
		db:    db,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *ConfigurationRepository) timestamp() time.Time {
	return r.now().UTC().Truncate(timestampPrecision)
}

// GetByID returns the record with id, or nil when there is none.
func (r *ConfigurationRepository) GetByID(ctx context.Context, id string) (*configuration.Record, error) {
	return r.getOne(ctx, "get by id", selectByColumn("id", id))
}

// GetByName returns the record named name, or nil when there is none.
func (r *ConfigurationRepository) GetByName(ctx context.Context, name string) (*configuration.Record, error) {
	return r.getOne(ctx, "get by name", selectByColumn("name", name))
}

func (r *ConfigurationRepository) getOne(ctx context.Context, op string, criteria ...repository.SelectCriteria) (*configuration.Record, error) {
	record := new(configuration.Record)
	q := r.db.NewSelect().Model(record)
	for _, c := range criteria {
		q = c(q)
	}

	if err := q.Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storeError(op, err)
	}
	return record, nil
}

// GetAll lists records ordered by creation time then id, filtered by
// SearchTerm over name and json_config, then paginated.
func (r *ConfigurationRepository) GetAll(ctx context.Context, opts configuration.ListOptions) ([]configuration.Record, error) {
	records := make([]configuration.Record, 0)
	if opts.Take != nil && *opts.Take <= 0 {
		// bun treats LIMIT 0 as "no limit"
		return records, nil
	}

	q := r.db.NewSelect().Model(&records)
	for _, c := range listCriteria(opts) {
		q = c(q)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, storeError("get all", err)
	}
	return records, nil
}

// Create inserts a new record. The id and both timestamps are assigned
// here, whatever the candidate carries.
func (r *ConfigurationRepository) Create(ctx context.Context, candidate configuration.Record) (*configuration.Record, error) {
	exists, err := r.Exists(ctx, candidate.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &configuration.DuplicateNameError{Name: candidate.Name}
	}

	now := r.timestamp()
	record := &configuration.Record{
		ID:         r.newID(),
		Name:       candidate.Name,
		JSONConfig: candidate.JSONConfig,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			// lost a race against a concurrent create
			return nil, &configuration.DuplicateNameError{Name: candidate.Name}
		}
		return nil, storeError("create", err)
	}
	return record, nil
}

// Update overwrites name and json_config of an existing record and moves
// UpdatedAt strictly forward. CreatedAt is kept from the stored row.
func (r *ConfigurationRepository) Update(ctx context.Context, candidate configuration.Record) (*configuration.Record, error) {
	var updated *configuration.Record

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing := new(configuration.Record)
		q := tx.NewSelect().
			Model(existing).
			Where("id = ?", candidate.ID).
			Limit(1)
		// serialize concurrent updates of one row so updated_at follows
		// commit order; sqlite already serializes writers
		if tx.Dialect().Name() == dialect.PG {
			q = q.For("UPDATE")
		}
		err := q.Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return &configuration.NotFoundError{ID: candidate.ID}
		}
		if err != nil {
			return err
		}

		updatedAt := r.timestamp()
		if !updatedAt.After(existing.UpdatedAt) {
			updatedAt = existing.UpdatedAt.Add(timestampPrecision)
		}

		existing.Name = candidate.Name
		existing.JSONConfig = candidate.JSONConfig
		existing.UpdatedAt = updatedAt

		_, err = tx.NewUpdate().
			Model(existing).
			Column("name", "json_config", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			if isUniqueViolation(err) {
				return &configuration.DuplicateNameError{Name: candidate.Name}
			}
			return err
		}

		updated = existing
		return nil
	})
	if err != nil {
		return nil, storeError("update", err)
	}
	return updated, nil
}

// Delete permanently removes the record with id.
func (r *ConfigurationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().
		Model((*configuration.Record)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return storeError("delete", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return storeError("delete", err)
	}
	if n == 0 {
		return &configuration.NotFoundError{ID: id}
	}
	return nil
}

// Exists reports whether a record named name is stored.
func (r *ConfigurationRepository) Exists(ctx context.Context, name string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*configuration.Record)(nil)).
		Where("name = ?", name).
		Exists(ctx)
	if err != nil {
		return false, storeError("exists", err)
	}
	return exists, nil
}

// Ping runs a trivial query against the store.
func (r *ConfigurationRepository) Ping(ctx context.Context) error {
	var one int
	if err := r.db.NewSelect().ColumnExpr("1").Scan(ctx, &one); err != nil {
		return storeError("ping", err)
	}
	return nil
}

func selectByColumn(column, value string) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("? = ?", bun.Ident(column), value)
	}
}

func listCriteria(opts configuration.ListOptions) []repository.SelectCriteria {
	criteria := []repository.SelectCriteria{}

	if opts.SearchTerm != "" {
		pattern := "%" + escapeLike(opts.SearchTerm) + "%"
		criteria = append(criteria, func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.
					Where("name LIKE ? ESCAPE '!'", pattern).
					WhereOr("json_config LIKE ? ESCAPE '!'", pattern)
			})
		})
	}

	criteria = append(criteria, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("created_at ASC, id ASC")
	})

	skip := 0
	if opts.Skip != nil && *opts.Skip > 0 {
		skip = *opts.Skip
	}
	if opts.Take != nil {
		take := *opts.Take
		criteria = append(criteria, func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Limit(take)
		})
	} else if skip > 0 {
		// OFFSET without LIMIT is not valid sqlite
		criteria = append(criteria, func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Limit(math.MaxInt32)
		})
	}
	if skip > 0 {
		criteria = append(criteria, func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Offset(skip)
		})
	}

	return criteria
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
