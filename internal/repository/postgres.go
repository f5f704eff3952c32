package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/eightam/acf-ofm-location/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
	CREATE TABLE IF NOT EXISTS location_meta (
		post_id BIGINT NOT NULL,
		field_name VARCHAR(255) NOT NULL,
		component VARCHAR(32) NOT NULL,
		meta_key VARCHAR(300) NOT NULL,
		meta_value TEXT NOT NULL DEFAULT '',
		field_ref VARCHAR(300) NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (post_id, meta_key)
	);
	CREATE INDEX IF NOT EXISTS location_meta_field_idx ON location_meta (post_id, field_name);
`

// Repository implements the repository interface for PostgreSQL.
// Every component of a location value is its own row, keyed like the
// companion field it feeds (<field>_<component>).
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the location_meta table if it does not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("repository: failed to create schema: %w", err)
	}
	return nil
}

// SaveLocation replaces all components of a location field in one transaction
func (r *Repository) SaveLocation(ctx context.Context, postID int64, field models.FieldRef, loc models.Location) error {
	values := loc.Values()

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, c := range models.Components {
			batch.Queue(`
				INSERT INTO location_meta (post_id, field_name, component, meta_key, meta_value, field_ref)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (post_id, meta_key) DO UPDATE
				SET meta_value = EXCLUDED.meta_value,
					field_ref = EXCLUDED.field_ref,
					updated_at = now()
			`, postID, field.Name, c, models.MetaKey(field.Name, c), values[c], models.MetaKey(field.Key, c))
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("repository: failed to save location: %w", err)
	}
	return nil
}

// FindLocation loads a location field. It returns nil when nothing is stored.
func (r *Repository) FindLocation(ctx context.Context, postID int64, fieldName string) (*models.Location, error) {
	sql := `
		SELECT component, meta_value
		FROM location_meta
		WHERE post_id = $1 AND field_name = $2
	`

	rows, err := r.db.Query(ctx, sql, postID, fieldName)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to execute location query: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string, len(models.Components))
	for rows.Next() {
		var component, value string
		if err := rows.Scan(&component, &value); err != nil {
			return nil, fmt.Errorf("repository: failed to scan component: %w", err)
		}
		values[component] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}

	if len(values) == 0 {
		return nil, nil
	}

	// coordinates may be blank for legacy rows; the address is still returned
	loc, _ := models.LocationFromValues(values)
	return &loc, nil
}

// DeleteLocation removes every component row of a location field
func (r *Repository) DeleteLocation(ctx context.Context, postID int64, fieldName string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM location_meta WHERE post_id = $1 AND field_name = $2`, postID, fieldName)
	if err != nil {
		return fmt.Errorf("repository: failed to delete location: %w", err)
	}
	return nil
}

// ImportRecord is one location value to bulk load.
type ImportRecord struct {
	PostID   int64
	Field    models.FieldRef
	Location models.Location
}

// ImportLocations bulk inserts records with COPY. Existing rows for the same
// post and field are removed first so the import can be re-run. When records
// repeat a post and field, the last one wins.
func (r *Repository) ImportLocations(ctx context.Context, records []ImportRecord) (int64, error) {
	records = uniqueRecords(records)
	if len(records) == 0 {
		return 0, nil
	}

	var copied int64
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for _, rec := range records {
			if _, err := tx.Exec(ctx, `DELETE FROM location_meta WHERE post_id = $1 AND field_name = $2`, rec.PostID, rec.Field.Name); err != nil {
				return err
			}
		}

		rows := make([][]any, 0, len(records)*len(models.Components))
		for _, rec := range records {
			values := rec.Location.Values()
			for _, c := range models.Components {
				rows = append(rows, []any{
					rec.PostID, rec.Field.Name, c,
					models.MetaKey(rec.Field.Name, c), values[c], models.MetaKey(rec.Field.Key, c),
				})
			}
		}

		n, err := tx.CopyFrom(
			ctx,
			pgx.Identifier{"location_meta"},
			[]string{"post_id", "field_name", "component", "meta_key", "meta_value", "field_ref"},
			pgx.CopyFromRows(rows),
		)
		copied = n
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("repository: failed to import locations: %w", err)
	}
	return copied, nil
}

type recordKey struct {
	postID int64
	field  string
}

// uniqueRecords keeps the last record of every post and field, at the
// position of its first occurrence.
func uniqueRecords(records []ImportRecord) []ImportRecord {
	seen := make(map[recordKey]int, len(records))
	out := make([]ImportRecord, 0, len(records))
	for _, rec := range records {
		key := recordKey{postID: rec.PostID, field: rec.Field.Name}
		if i, ok := seen[key]; ok {
			out[i] = rec
			continue
		}
		seen[key] = len(out)
		out = append(out, rec)
	}
	return out
}

// CountLocations returns how many distinct location values are stored
func (r *Repository) CountLocations(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(DISTINCT (post_id, field_name)) FROM location_meta`).Scan(&count)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("repository: failed to count locations: %w", err)
	}
	return count, nil
}
