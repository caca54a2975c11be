// Package postgres implements the Postgres warehouse backend using pgx v5.
// Each UpsertReturning call runs INSERT ... ON CONFLICT ... RETURNING
// statements inside one transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"salesdw/internal/storage"
)

// maxParams is the Postgres wire protocol limit on bind parameters.
const maxParams = 65535

// Config holds Postgres repository configuration.
type Config struct {
	DSN      string // connection string for pgxpool
	MaxConns int32  // 0 keeps the pgxpool default
}

// Repository is a Postgres-backed storage.Warehouse.
type Repository struct {
	pool *pgxpool.Pool
}

// poolConfig parses cfg into a pool configuration. Sessions run with ISO
// DateStyle so that date keys cast to text come back as YYYY-MM-DD whatever
// the server default is.
func poolConfig(cfg Config) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pgxpool config: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if pc.ConnConfig.RuntimeParams == nil {
		pc.ConnConfig.RuntimeParams = map[string]string{}
	}
	pc.ConnConfig.RuntimeParams["DateStyle"] = "ISO, YMD"
	return pc, nil
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pc, err := poolConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	close := func() { pool.Close() }
	return &Repository{pool: pool}, close, nil
}

// UpsertReturning implements storage.Warehouse. Inserted is derived from
// xmax, which is zero only for rows created by this statement.
func (r *Repository) UpsertReturning(ctx context.Context, spec storage.UpsertSpec, rows [][]any) ([]storage.KeyPair, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if err := spec.CheckRows(rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	// Rollback after Commit is a no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	out := make([]storage.KeyPair, 0, len(rows))
	for _, chunk := range storage.Chunks(rows, len(spec.Columns), maxParams, 0) {
		query, args := buildUpsertSQL(spec, chunk)
		res, err := tx.Query(ctx, query, args...)
		if err != nil {
			return nil, pgError("upsert "+spec.Table, err)
		}
		pairs, err := pgx.CollectRows(res, func(row pgx.CollectableRow) (storage.KeyPair, error) {
			var kp storage.KeyPair
			err := row.Scan(&kp.ID, &kp.Key, &kp.Inserted)
			return kp, err
		})
		if err != nil {
			return nil, pgError("upsert "+spec.Table, err)
		}
		out = append(out, pairs...)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, pgError("commit "+spec.Table, err)
	}
	return out, nil
}

// buildUpsertSQL renders one multi-row upsert and its flattened arguments:
//
//	INSERT INTO "t" ("a","b") VALUES ($1,$2),($3,$4)
//	ON CONFLICT ("a") DO UPDATE SET "b" = EXCLUDED."b"
//	RETURNING "id", "a"::text, (xmax = 0)
//
// With no update columns the key is assigned to itself so RETURNING still
// yields rows that already existed.
func buildUpsertSQL(spec storage.UpsertSpec, rows [][]any) (string, []any) {
	cols := spec.Columns
	args := make([]any, 0, len(rows)*len(cols))

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", pgFQN(spec.Table), strings.Join(mapIdent(cols), ","))
	n := 1
	for i, row := range rows {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('(')
		for j, v := range row {
			if j > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "$%d", n)
			n++
			args = append(args, v)
		}
		sb.WriteByte(')')
	}

	key := spec.KeyColumn()
	set := spec.UpdateColumns
	if len(set) == 0 {
		set = []string{key}
	}
	fmt.Fprintf(&sb, " ON CONFLICT (%s) DO UPDATE SET %s RETURNING %s, %s::text, (xmax = 0)",
		pgIdent(key),
		strings.Join(updateColumns(set), ", "),
		pgIdent(spec.ID()),
		pgIdent(key),
	)
	return sb.String(), args
}

// updateColumns generates a list of column updates in the format: "col = EXCLUDED.col"
func updateColumns(cols []string) []string {
	updates := make([]string, 0, len(cols))
	for _, col := range cols {
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", pgIdent(col), pgIdent(col)))
	}
	return updates
}

// pgError surfaces the server-side detail of a PgError, which pgx leaves out
// of Error().
func pgError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("%s: %w (%s, %s)", op, err, pgErr.Detail, pgErr.SQLState())
	}
	return fmt.Errorf("%s: %w", op, err)
}

// pgIdent safely quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// pgFQN quotes a possibly schema-qualified name like "public.Users" to
// "public"."Users". If no dot is present, returns a single quoted ident.
func pgFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pgIdent(p)
	}
	return strings.Join(parts, ".")
}

// mapIdent maps a list of column names to their quoted forms.
func mapIdent(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = pgIdent(c)
	}
	return out
}

// Exec implements storage.Warehouse.Exec for Postgres.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	_, err := r.pool.Exec(ctx, sql)
	return err
}
