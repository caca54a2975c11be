// Package mssql implements a Microsoft SQL Server warehouse using go-mssqldb.
// Upserts are single MERGE statements whose OUTPUT clause returns the
// surrogate key and the action taken for every source row.
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-sql/civil"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"salesdw/internal/storage"
)

const (
	// maxParams stays below the 2100 parameter limit of an RPC call.
	maxParams = 2000
	// maxRows is the row limit of a table value constructor.
	maxRows = 1000
)

// Config holds MSSQL repository configuration.
type Config struct {
	DSN      string
	MaxConns int
}

// Repository is an MSSQL-backed implementation of storage.Warehouse.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	// Validate DSN early to fail fast on obvious mistakes.
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	close := func() { _ = db.Close() }
	return &Repository{db: db}, close, nil
}

// UpsertReturning implements storage.Warehouse.
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

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	out := make([]storage.KeyPair, 0, len(rows))
	for _, chunk := range storage.Chunks(rows, len(spec.Columns), maxParams, maxRows) {
		args := make([]any, 0, len(chunk)*len(spec.Columns))
		for _, row := range chunk {
			for _, v := range row {
				args = append(args, bind(v))
			}
		}
		rs, err := tx.QueryContext(ctx, buildMergeSQL(spec, len(chunk)), args...)
		if err != nil {
			return nil, msError("merge "+spec.Table, err)
		}
		for rs.Next() {
			var (
				action string
				kp     storage.KeyPair
			)
			if err := rs.Scan(&action, &kp.ID, &kp.Key); err != nil {
				rs.Close()
				return nil, fmt.Errorf("merge %s: scan: %w", spec.Table, err)
			}
			kp.Inserted = action == "INSERT"
			out = append(out, kp)
		}
		if err := rs.Err(); err != nil {
			rs.Close()
			return nil, msError("merge "+spec.Table, err)
		}
		rs.Close()
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

// buildMergeSQL renders one MERGE over n source rows:
//
//	MERGE INTO [t] WITH (HOLDLOCK) AS T
//	USING (VALUES (@p1, @p2), (@p3, @p4)) AS S ([a], [b])
//	ON T.[a] = S.[a]
//	WHEN MATCHED THEN UPDATE SET T.[b] = S.[b]
//	WHEN NOT MATCHED THEN INSERT ([a], [b]) VALUES (S.[a], S.[b])
//	OUTPUT $action, inserted.[id], CAST(inserted.[a] AS NVARCHAR(4000));
func buildMergeSQL(spec storage.UpsertSpec, n int) string {
	cols := mapIdent(spec.Columns)

	var values strings.Builder
	p := 1
	for i := 0; i < n; i++ {
		if i > 0 {
			values.WriteString(", ")
		}
		values.WriteByte('(')
		for j := range cols {
			if j > 0 {
				values.WriteString(", ")
			}
			fmt.Fprintf(&values, "@p%d", p)
			p++
		}
		values.WriteByte(')')
	}

	key := msIdent(spec.KeyColumn())
	set := spec.UpdateColumns
	if len(set) == 0 {
		set = []string{spec.KeyColumn()}
	}
	updates := make([]string, len(set))
	for i, c := range set {
		updates[i] = fmt.Sprintf("T.%s = S.%s", msIdent(c), msIdent(c))
	}
	srcCols := make([]string, len(cols))
	for i, c := range cols {
		srcCols[i] = "S." + c
	}

	return fmt.Sprintf(
		"MERGE INTO %s WITH (HOLDLOCK) AS T USING (VALUES %s) AS S (%s) ON T.%s = S.%s"+
			" WHEN MATCHED THEN UPDATE SET %s"+
			" WHEN NOT MATCHED THEN INSERT (%s) VALUES (%s)"+
			" OUTPUT $action, inserted.%s, CAST(inserted.%s AS NVARCHAR(4000));",
		msFQN(spec.Table), values.String(), strings.Join(cols, ", "), key, key,
		strings.Join(updates, ", "),
		strings.Join(cols, ", "), strings.Join(srcCols, ", "),
		msIdent(spec.ID()), key,
	)
}

// bind sends time values as DATE parameters.
func bind(v any) any {
	switch t := v.(type) {
	case time.Time:
		return civil.DateOf(t)
	case *time.Time:
		if t == nil {
			return nil
		}
		return civil.DateOf(*t)
	default:
		return v
	}
}

// msError adds the server error number and line, which identify constraint
// violations, to err.
func msError(op string, err error) error {
	var se mssql.Error
	if errors.As(err, &se) {
		return fmt.Errorf("%s: %w (number %d, line %d)", op, err, se.Number, se.LineNo)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Exec executes a SQL statement against the pool.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if strings.TrimSpace(sqlText) == "" {
		return nil
	}
	_, err := r.db.ExecContext(ctx, sqlText)
	return err
}

// msIdent safely quotes a SQL Server identifier using [brackets], escaping ].
func msIdent(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }

// msFQN quotes a possibly schema-qualified name like "dbo.Users" to
// "[dbo].[Users]". If no dot is present, returns a single quoted ident.
func msFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = msIdent(p)
	}
	return strings.Join(parts, ".")
}

// mapIdent maps a list of column names to their bracket-quoted forms.
func mapIdent(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = msIdent(c)
	}
	return out
}
