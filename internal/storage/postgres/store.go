package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/reviosa/riverbank-bot/internal/interfaces"
)

// PostgresRowStore implements interfaces.RowStore on a single
// accounts table. The row index is a serial primary key, which keeps
// 1-based row coordinates stable because accounts are never deleted.
type PostgresRowStore struct {
	db *sql.DB
}

// columns maps the fixed 1-based column layout onto table columns.
var columns = [...]string{
	1: "member_id",
	2: "display_name",
	3: "handle",
	4: "profile_link",
	5: "balance",
	6: "last_updated",
	7: "tx_log",
	8: "contributions",
}

const createTable = `CREATE TABLE IF NOT EXISTS accounts (
	row_idx SERIAL PRIMARY KEY,
	member_id TEXT NOT NULL DEFAULT '',
	display_name TEXT NOT NULL DEFAULT '',
	handle TEXT NOT NULL DEFAULT '',
	profile_link TEXT NOT NULL DEFAULT '',
	balance TEXT NOT NULL DEFAULT '',
	last_updated TEXT NOT NULL DEFAULT '',
	tx_log TEXT NOT NULL DEFAULT '',
	contributions TEXT NOT NULL DEFAULT ''
)`

// NewPostgresRowStore opens the database, verifies connectivity and
// ensures the accounts table exists.
func NewPostgresRowStore(ctx context.Context, dsn string) (*PostgresRowStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("postgres unreachable: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return nil, err
	}
	return &PostgresRowStore{db: db}, nil
}

func colName(col int) (string, error) {
	if col < 1 || col >= len(columns) {
		return "", fmt.Errorf("column %d out of range", col)
	}
	return columns[col], nil
}

func (p *PostgresRowStore) Rows(ctx context.Context) ([][]string, error) {
	const query = `SELECT member_id, display_name, handle, profile_link,
		balance, last_updated, tx_log, contributions
		FROM accounts ORDER BY row_idx`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		cells := make([]string, 8)
		ptrs := make([]any, 8)
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		out = append(out, cells)
	}
	return out, rows.Err()
}

func (p *PostgresRowStore) Row(ctx context.Context, row int) ([]string, error) {
	const query = `SELECT member_id, display_name, handle, profile_link,
		balance, last_updated, tx_log, contributions
		FROM accounts WHERE row_idx = $1`

	cells := make([]string, 8)
	ptrs := make([]any, 8)
	for i := range cells {
		ptrs[i] = &cells[i]
	}
	err := p.db.QueryRowContext(ctx, query, row).Scan(ptrs...)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("row %d out of range", row)
	}
	if err != nil {
		return nil, err
	}
	return cells, nil
}

func (p *PostgresRowStore) Cell(ctx context.Context, row, col int) (string, error) {
	name, err := colName(col)
	if err != nil {
		return "", err
	}
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE row_idx = $1`, name)

	var value string
	err = p.db.QueryRowContext(ctx, query, row).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("row %d out of range", row)
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (p *PostgresRowStore) SetCell(ctx context.Context, row, col int, value string) error {
	name, err := colName(col)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE accounts SET %s = $1 WHERE row_idx = $2`, name)

	res, err := p.db.ExecContext(ctx, query, value, row)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("row %d out of range", row)
	}
	return nil
}

func (p *PostgresRowStore) Append(ctx context.Context, cells []string) error {
	padded := make([]string, 8)
	copy(padded, cells)

	const query = `INSERT INTO accounts (member_id, display_name, handle,
		profile_link, balance, last_updated, tx_log, contributions)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	args := make([]any, 8)
	for i, c := range padded {
		args[i] = c
	}
	_, err := p.db.ExecContext(ctx, query, args...)
	return err
}

var _ interfaces.RowStore = (*PostgresRowStore)(nil)
