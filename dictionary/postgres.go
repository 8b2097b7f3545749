package dictionary

import (
	"context"
	_ "embed"
	"errors"

	"github.com/jackc/pgx/v5"
)

//go:embed sql/dictionary_item.sql
var dictionaryItemQuery string

type PgxIface interface {
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Postgres is a dictionary stored as rows of the dictionary_items table.
type Postgres struct {
	pool PgxIface
	name string
}

func NewPostgres(pool PgxIface, name string) *Postgres {
	return &Postgres{pool: pool, name: name}
}

func (d *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := d.pool.QueryRow(ctx, dictionaryItemQuery, d.name, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}
