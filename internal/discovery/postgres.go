package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Querier is the read side of pgx; *pgxpool.Pool and *pgx.Conn satisfy it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const topPoolsQuery = `
	SELECT pool_address
	FROM pools
	WHERE chain_id = $1 AND (lower(token0) = $2 OR lower(token1) = $2)
	ORDER BY first_seen_block ASC, pool_address ASC
	LIMIT $3
`

// PostgresProvider reads pools containing the queried token from an
// existing pools table. It never writes.
type PostgresProvider struct {
	db      Querier
	chainID uint64
}

func NewPostgresProvider(db Querier, chainID uint64) (*PostgresProvider, error) {
	if db == nil {
		return nil, fmt.Errorf("postgres querier is nil")
	}
	return &PostgresProvider{db: db, chainID: chainID}, nil
}

func (p *PostgresProvider) Name() string {
	return "postgres"
}

func (p *PostgresProvider) Discover(ctx context.Context, q Query) ([]string, error) {
	rows, err := p.db.Query(ctx, topPoolsQuery, int64(p.chainID), strings.ToLower(q.Token), q.Limit)
	if err != nil {
		return nil, fmt.Errorf("query pools: %w", err)
	}
	pools, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan pools: %w", err)
	}
	return pools, nil
}
