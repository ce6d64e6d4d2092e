package discovery

import (
	"context"
	"errors"
	"testing"

	redis "github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type fakeRows struct {
	values []string
	pos    int
	closed bool
}

func (r *fakeRows) Close() { r.closed = true }
func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte { return nil }
func (r *fakeRows) Conn() *pgx.Conn { return nil }

func (r *fakeRows) Next() bool {
	if r.closed || r.pos >= len(r.values) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if len(dest) != 1 {
		return errors.New("expected one destination")
	}
	target, ok := dest[0].(*string)
	if !ok {
		return errors.New("unexpected destination type")
	}
	*target = r.values[r.pos-1]
	return nil
}

func (r *fakeRows) Values() ([]any, error) {
	return []any{r.values[r.pos-1]}, nil
}

type fakeQuerier struct {
	rows *fakeRows
	err  error
	args []any
}

func (q *fakeQuerier) Query(_ context.Context, _ string, args ...any) (pgx.Rows, error) {
	q.args = args
	if q.err != nil {
		return nil, q.err
	}
	return q.rows, nil
}

func TestPostgresProvider(t *testing.T) {
	db := &fakeQuerier{rows: &fakeRows{values: []string{poolA, poolB}}}
	p, err := NewPostgresProvider(db, 1)
	require.NoError(t, err)

	got, err := p.Discover(context.Background(), Query{Token: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Limit: 5})
	require.NoError(t, err)
	require.Equal(t, []string{poolA, poolB}, got)
	require.Equal(t, []any{int64(1), "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", 5}, db.args)
	require.True(t, db.rows.closed)
}

func TestPostgresProviderQueryError(t *testing.T) {
	p, err := NewPostgresProvider(&fakeQuerier{err: errors.New("connection refused")}, 1)
	require.NoError(t, err)

	_, err = p.Discover(context.Background(), Query{Limit: 5})
	require.Error(t, err)
}

type fakeSortedSet struct {
	key         string
	start, stop int64
	values      []string
	err         error
}

func (f *fakeSortedSet) ZRevRange(_ context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	f.key, f.start, f.stop = key, start, stop
	return redis.NewStringSliceResult(f.values, f.err)
}

func TestRedisProvider(t *testing.T) {
	client := &fakeSortedSet{values: []string{poolC, poolA}}
	p, err := NewRedisProvider(client, "pools:{token}")
	require.NoError(t, err)

	got, err := p.Discover(context.Background(), Query{Token: "0xABC", Limit: 2})
	require.NoError(t, err)
	require.Equal(t, []string{poolC, poolA}, got)
	require.Equal(t, "pools:0xabc", client.key)
	require.Equal(t, int64(0), client.start)
	require.Equal(t, int64(1), client.stop)
}

func TestRedisProviderError(t *testing.T) {
	p, err := NewRedisProvider(&fakeSortedSet{err: errors.New("LOADING")}, "pools")
	require.NoError(t, err)

	_, err = p.Discover(context.Background(), Query{Limit: 2})
	require.Error(t, err)

	_, err = NewRedisProvider(nil, "pools")
	require.Error(t, err)
}
