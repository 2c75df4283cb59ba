package subcategories

import (
	"context"
	"testing"

	"bulkwala/internal/db"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type existsRow bool

func (r existsRow) Scan(dest ...any) error {
	*dest[0].(*bool) = bool(r)
	return nil
}

// deadlineConn answers QueryRow and records whether the query was bounded.
type deadlineConn struct {
	db.TxBeginner
	bounded bool
}

func (c *deadlineConn) QueryRow(ctx context.Context, _ string, _ ...any) pgx.Row {
	_, c.bounded = ctx.Deadline()
	return existsRow(true)
}

func TestSlugExistsHasQueryTimeout(t *testing.T) {
	conn := &deadlineConn{}

	exists, err := NewRepository(conn).SlugExists(context.Background(), "kitchen")

	require.NoError(t, err)
	assert.True(t, exists)
	assert.True(t, conn.bounded)
}
