package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "deal_scores", []string{"id", "project_id"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"deal_scores"}, []string{"id", "project_id"}).WillReturnResult(2)

	rows := [][]any{{"s1", "p1"}, {"s2", "p2"}}
	n, err := CopyFrom(context.Background(), mock, "deal_scores", []string{"id", "project_id"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"deal_scores"}, []string{"id"}).WillReturnError(fmt.Errorf("copy failed"))

	_, err = CopyFrom(context.Background(), mock, "deal_scores", []string{"id"}, [][]any{{"s1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO deal_scores")
	assert.NoError(t, mock.ExpectationsWereMet())
}
