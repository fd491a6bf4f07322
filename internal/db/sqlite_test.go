package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var timelineProcedures = map[string]string{
	"GET_USER_BY_EMAIL": `SELECT id, email, username, rfid FROM users WHERE email = :p_email`,
	"COUNT_POSTS":       `SELECT COUNT(*) FROM posts`,
	"INSERT_POST":       `INSERT INTO posts (user_id, body) VALUES (:p_user_id, :p_body)`,
	"ADD_POST":          `INSERT INTO posts (user_id, body) VALUES (:p_user_id, :p_body) RETURNING 0 AS p_status, id AS p_post_id`,
}

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()

	connector, err := CreateConnector("sqlite", ":memory:", Options{Procedures: timelineProcedures})
	require.NoError(t, err)
	t.Cleanup(func() { connector.Close() })

	_, err = connector.GetDB().Exec(`
		CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT NOT NULL, username TEXT, rfid INTEGER);
		CREATE TABLE posts (id INTEGER PRIMARY KEY, user_id INTEGER NOT NULL, body TEXT NOT NULL);
		INSERT INTO users (id, email, username, rfid) VALUES (1, 'jan@ict4events.nl', NULL, NULL);
	`)
	require.NoError(t, err)

	return NewStore(connector, zaptest.NewLogger(t))
}

func TestSQLiteStore(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	rows, err := store.ExecuteReader(ctx, "GET_USER_BY_EMAIL", In("p_email", "jan@ict4events.nl"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Row{"1", "jan@ict4events.nl", "", "0"}, rows[0])

	rows, err = store.ExecuteReader(ctx, "GET_USER_BY_EMAIL", In("p_email", "nobody@ict4events.nl"))
	require.NoError(t, err)
	assert.Empty(t, rows)

	records, err := store.ExecuteReaderDict(ctx, "GET_USER_BY_EMAIL", In("p_email", "jan@ict4events.nl"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "", records[0]["rfid"])

	res, err := store.ExecuteNonQueryResult(ctx, "INSERT_POST", In("p_user_id", 1), In("p_body", "hallo"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)

	count, err := store.ExecuteScalar(ctx, "COUNT_POSTS")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = store.ExecuteReader(ctx, "NOT_IN_CATALOGUE")
	assert.ErrorIs(t, err, ErrQueryFailed)
	assert.ErrorIs(t, err, ErrNoProcedure)
}

func TestSQLiteStatusFromReturningRow(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	ok, err := store.ExecuteNonQuery(ctx, "ADD_POST", Out("p_status"), In("p_user_id", 1), In("p_body", "hallo"))
	require.NoError(t, err)
	assert.True(t, ok)

	res, err := store.ExecuteNonQueryResult(ctx, "ADD_POST", Out("p_status"), In("p_user_id", 1), In("p_body", "weer"), Out("p_post_id"))
	require.NoError(t, err)
	assert.True(t, res.StatusOK())
	assert.Equal(t, "2", res.Params[3].Text())

	count, err := store.ExecuteScalar(ctx, "COUNT_POSTS")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestSQLiteOutputWithoutColumnRunsNothing(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	ok, err := store.ExecuteNonQuery(ctx, "INSERT_POST", Out("p_status"), In("p_user_id", 1), In("p_body", "hallo"))
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrQueryFailed)
	assert.ErrorIs(t, err, ErrNoOutputColumn)

	_, err = store.ExecuteReader(ctx, "ADD_POST", Out("p_status"), In("p_user_id", 1), In("p_body", "hallo"))
	assert.ErrorIs(t, err, ErrQueryFailed)

	count, err := store.ExecuteScalar(ctx, "COUNT_POSTS")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestCreateConnector_Unsupported(t *testing.T) {
	_, err := CreateConnector("db2", "whatever", Options{})
	assert.ErrorIs(t, err, ErrUnsupportedDBType)
}
