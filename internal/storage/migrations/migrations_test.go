package migrations

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedFiles(t *testing.T) {
	pg, err := sqlFiles(PostgresFS, "postgres")
	require.NoError(t, err)
	assert.Contains(t, pg, "001_discovery.sql")

	ch, err := sqlFiles(ClickhouseFS, "clickhouse")
	require.NoError(t, err)
	require.NotEmpty(t, ch)

	for _, file := range ch {
		data, err := fs.ReadFile(ClickhouseFS, "clickhouse/"+file)
		require.NoError(t, err)
		stmts, err := clickhouseStatements(string(data))
		assert.NoError(t, err, file)
		assert.NotEmpty(t, stmts, file)
	}
}

func TestClickhouseStatements(t *testing.T) {
	input := `-- header comment
CREATE TABLE a (x UInt8) ENGINE = Memory;

-- second
CREATE TABLE b (y UInt8) ENGINE = Memory;
`
	stmts, err := clickhouseStatements(input)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (x UInt8) ENGINE = Memory", stmts[0])
	assert.Equal(t, "CREATE TABLE b (y UInt8) ENGINE = Memory", stmts[1])
}

func TestClickhouseStatements_Literals(t *testing.T) {
	stmts, err := clickhouseStatements(`SELECT 'it''s; fine' -- trailing; note
; SELECT 1;`)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Equal(t, `SELECT 'it''s; fine'`, stmts[0])
	assert.Equal(t, "SELECT 1", stmts[1])

	_, err = clickhouseStatements(`SELECT 'a;b`)
	assert.Error(t, err)
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://localhost:9000/arb")
	require.NoError(t, err)
	assert.Equal(t, "arb", db)

	_, err = databaseFromDSN("clickhouse://localhost:9000")
	assert.Error(t, err)
}
