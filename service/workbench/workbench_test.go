package workbench

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataops/sqlman/log"
	"github.com/dataops/sqlman/model"
	"github.com/dataops/sqlman/repository/local"
	"github.com/dataops/sqlman/service/registry"
)

func init() {
	log.InitLoggerConsole()
}

type queryExecutor struct {
	err      error
	rowCount int
	gotLimit int
}

func (q *queryExecutor) TestConnection(ctx context.Context, ds model.DataSource) error {
	return nil
}

func (q *queryExecutor) ListDatabases(ctx context.Context, ds model.DataSource) ([]string, error) {
	return nil, nil
}

func (q *queryExecutor) ExecuteBatch(ctx context.Context, ds model.DataSource, database string, statements []string) ([]model.StmtResult, error) {
	return nil, nil
}

func (q *queryExecutor) Query(ctx context.Context, ds model.DataSource, database, statement string, limit int) (*model.QueryResult, error) {
	q.gotLimit = limit
	if q.err != nil {
		return nil, q.err
	}
	rows := make([]map[string]interface{}, q.rowCount)
	return &model.QueryResult{
		Columns:  []string{"id"},
		Rows:     rows,
		RowCount: q.rowCount,
	}, nil
}

func newTestWorkbench(t *testing.T, exec *queryExecutor) (*Workbench, *local.LocalPersistent, string) {
	lp := &local.LocalPersistent{}
	require.Nil(t, lp.Init(local.LocalConfig{Format: local.FORMAT_JSON, DataDir: t.TempDir()}))
	reg := registry.NewRegistry(lp, exec, time.Second)
	ds, err := reg.Register(model.DataSourceReq{
		Name: "order-db",
		Kind: model.EngineMySQL,
		Host: "192.168.21.73",
		User: "root",
	})
	require.Nil(t, err)
	return NewWorkbench(lp, reg, exec, 200, time.Second), lp, ds.Id
}

func TestClassifyFailsClosed(t *testing.T) {
	cases := []struct {
		statement string
		ok        bool
	}{
		{"SELECT id FROM users", true},
		{"  select id from users  ", true},
		{"SHOW TABLES", true},
		{"DESC users", true},
		{"DESCRIBE users", true},
		{"EXPLAIN SELECT id FROM users", true},
		{"SELECT 1; SELECT 2", false},
		{"UPDATE users SET a = 1 WHERE id = 1", false},
		{"DELETE FROM users WHERE id = 1", false},
		{"WITH x AS (SELECT 1) SELECT * FROM x", false},
		{"", false},
		{";;", false},
	}
	for _, c := range cases {
		err := classify(c.statement)
		if c.ok {
			assert.Nil(t, err, c.statement)
		} else {
			assert.Equal(t, model.KindValidation, model.KindOf(err), c.statement)
		}
	}
}

func TestSubmitRecordsHistory(t *testing.T) {
	exec := &queryExecutor{rowCount: 3}
	wb, _, dsId := newTestWorkbench(t, exec)

	result, err := wb.Submit(context.Background(), model.QueryReq{
		DataSourceId: dsId,
		Statement:    "SELECT id FROM users",
		Submitter:    "alice",
	})
	require.Nil(t, err)
	assert.Equal(t, 3, result.RowCount)
	assert.Equal(t, 200, exec.gotLimit)

	history, err := wb.History(10)
	require.Nil(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "SELECT id FROM users", history[0].Statement)
	assert.Equal(t, "alice", history[0].Submitter)
	assert.Equal(t, 3, history[0].RowCount)
}

func TestSubmitCapsLimit(t *testing.T) {
	exec := &queryExecutor{}
	wb, _, dsId := newTestWorkbench(t, exec)

	_, err := wb.Submit(context.Background(), model.QueryReq{
		DataSourceId: dsId,
		Statement:    "SELECT id FROM users",
		Limit:        20,
	})
	require.Nil(t, err)
	assert.Equal(t, 20, exec.gotLimit)

	_, err = wb.Submit(context.Background(), model.QueryReq{
		DataSourceId: dsId,
		Statement:    "SELECT id FROM users",
		Limit:        100000,
	})
	require.Nil(t, err)
	assert.Equal(t, 200, exec.gotLimit)
}

func TestSubmitRejectsWrites(t *testing.T) {
	exec := &queryExecutor{}
	wb, _, dsId := newTestWorkbench(t, exec)

	_, err := wb.Submit(context.Background(), model.QueryReq{
		DataSourceId: dsId,
		Statement:    "DROP TABLE users",
	})
	assert.Equal(t, model.KindValidation, model.KindOf(err))

	// nothing reached the executor and nothing was recorded
	assert.Equal(t, 0, exec.gotLimit)
	history, err := wb.History(10)
	require.Nil(t, err)
	assert.Empty(t, history)
}

func TestSubmitUnknownDataSource(t *testing.T) {
	wb, _, _ := newTestWorkbench(t, &queryExecutor{})
	_, err := wb.Submit(context.Background(), model.QueryReq{
		DataSourceId: "missing",
		Statement:    "SELECT 1",
	})
	assert.Equal(t, model.KindNotFound, model.KindOf(err))
}

func TestSubmitConnectionFailureFlipsReachability(t *testing.T) {
	exec := &queryExecutor{err: model.NewFlowError(model.KindConnection, "connection refused")}
	wb, lp, dsId := newTestWorkbench(t, exec)

	_, err := wb.Submit(context.Background(), model.QueryReq{
		DataSourceId: dsId,
		Statement:    "SELECT id FROM users",
	})
	assert.Equal(t, model.KindConnection, model.KindOf(err))

	ds, err := lp.GetDataSourceById(dsId)
	require.Nil(t, err)
	assert.Equal(t, model.ReachabilityUnreachable, ds.Reachability)

	// the failed attempt leaves no history entry
	history, err := wb.History(10)
	require.Nil(t, err)
	assert.Empty(t, history)
}
