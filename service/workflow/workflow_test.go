package workflow

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataops/sqlman/log"
	"github.com/dataops/sqlman/model"
	"github.com/dataops/sqlman/repository/local"
	"github.com/dataops/sqlman/service/checker"
	"github.com/dataops/sqlman/service/registry"
)

func init() {
	log.InitLoggerConsole()
}

// fakeExecutor scripts ExecuteBatch outcomes per statement. A statement
// listed in failAt fails; everything before it succeeds.
type fakeExecutor struct {
	mu     sync.Mutex
	failAt map[string]string
	delay  time.Duration
	calls  int
}

func (f *fakeExecutor) TestConnection(ctx context.Context, ds model.DataSource) error {
	return nil
}

func (f *fakeExecutor) ListDatabases(ctx context.Context, ds model.DataSource) ([]string, error) {
	return []string{"demo"}, nil
}

func (f *fakeExecutor) Query(ctx context.Context, ds model.DataSource, database, statement string, limit int) (*model.QueryResult, error) {
	return &model.QueryResult{}, nil
}

func (f *fakeExecutor) ExecuteBatch(ctx context.Context, ds model.DataSource, database string, statements []string) ([]model.StmtResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	var results []model.StmtResult
	for idx, stmt := range statements {
		if msg, ok := f.failAt[stmt]; ok {
			results = append(results, model.StmtResult{Index: idx, Statement: stmt, Error: msg})
			return results, model.NewFlowError(model.KindExecution, "statement %d failed: %s", idx+1, msg)
		}
		results = append(results, model.StmtResult{Index: idx, Statement: stmt, AffectedRows: 1})
	}
	return results, nil
}

func newTestEngine(t *testing.T, exec *fakeExecutor, enforceCheck bool) (*Engine, *local.LocalPersistent) {
	lp := &local.LocalPersistent{}
	require.Nil(t, lp.Init(local.LocalConfig{Format: local.FORMAT_JSON, DataDir: t.TempDir()}))
	require.Nil(t, lp.CreateDataSource(model.DataSource{
		Id:   "ds-1",
		Name: "order-db",
		Kind: model.EngineMySQL,
		Host: "192.168.21.73",
		Port: 3306,
		User: "root",
	}))
	reg := registry.NewRegistry(lp, exec, time.Second)
	engine := NewEngine(lp, reg, checker.NewChecker(), exec, enforceCheck, 5*time.Second)
	return engine, lp
}

func createDraft(t *testing.T, engine *Engine, sql string) model.SqlOrder {
	order, err := engine.Create(model.CreateOrderReq{
		Title:        "change",
		DataSourceId: "ds-1",
		SqlType:      model.SqlTypeDML,
		SqlContent:   sql,
		Submitter:    "alice",
	})
	require.Nil(t, err)
	require.Equal(t, model.OrderStatusDraft, order.Status)
	return order
}

func TestCreateValidation(t *testing.T) {
	engine, _ := newTestEngine(t, &fakeExecutor{}, false)

	_, err := engine.Create(model.CreateOrderReq{DataSourceId: "ds-1", SqlContent: "SELECT 1", Submitter: "alice"})
	assert.Equal(t, model.KindValidation, model.KindOf(err))

	_, err = engine.Create(model.CreateOrderReq{Title: "t", DataSourceId: "ds-1", SqlContent: "  ;; ", Submitter: "alice"})
	assert.Equal(t, model.KindValidation, model.KindOf(err))

	_, err = engine.Create(model.CreateOrderReq{Title: "t", DataSourceId: "nope", SqlContent: "SELECT 1", Submitter: "alice"})
	assert.Equal(t, model.KindNotFound, model.KindOf(err))
}

func TestCreateAttachesCheckResult(t *testing.T) {
	engine, _ := newTestEngine(t, &fakeExecutor{}, false)
	order := createDraft(t, engine, "DELETE FROM users")
	require.NotNil(t, order.CheckResult)
	assert.False(t, order.CheckResult.Passed)
}

func TestHappyPath(t *testing.T) {
	engine, _ := newTestEngine(t, &fakeExecutor{}, false)
	order := createDraft(t, engine, "UPDATE t SET a = 1 WHERE id = 1; UPDATE t SET b = 2 WHERE id = 2")

	order, err := engine.Submit(order.OrderId)
	require.Nil(t, err)
	assert.Equal(t, model.OrderStatusPendingReview, order.Status)

	order, err = engine.Approve(order.OrderId, model.ReviewReq{Reviewer: "bob", Comment: "looks fine"})
	require.Nil(t, err)
	assert.Equal(t, model.OrderStatusApproved, order.Status)
	assert.NotNil(t, order.ReviewedAt)

	order, err = engine.Execute(context.Background(), order.OrderId)
	require.Nil(t, err)
	assert.Equal(t, model.OrderStatusSucceeded, order.Status)
	assert.Equal(t, int64(2), order.AffectedRows)
	assert.Len(t, order.StmtResults, 2)
	assert.NotNil(t, order.ExecutedAt)
}

func TestSelfApprovalDenied(t *testing.T) {
	engine, _ := newTestEngine(t, &fakeExecutor{}, false)
	order := createDraft(t, engine, "UPDATE t SET a = 1 WHERE id = 1")
	order, err := engine.Submit(order.OrderId)
	require.Nil(t, err)

	_, err = engine.Approve(order.OrderId, model.ReviewReq{Reviewer: "alice"})
	assert.Equal(t, model.KindConflict, model.KindOf(err))
}

func TestRejectNeedsComment(t *testing.T) {
	engine, _ := newTestEngine(t, &fakeExecutor{}, false)
	order := createDraft(t, engine, "UPDATE t SET a = 1 WHERE id = 1")
	order, err := engine.Submit(order.OrderId)
	require.Nil(t, err)

	_, err = engine.Reject(order.OrderId, model.ReviewReq{Reviewer: "bob"})
	assert.Equal(t, model.KindValidation, model.KindOf(err))

	order, err = engine.Reject(order.OrderId, model.ReviewReq{Reviewer: "bob", Comment: "needs a WHERE"})
	require.Nil(t, err)
	assert.Equal(t, model.OrderStatusRejected, order.Status)
}

func TestTerminalStatesAreFinal(t *testing.T) {
	engine, _ := newTestEngine(t, &fakeExecutor{}, false)
	order := createDraft(t, engine, "UPDATE t SET a = 1 WHERE id = 1")
	order, err := engine.Submit(order.OrderId)
	require.Nil(t, err)
	order, err = engine.Reject(order.OrderId, model.ReviewReq{Reviewer: "bob", Comment: "no"})
	require.Nil(t, err)
	require.True(t, order.Status.Terminal())

	_, err = engine.Submit(order.OrderId)
	assert.Equal(t, model.KindConflict, model.KindOf(err))
	_, err = engine.Approve(order.OrderId, model.ReviewReq{Reviewer: "bob"})
	assert.Equal(t, model.KindConflict, model.KindOf(err))
	_, err = engine.Execute(context.Background(), order.OrderId)
	assert.Equal(t, model.KindConflict, model.KindOf(err))
}

func TestEnforceCheckBlocksSubmit(t *testing.T) {
	engine, _ := newTestEngine(t, &fakeExecutor{}, true)
	order := createDraft(t, engine, "DELETE FROM users")

	_, err := engine.Submit(order.OrderId)
	require.NotNil(t, err)
	assert.Equal(t, model.KindValidation, model.KindOf(err))

	// a clean batch still goes through with enforcement on
	order = createDraft(t, engine, "DELETE FROM users WHERE id = 1")
	order, err = engine.Submit(order.OrderId)
	require.Nil(t, err)
	assert.Equal(t, model.OrderStatusPendingReview, order.Status)
}

func TestExecutionFailureKeepsPartialResults(t *testing.T) {
	exec := &fakeExecutor{failAt: map[string]string{"UPDATE t SET b = 2 WHERE id = 2": "Table 't' is read only"}}
	engine, _ := newTestEngine(t, exec, false)
	order := createDraft(t, engine, "UPDATE t SET a = 1 WHERE id = 1; UPDATE t SET b = 2 WHERE id = 2")
	order, err := engine.Submit(order.OrderId)
	require.Nil(t, err)
	order, err = engine.Approve(order.OrderId, model.ReviewReq{Reviewer: "bob"})
	require.Nil(t, err)

	order, err = engine.Execute(context.Background(), order.OrderId)
	require.Nil(t, err)
	assert.Equal(t, model.OrderStatusFailed, order.Status)
	require.Len(t, order.StmtResults, 2)
	assert.Empty(t, order.StmtResults[0].Error)
	assert.Contains(t, order.StmtResults[1].Error, "read only")
}

func TestConcurrentExecuteRunsOnce(t *testing.T) {
	exec := &fakeExecutor{delay: 50 * time.Millisecond}
	engine, _ := newTestEngine(t, exec, false)
	order := createDraft(t, engine, "UPDATE t SET a = 1 WHERE id = 1")
	order, err := engine.Submit(order.OrderId)
	require.Nil(t, err)
	order, err = engine.Approve(order.OrderId, model.ReviewReq{Reviewer: "bob"})
	require.Nil(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.Execute(context.Background(), order.OrderId)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.Equal(t, model.KindConflict, model.KindOf(err))
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, exec.calls)

	got, err := engine.Get(order.OrderId)
	require.Nil(t, err)
	assert.Equal(t, model.OrderStatusSucceeded, got.Status)
}

func TestConnectionFailureMarksUnreachable(t *testing.T) {
	exec := &fakeExecutor{failAt: map[string]string{}}
	engine, lp := newTestEngine(t, exec, false)
	exec.failAt["UPDATE t SET a = 1 WHERE id = 1"] = "dial tcp: connection refused"
	order := createDraft(t, engine, "UPDATE t SET a = 1 WHERE id = 1")
	order, err := engine.Submit(order.OrderId)
	require.Nil(t, err)
	order, err = engine.Approve(order.OrderId, model.ReviewReq{Reviewer: "bob"})
	require.Nil(t, err)

	// swap the scripted error kind to a connection failure
	connExec := &connFailExecutor{}
	engine.exec = connExec
	order, err = engine.Execute(context.Background(), order.OrderId)
	require.Nil(t, err)
	assert.Equal(t, model.OrderStatusFailed, order.Status)

	ds, err := lp.GetDataSourceById("ds-1")
	require.Nil(t, err)
	assert.Equal(t, model.ReachabilityUnreachable, ds.Reachability)
}

type connFailExecutor struct{ fakeExecutor }

func (c *connFailExecutor) ExecuteBatch(ctx context.Context, ds model.DataSource, database string, statements []string) ([]model.StmtResult, error) {
	return nil, model.NewFlowError(model.KindConnection, "dial %s:%d: connection refused", ds.Host, ds.Port)
}

func TestGetUnknownOrder(t *testing.T) {
	engine, _ := newTestEngine(t, &fakeExecutor{}, false)
	_, err := engine.Get("missing")
	assert.Equal(t, model.KindNotFound, model.KindOf(err))
	assert.Contains(t, fmt.Sprintf("%v", err), "missing")
}
