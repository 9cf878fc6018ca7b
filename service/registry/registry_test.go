package registry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataops/sqlman/log"
	"github.com/dataops/sqlman/model"
	"github.com/dataops/sqlman/repository/local"
)

func init() {
	log.InitLoggerConsole()
}

// probeExecutor answers connection probes and database listings from
// scripted fields.
type probeExecutor struct {
	mu        sync.Mutex
	probeErr  error
	listErr   error
	databases []string
	listCalls int
}

func (p *probeExecutor) TestConnection(ctx context.Context, ds model.DataSource) error {
	return p.probeErr
}

func (p *probeExecutor) ListDatabases(ctx context.Context, ds model.DataSource) ([]string, error) {
	p.mu.Lock()
	p.listCalls++
	p.mu.Unlock()
	if p.listErr != nil {
		return nil, p.listErr
	}
	return p.databases, nil
}

func (p *probeExecutor) ExecuteBatch(ctx context.Context, ds model.DataSource, database string, statements []string) ([]model.StmtResult, error) {
	return nil, nil
}

func (p *probeExecutor) Query(ctx context.Context, ds model.DataSource, database, statement string, limit int) (*model.QueryResult, error) {
	return nil, nil
}

func newTestRegistry(t *testing.T, exec *probeExecutor) (*Registry, *local.LocalPersistent) {
	lp := &local.LocalPersistent{}
	require.Nil(t, lp.Init(local.LocalConfig{Format: local.FORMAT_JSON, DataDir: t.TempDir()}))
	return NewRegistry(lp, exec, time.Second), lp
}

func register(t *testing.T, reg *Registry) model.DataSource {
	ds, err := reg.Register(model.DataSourceReq{
		Name:     "order-db",
		Kind:     model.EngineMySQL,
		Host:     "192.168.21.73",
		User:     "root",
		Password: "Secret@123",
	})
	require.Nil(t, err)
	return ds
}

func TestRegisterDefaults(t *testing.T) {
	reg, _ := newTestRegistry(t, &probeExecutor{})
	ds := register(t, reg)
	assert.NotEmpty(t, ds.Id)
	assert.Equal(t, 3306, ds.Port)
	assert.Equal(t, "utf8mb4", ds.Charset)
	assert.Equal(t, model.ReachabilityUnknown, ds.Reachability)
}

func TestRegisterValidation(t *testing.T) {
	reg, _ := newTestRegistry(t, &probeExecutor{})

	_, err := reg.Register(model.DataSourceReq{Kind: model.EngineMySQL, Host: "h", User: "u"})
	assert.Equal(t, model.KindValidation, model.KindOf(err))

	_, err = reg.Register(model.DataSourceReq{Name: "n", Kind: "oracle", Host: "h", User: "u"})
	assert.Equal(t, model.KindValidation, model.KindOf(err))

	register(t, reg)
	_, err = reg.Register(model.DataSourceReq{Name: "order-db", Kind: model.EngineMySQL, Host: "h", User: "u"})
	assert.Equal(t, model.KindConflict, model.KindOf(err))
}

func TestUpdateKeepsPasswordAndResetsReachability(t *testing.T) {
	exec := &probeExecutor{}
	reg, lp := newTestRegistry(t, exec)
	ds := register(t, reg)

	_, err := reg.TestConnection(context.Background(), ds.Id)
	require.Nil(t, err)

	got, err := reg.Update(ds.Id, model.DataSourceReq{
		Name: "order-db",
		Kind: model.EngineMySQL,
		Host: "192.168.21.74",
		User: "root",
	})
	require.Nil(t, err)
	assert.Equal(t, model.ReachabilityUnknown, got.Reachability)

	stored, err := lp.GetDataSourceById(ds.Id)
	require.Nil(t, err)
	assert.Equal(t, "Secret@123", stored.Password)
}

func TestDeleteRefusedWhileReferenced(t *testing.T) {
	reg, lp := newTestRegistry(t, &probeExecutor{})
	ds := register(t, reg)

	require.Nil(t, lp.CreateOrder(model.SqlOrder{
		OrderId:      "order-1",
		DataSourceId: ds.Id,
		Status:       model.OrderStatusSucceeded,
		CreatedAt:    time.Now(),
	}))
	err := reg.Delete(ds.Id)
	assert.Equal(t, model.KindConflict, model.KindOf(err))

	assert.Equal(t, model.KindNotFound, model.KindOf(reg.Delete("missing")))
}

func TestTestConnectionRecordsOutcome(t *testing.T) {
	exec := &probeExecutor{}
	reg, lp := newTestRegistry(t, exec)
	ds := register(t, reg)

	result, err := reg.TestConnection(context.Background(), ds.Id)
	require.Nil(t, err)
	assert.True(t, result.Success)
	stored, _ := lp.GetDataSourceById(ds.Id)
	assert.Equal(t, model.ReachabilityReachable, stored.Reachability)

	// a failed probe is a result, not an error
	exec.probeErr = model.NewFlowError(model.KindConnection, "connection refused")
	result, err = reg.TestConnection(context.Background(), ds.Id)
	require.Nil(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "connection refused")
	stored, _ = lp.GetDataSourceById(ds.Id)
	assert.Equal(t, model.ReachabilityUnreachable, stored.Reachability)
}

func TestListDatabasesCaching(t *testing.T) {
	exec := &probeExecutor{databases: []string{"demo", "orders", "demo"}}
	reg, lp := newTestRegistry(t, exec)
	ds := register(t, reg)

	names, err := reg.ListDatabases(context.Background(), ds.Id)
	require.Nil(t, err)
	assert.Equal(t, []string{"demo", "orders"}, names)
	assert.Equal(t, 1, exec.listCalls)

	stored, _ := lp.GetDataSourceById(ds.Id)
	assert.Equal(t, model.ReachabilityReachable, stored.Reachability)

	// served from cache, no second round trip
	_, err = reg.ListDatabases(context.Background(), ds.Id)
	require.Nil(t, err)
	assert.Equal(t, 1, exec.listCalls)

	// failing probe drops the cache
	exec.probeErr = model.NewFlowError(model.KindConnection, "connection refused")
	_, err = reg.TestConnection(context.Background(), ds.Id)
	require.Nil(t, err)
	_, err = reg.ListDatabases(context.Background(), ds.Id)
	require.Nil(t, err)
	assert.Equal(t, 2, exec.listCalls)
}

func TestListDatabasesFailureMarksUnreachable(t *testing.T) {
	exec := &probeExecutor{listErr: model.NewFlowError(model.KindConnection, "connection refused")}
	reg, lp := newTestRegistry(t, exec)
	ds := register(t, reg)

	_, err := reg.ListDatabases(context.Background(), ds.Id)
	assert.Equal(t, model.KindConnection, model.KindOf(err))

	stored, _ := lp.GetDataSourceById(ds.Id)
	assert.Equal(t, model.ReachabilityUnreachable, stored.Reachability)
}
