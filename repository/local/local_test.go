package local

import (
	"fmt"
	"testing"
	"time"

	"github.com/dataops/sqlman/model"
	"github.com/dataops/sqlman/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPersistent(t *testing.T) *LocalPersistent {
	lp := &LocalPersistent{}
	err := lp.Init(LocalConfig{Format: FORMAT_JSON, DataDir: t.TempDir()})
	require.Nil(t, err)
	return lp
}

func TestDataSourceRoundTrip(t *testing.T) {
	lp := newTestPersistent(t)
	ds := model.DataSource{
		Id:       "ds-1",
		Name:     "order-db",
		Kind:     model.EngineMySQL,
		Host:     "192.168.21.73",
		Port:     3306,
		User:     "root",
		Password: "Secret@123",
	}
	require.Nil(t, lp.CreateDataSource(ds))

	// stored encrypted, returned decoded
	assert.NotEqual(t, "Secret@123", lp.Data.DataSources["ds-1"].Password)
	got, err := lp.GetDataSourceById("ds-1")
	require.Nil(t, err)
	assert.Equal(t, "Secret@123", got.Password)

	assert.Equal(t, repository.ErrRecordExists, lp.CreateDataSource(ds))
	dup := ds
	dup.Id = "ds-2"
	assert.Equal(t, repository.ErrRecordExists, lp.CreateDataSource(dup))

	require.Nil(t, lp.DeleteDataSource("ds-1"))
	_, err = lp.GetDataSourceById("ds-1")
	assert.Equal(t, repository.ErrRecordNotFound, err)
}

func TestOrderCRUD(t *testing.T) {
	lp := newTestPersistent(t)
	order := model.SqlOrder{
		OrderId:      "order-1",
		Title:        "add index",
		DataSourceId: "ds-1",
		Statements:   []string{"ALTER TABLE t ADD INDEX idx_a(a)"},
		Status:       model.OrderStatusDraft,
		CreatedAt:    time.Now(),
	}
	require.Nil(t, lp.CreateOrder(order))
	assert.Equal(t, repository.ErrRecordExists, lp.CreateOrder(order))

	order.Status = model.OrderStatusPendingReview
	require.Nil(t, lp.UpdateOrder(order))
	got, err := lp.GetOrderById("order-1")
	require.Nil(t, err)
	assert.Equal(t, model.OrderStatusPendingReview, got.Status)

	cnt, err := lp.CountOrdersByDataSource("ds-1")
	require.Nil(t, err)
	assert.Equal(t, 1, cnt)
	cnt, err = lp.CountOrdersByDataSource("ds-other")
	require.Nil(t, err)
	assert.Equal(t, 0, cnt)
}

func TestQueryHistoryOrderAndLimit(t *testing.T) {
	lp := newTestPersistent(t)
	base := time.Now()
	for i := 0; i < 5; i++ {
		require.Nil(t, lp.CreateQueryRecord(model.QueryRecord{
			QueryId:   fmt.Sprintf("q-%d", i),
			Statement: "SELECT 1",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}
	records, err := lp.GetQueryHistory(3)
	require.Nil(t, err)
	require.Len(t, records, 3)
	// newest first
	assert.Equal(t, "q-4", records[0].QueryId)
	assert.Equal(t, "q-2", records[2].QueryId)
}

func TestTransactionRollback(t *testing.T) {
	lp := newTestPersistent(t)
	require.Nil(t, lp.CreateDataSource(model.DataSource{Id: "ds-1", Name: "a"}))

	require.Nil(t, lp.Begin())
	require.Nil(t, lp.CreateDataSource(model.DataSource{Id: "ds-2", Name: "b"}))
	require.Nil(t, lp.Rollback())

	assert.False(t, lp.DataSourceExists("ds-2"))
	assert.True(t, lp.DataSourceExists("ds-1"))
}
