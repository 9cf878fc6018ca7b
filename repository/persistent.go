package repository

import (
	"github.com/dataops/sqlman/config"
	"github.com/dataops/sqlman/model"
	"github.com/pkg/errors"
)

var Ps PersistentMgr

// Global registry to mapping adapter name to the adapter factory
var PersistentRegistry map[string]PersistentFactory = make(map[string]PersistentFactory)

type PersistentFactory interface {
	GetPersistentName() string
	// Create an adapter instance
	CreatePersistent() PersistentMgr
}

type PersistentMgr interface {
	UnmarshalConfig(configMap map[string]interface{}) interface{}

	Init(config interface{}) error

	//start transaction
	Begin() error

	//commit transaction
	Commit() error

	Rollback() error

	GetDataSourceById(id string) (model.DataSource, error)

	DataSourceExists(id string) bool

	//all data sources, credentials decoded; callers mask before responding
	GetAllDataSources() ([]model.DataSource, error)

	CreateDataSource(ds model.DataSource) error

	UpdateDataSource(ds model.DataSource) error

	DeleteDataSource(id string) error

	GetOrderById(id string) (model.SqlOrder, error)

	GetAllOrders() ([]model.SqlOrder, error)

	CreateOrder(order model.SqlOrder) error

	UpdateOrder(order model.SqlOrder) error

	//how many orders, in any state, reference the data source
	CountOrdersByDataSource(dsId string) (int, error)

	CreateQueryRecord(record model.QueryRecord) error

	GetQueryHistory(limit int) ([]model.QueryRecord, error)
}

func RegistePersistent(fn func() PersistentFactory) {
	if fn == nil {
		return
	}
	factory := fn()
	name := factory.GetPersistentName()
	if name == "" {
		panic("Empty persistent name when registe persistent factory")
	}
	PersistentRegistry[name] = factory
}

func GetPersistentByName(name string) PersistentMgr {
	if factory, ok := PersistentRegistry[name]; ok {
		return factory.CreatePersistent()
	}
	return nil
}

func InitPersistent() error {
	if Ps == nil {
		Ps = GetPersistentByName(config.GlobalConfig.Server.PersistentPolicy)
	}
	if Ps == nil {
		return errors.Errorf("persistent policy %s is not regist", config.GlobalConfig.Server.PersistentPolicy)
	}

	var pcfg interface{}
	if config.GlobalConfig.PersistentConfig != nil {
		configMap, ok := config.GlobalConfig.PersistentConfig[config.GlobalConfig.Server.PersistentPolicy]
		if !ok {
			pcfg = nil
		} else {
			pcfg = Ps.UnmarshalConfig(configMap)
		}
	}
	if err := Ps.Init(pcfg); err != nil {
		return err
	}
	return nil
}
