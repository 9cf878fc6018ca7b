package local

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sort"
	"sync"

	"github.com/dataops/sqlman/common"
	"github.com/dataops/sqlman/model"
	"github.com/dataops/sqlman/repository"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type LocalPersistent struct {
	Config        LocalConfig
	InTransAction bool
	Data          PersistentData
	Snapshot      PersistentData
	lock          sync.RWMutex
}

func (lp *LocalPersistent) UnmarshalConfig(configMap map[string]interface{}) interface{} {
	var config LocalConfig
	data, err := json.Marshal(configMap)
	if err != nil {
		return nil
	}
	if err = json.Unmarshal(data, &config); err != nil {
		return nil
	}
	return config
}

func (lp *LocalPersistent) Init(config interface{}) error {
	if config == nil {
		config = LocalConfig{}
	}
	lp.Config = config.(LocalConfig)
	lp.Config.Normalize()
	lp.InTransAction = false
	lp.Data.DataSources = make(map[string]model.DataSource)
	lp.Snapshot.DataSources = make(map[string]model.DataSource)
	lp.Data.Orders = make(map[string]model.SqlOrder)
	lp.Snapshot.Orders = make(map[string]model.SqlOrder)

	if err := os.MkdirAll(lp.Config.DataDir, 0755); err != nil {
		return errors.Wrap(err, "")
	}
	return lp.load()
}

func (lp *LocalPersistent) Begin() error {
	lp.lock.Lock()
	defer lp.lock.Unlock()
	if lp.InTransAction {
		return repository.ErrTransActionBegin
	}
	lp.InTransAction = true
	return common.DeepCopyByGob(&lp.Snapshot, &lp.Data)
}

func (lp *LocalPersistent) Commit() error {
	lp.lock.Lock()
	defer lp.lock.Unlock()
	if !lp.InTransAction {
		return repository.ErrTransActionEnd
	}
	lp.InTransAction = false
	return lp.dump()
}

func (lp *LocalPersistent) Rollback() error {
	lp.lock.Lock()
	defer lp.lock.Unlock()
	if !lp.InTransAction {
		return repository.ErrTransActionEnd
	}
	lp.InTransAction = false
	return common.DeepCopyByGob(&lp.Data, &lp.Snapshot)
}

func (lp *LocalPersistent) GetDataSourceById(id string) (model.DataSource, error) {
	lp.lock.RLock()
	defer lp.lock.RUnlock()
	ds, ok := lp.Data.DataSources[id]
	if !ok {
		return model.DataSource{}, repository.ErrRecordNotFound
	}
	repository.DecodePasswd(&ds)
	return ds, nil
}

func (lp *LocalPersistent) DataSourceExists(id string) bool {
	lp.lock.RLock()
	defer lp.lock.RUnlock()
	_, ok := lp.Data.DataSources[id]
	return ok
}

func (lp *LocalPersistent) GetAllDataSources() ([]model.DataSource, error) {
	lp.lock.RLock()
	defer lp.lock.RUnlock()
	var sources []model.DataSource
	for _, ds := range lp.Data.DataSources {
		repository.DecodePasswd(&ds)
		sources = append(sources, ds)
	}
	sort.Slice(sources, func(i, j int) bool {
		return sources[i].CreatedAt.After(sources[j].CreatedAt)
	})
	return sources, nil
}

func (lp *LocalPersistent) CreateDataSource(ds model.DataSource) error {
	lp.lock.Lock()
	defer lp.lock.Unlock()
	if _, ok := lp.Data.DataSources[ds.Id]; ok {
		return repository.ErrRecordExists
	}
	for _, exist := range lp.Data.DataSources {
		if exist.Name == ds.Name {
			return repository.ErrRecordExists
		}
	}
	repository.EncodePasswd(&ds)
	lp.Data.DataSources[ds.Id] = ds
	if !lp.InTransAction {
		_ = lp.dump()
	}
	return nil
}

func (lp *LocalPersistent) UpdateDataSource(ds model.DataSource) error {
	lp.lock.Lock()
	defer lp.lock.Unlock()
	if _, ok := lp.Data.DataSources[ds.Id]; !ok {
		return repository.ErrRecordNotFound
	}
	repository.EncodePasswd(&ds)
	lp.Data.DataSources[ds.Id] = ds
	if !lp.InTransAction {
		_ = lp.dump()
	}
	return nil
}

func (lp *LocalPersistent) DeleteDataSource(id string) error {
	lp.lock.Lock()
	defer lp.lock.Unlock()
	delete(lp.Data.DataSources, id)
	if !lp.InTransAction {
		_ = lp.dump()
	}
	return nil
}

func (lp *LocalPersistent) GetOrderById(id string) (model.SqlOrder, error) {
	lp.lock.RLock()
	defer lp.lock.RUnlock()
	order, ok := lp.Data.Orders[id]
	if !ok {
		return model.SqlOrder{}, repository.ErrRecordNotFound
	}
	return order, nil
}

func (lp *LocalPersistent) GetAllOrders() ([]model.SqlOrder, error) {
	lp.lock.RLock()
	defer lp.lock.RUnlock()
	var orders []model.SqlOrder
	for _, order := range lp.Data.Orders {
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (lp *LocalPersistent) CreateOrder(order model.SqlOrder) error {
	lp.lock.Lock()
	defer lp.lock.Unlock()
	if _, ok := lp.Data.Orders[order.OrderId]; ok {
		return repository.ErrRecordExists
	}
	lp.Data.Orders[order.OrderId] = order
	if !lp.InTransAction {
		_ = lp.dump()
	}
	return nil
}

func (lp *LocalPersistent) UpdateOrder(order model.SqlOrder) error {
	lp.lock.Lock()
	defer lp.lock.Unlock()
	if _, ok := lp.Data.Orders[order.OrderId]; !ok {
		return repository.ErrRecordNotFound
	}
	lp.Data.Orders[order.OrderId] = order
	if !lp.InTransAction {
		_ = lp.dump()
	}
	return nil
}

func (lp *LocalPersistent) CountOrdersByDataSource(dsId string) (int, error) {
	lp.lock.RLock()
	defer lp.lock.RUnlock()
	count := 0
	for _, order := range lp.Data.Orders {
		if order.DataSourceId == dsId {
			count++
		}
	}
	return count, nil
}

func (lp *LocalPersistent) CreateQueryRecord(record model.QueryRecord) error {
	lp.lock.Lock()
	defer lp.lock.Unlock()
	lp.Data.Queries = append(lp.Data.Queries, record)
	if !lp.InTransAction {
		_ = lp.dump()
	}
	return nil
}

func (lp *LocalPersistent) GetQueryHistory(limit int) ([]model.QueryRecord, error) {
	lp.lock.RLock()
	defer lp.lock.RUnlock()
	records := make([]model.QueryRecord, len(lp.Data.Queries))
	copy(records, lp.Data.Queries)
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (lp *LocalPersistent) marshal() ([]byte, error) {
	var data []byte
	var err error
	if lp.Config.Format == FORMAT_JSON {
		data, err = json.MarshalIndent(lp.Data, "", "  ")
	} else if lp.Config.Format == FORMAT_YAML {
		data, err = yaml.Marshal(lp.Data)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "")
	}

	return data, nil
}

func (lp *LocalPersistent) unmarshal(data []byte) error {
	var err error
	if len(data) == 0 {
		return nil
	}

	if lp.Config.Format == FORMAT_JSON {
		err = json.Unmarshal(data, &lp.Data)
	} else if lp.Config.Format == FORMAT_YAML {
		err = yaml.Unmarshal(data, &lp.Data)
	}

	if err != nil {
		return errors.Wrapf(err, "")
	}
	return nil
}

func (lp *LocalPersistent) dump() error {
	data, err := lp.marshal()
	if err != nil {
		return err
	}
	localFile := path.Join(lp.Config.DataDir, lp.Config.DataFile)
	_ = os.Rename(localFile, fmt.Sprintf("%s.last", localFile))
	localFd, err := os.OpenFile(localFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return errors.Wrapf(err, "")
	}
	defer localFd.Close()

	num, err := localFd.Write(data)
	if err != nil {
		return errors.Wrapf(err, "")
	}

	if num != len(data) {
		return errors.Errorf("didn't write enough data")
	}
	return nil
}

func (lp *LocalPersistent) load() error {
	localFile := path.Join(lp.Config.DataDir, lp.Config.DataFile)
	data, err := os.ReadFile(localFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "")
	}
	if err = lp.unmarshal(data); err != nil {
		return err
	}
	if lp.Data.DataSources == nil {
		lp.Data.DataSources = make(map[string]model.DataSource)
	}
	if lp.Data.Orders == nil {
		lp.Data.Orders = make(map[string]model.SqlOrder)
	}
	return nil
}
