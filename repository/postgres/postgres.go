package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dataops/sqlman/log"
	"github.com/dataops/sqlman/model"
	"github.com/dataops/sqlman/repository"
	"github.com/pkg/errors"
	driver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"moul.io/zapgorm2"
)

type PostgresPersistent struct {
	Config   PostgresConfig
	Client   *gorm.DB
	ParentDB *gorm.DB
}

func (pp *PostgresPersistent) UnmarshalConfig(configMap map[string]interface{}) interface{} {
	var config PostgresConfig
	data, err := json.Marshal(configMap)
	if err != nil {
		log.Logger.Errorf("marshal postgres configMap failed:%v", err)
		return nil
	}
	if err = json.Unmarshal(data, &config); err != nil {
		log.Logger.Errorf("unmarshal postgres config failed:%v", err)
		return nil
	}
	return config
}

func (pp *PostgresPersistent) Init(config interface{}) error {
	if config == nil {
		config = PostgresConfig{}
	}
	pp.Config = config.(PostgresConfig)
	pp.Config.Normalize()
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=Local",
		pp.Config.Host,
		pp.Config.User,
		pp.Config.Password,
		pp.Config.DataBase,
		pp.Config.Port)

	logger := zapgorm2.New(log.ZapLog)
	logger.SetAsDefault()
	db, err := gorm.Open(driver.Open(dsn), &gorm.Config{
		Logger: logger,
	})
	if err != nil {
		return errors.Wrap(err, "")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "")
	}

	if sqlDB != nil {
		sqlDB.SetMaxIdleConns(pp.Config.MaxIdleConns)
		sqlDB.SetConnMaxIdleTime(time.Second * time.Duration(pp.Config.ConnMaxIdleTime))
		sqlDB.SetMaxOpenConns(pp.Config.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(time.Second * time.Duration(pp.Config.ConnMaxLifetime))
	}
	pp.Client = db
	pp.ParentDB = pp.Client

	err = pp.Client.AutoMigrate(
		&TblDataSource{},
		&TblOrder{},
		&TblQueryRecord{},
	)
	if err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func (pp *PostgresPersistent) Begin() error {
	if pp.Client != pp.ParentDB {
		return repository.ErrTransActionBegin
	}
	tx := pp.Client.Begin()
	pp.Client = tx
	return tx.Error
}

func (pp *PostgresPersistent) Rollback() error {
	if pp.Client == pp.ParentDB {
		return repository.ErrTransActionEnd
	}
	tx := pp.Client.Rollback()
	pp.Client = pp.ParentDB
	return tx.Error
}

func (pp *PostgresPersistent) Commit() error {
	if pp.Client == pp.ParentDB {
		return repository.ErrTransActionEnd
	}
	tx := pp.Client.Commit()
	pp.Client = pp.ParentDB
	return tx.Error
}

func (pp *PostgresPersistent) GetDataSourceById(id string) (model.DataSource, error) {
	var ds model.DataSource
	var table TblDataSource
	tx := pp.Client.Where("ds_id = ?", id).First(&table)
	if tx.Error != nil {
		return model.DataSource{}, wrapError(tx.Error)
	}
	if err := json.Unmarshal([]byte(table.Config), &ds); err != nil {
		return model.DataSource{}, errors.Wrap(err, "")
	}
	repository.DecodePasswd(&ds)
	return ds, nil
}

func (pp *PostgresPersistent) DataSourceExists(id string) bool {
	_, err := pp.GetDataSourceById(id)
	return err == nil
}

func (pp *PostgresPersistent) GetAllDataSources() ([]model.DataSource, error) {
	var tables []TblDataSource
	var sources []model.DataSource
	tx := pp.Client.Order("created_at desc").Find(&tables)
	if tx.Error != nil && tx.Error != gorm.ErrRecordNotFound {
		return nil, errors.Wrap(tx.Error, "")
	}
	for _, table := range tables {
		var ds model.DataSource
		if err := json.Unmarshal([]byte(table.Config), &ds); err != nil {
			return nil, errors.Wrap(err, "")
		}
		repository.DecodePasswd(&ds)
		sources = append(sources, ds)
	}
	return sources, nil
}

func (pp *PostgresPersistent) CreateDataSource(ds model.DataSource) error {
	if _, err := pp.GetDataSourceById(ds.Id); err == nil {
		return repository.ErrRecordExists
	}
	repository.EncodePasswd(&ds)
	config, err := json.Marshal(ds)
	if err != nil {
		return errors.Wrap(err, "")
	}
	table := TblDataSource{
		DsId:   ds.Id,
		DsName: ds.Name,
		Config: string(config),
	}
	tx := pp.Client.Create(&table)
	return wrapError(tx.Error)
}

func (pp *PostgresPersistent) UpdateDataSource(ds model.DataSource) error {
	if _, err := pp.GetDataSourceById(ds.Id); err != nil {
		return repository.ErrRecordNotFound
	}
	repository.EncodePasswd(&ds)
	config, err := json.Marshal(ds)
	if err != nil {
		return errors.Wrap(err, "")
	}
	table := TblDataSource{
		DsId:   ds.Id,
		DsName: ds.Name,
		Config: string(config),
	}
	tx := pp.Client.Model(TblDataSource{}).Where("ds_id = ?", ds.Id).Updates(&table)
	return wrapError(tx.Error)
}

func (pp *PostgresPersistent) DeleteDataSource(id string) error {
	tx := pp.Client.Where("ds_id = ?", id).Unscoped().Delete(&TblDataSource{})
	return wrapError(tx.Error)
}

func (pp *PostgresPersistent) GetOrderById(id string) (model.SqlOrder, error) {
	var order model.SqlOrder
	var table TblOrder
	tx := pp.Client.Where("order_id = ?", id).First(&table)
	if tx.Error != nil {
		return model.SqlOrder{}, wrapError(tx.Error)
	}
	if err := json.Unmarshal([]byte(table.Config), &order); err != nil {
		return model.SqlOrder{}, errors.Wrap(err, "")
	}
	return order, nil
}

func (pp *PostgresPersistent) GetAllOrders() ([]model.SqlOrder, error) {
	var tables []TblOrder
	var orders []model.SqlOrder
	tx := pp.Client.Order("create_time desc").Find(&tables)
	if tx.Error != nil && tx.Error != gorm.ErrRecordNotFound {
		return nil, errors.Wrap(tx.Error, "")
	}
	for _, table := range tables {
		var order model.SqlOrder
		if err := json.Unmarshal([]byte(table.Config), &order); err != nil {
			return nil, errors.Wrap(err, "")
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (pp *PostgresPersistent) CreateOrder(order model.SqlOrder) error {
	if _, err := pp.GetOrderById(order.OrderId); err == nil {
		return repository.ErrRecordExists
	}
	config, err := json.Marshal(order)
	if err != nil {
		return errors.Wrap(err, "")
	}
	table := TblOrder{
		OrderId:      order.OrderId,
		DataSourceId: order.DataSourceId,
		Status:       string(order.Status),
		Config:       string(config),
		CreateTime:   order.CreatedAt,
	}
	tx := pp.Client.Create(&table)
	return wrapError(tx.Error)
}

func (pp *PostgresPersistent) UpdateOrder(order model.SqlOrder) error {
	if _, err := pp.GetOrderById(order.OrderId); err != nil {
		return repository.ErrRecordNotFound
	}
	config, err := json.Marshal(order)
	if err != nil {
		return errors.Wrap(err, "")
	}
	table := TblOrder{
		OrderId:      order.OrderId,
		DataSourceId: order.DataSourceId,
		Status:       string(order.Status),
		Config:       string(config),
	}
	tx := pp.Client.Model(TblOrder{}).Where("order_id = ?", order.OrderId).Updates(&table)
	return wrapError(tx.Error)
}

func (pp *PostgresPersistent) CountOrdersByDataSource(dsId string) (int, error) {
	var count int64
	tx := pp.Client.Model(&TblOrder{}).Where("datasource_id = ?", dsId).Count(&count)
	if tx.Error != nil {
		return 0, errors.Wrap(tx.Error, "")
	}
	return int(count), nil
}

func (pp *PostgresPersistent) CreateQueryRecord(record model.QueryRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "")
	}
	table := TblQueryRecord{
		QueryId:      record.QueryId,
		DataSourceId: record.DataSourceId,
		Record:       string(data),
		CreateTime:   record.CreatedAt,
	}
	tx := pp.Client.Create(&table)
	return wrapError(tx.Error)
}

func (pp *PostgresPersistent) GetQueryHistory(limit int) ([]model.QueryRecord, error) {
	var tables []TblQueryRecord
	var records []model.QueryRecord
	tx := pp.Client.Order("create_time desc")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	tx = tx.Find(&tables)
	if tx.Error != nil && tx.Error != gorm.ErrRecordNotFound {
		return nil, errors.Wrap(tx.Error, "")
	}
	for _, table := range tables {
		var record model.QueryRecord
		if err := json.Unmarshal([]byte(table.Record), &record); err != nil {
			return nil, errors.Wrap(err, "")
		}
		records = append(records, record)
	}
	return records, nil
}

func wrapError(err error) error {
	if err == gorm.ErrRecordNotFound {
		return repository.ErrRecordNotFound
	}
	return err
}
