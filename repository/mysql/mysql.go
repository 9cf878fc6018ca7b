package mysql

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dataops/sqlman/common"
	"github.com/dataops/sqlman/log"
	"github.com/dataops/sqlman/model"
	"github.com/dataops/sqlman/repository"
	"github.com/pkg/errors"
	driver "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"moul.io/zapgorm2"
)

type MysqlConfig struct {
	Host            string `json:"host" yaml:"host"`
	Port            int    `json:"port" yaml:"port"`
	User            string `json:"user" yaml:"user"`
	Password        string `json:"password" yaml:"password"`
	DataBase        string `json:"database" yaml:"database"`
	MaxIdleConns    int    `json:"max_idle_conns" yaml:"max_idle_conns"`
	MaxOpenConns    int    `json:"max_open_conns" yaml:"max_open_conns"`
	ConnMaxIdleTime int    `json:"conn_max_idle_time" yaml:"conn_max_idle_time"`
	ConnMaxLifetime int    `json:"conn_max_lifetime" yaml:"conn_max_lifetime"`
}

func (config *MysqlConfig) Normalize() {
	config.Host = common.GetStringwithDefault(config.Host, "localhost")
	config.Port = common.GetIntegerwithDefault(config.Port, MYSQL_PORT_DEFAULT)
	config.DataBase = common.GetStringwithDefault(config.DataBase, MYSQL_DATABASE_DEFAULT)
	config.MaxIdleConns = common.GetIntegerwithDefault(config.MaxIdleConns, MYSQL_MAX_IDLE_CONNS_DEFAULT)
	config.MaxOpenConns = common.GetIntegerwithDefault(config.MaxOpenConns, MYSQL_MAX_OPEN_CONNS_DEFAULT)
	config.ConnMaxIdleTime = common.GetIntegerwithDefault(config.ConnMaxIdleTime, MYSQL_MAX_IDLE_TIME_DEFAULT)
	config.ConnMaxLifetime = common.GetIntegerwithDefault(config.ConnMaxLifetime, MYSQL_MAX_LIFETIME_DEFAULT)
}

type MysqlPersistent struct {
	Config   MysqlConfig
	Client   *gorm.DB
	ParentDB *gorm.DB
}

func (mp *MysqlPersistent) UnmarshalConfig(configMap map[string]interface{}) interface{} {
	var config MysqlConfig
	data, err := json.Marshal(configMap)
	if err != nil {
		log.Logger.Errorf("marshal mysql configMap failed:%v", err)
		return nil
	}
	if err = json.Unmarshal(data, &config); err != nil {
		log.Logger.Errorf("unmarshal mysql config failed:%v", err)
		return nil
	}
	return config
}

func (mp *MysqlPersistent) Init(config interface{}) error {
	if config == nil {
		config = MysqlConfig{}
	}
	mp.Config = config.(MysqlConfig)
	mp.Config.Normalize()
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		mp.Config.User,
		mp.Config.Password,
		mp.Config.Host,
		mp.Config.Port,
		mp.Config.DataBase)

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

	// set connection pool
	if sqlDB != nil {
		sqlDB.SetMaxIdleConns(mp.Config.MaxIdleConns)
		sqlDB.SetConnMaxIdleTime(time.Second * time.Duration(mp.Config.ConnMaxIdleTime))
		sqlDB.SetMaxOpenConns(mp.Config.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(time.Second * time.Duration(mp.Config.ConnMaxLifetime))
	}
	mp.Client = db
	mp.ParentDB = mp.Client

	//auto create table
	err = mp.Client.Set("gorm:table_options", "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4").AutoMigrate(
		&TblDataSource{},
		&TblOrder{},
		&TblQueryRecord{},
	)
	if err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func (mp *MysqlPersistent) Begin() error {
	if mp.Client != mp.ParentDB {
		return repository.ErrTransActionBegin
	}
	tx := mp.Client.Begin()
	mp.Client = tx
	return tx.Error
}

func (mp *MysqlPersistent) Rollback() error {
	if mp.Client == mp.ParentDB {
		return repository.ErrTransActionEnd
	}
	tx := mp.Client.Rollback()
	mp.Client = mp.ParentDB
	return tx.Error
}

func (mp *MysqlPersistent) Commit() error {
	if mp.Client == mp.ParentDB {
		return repository.ErrTransActionEnd
	}
	tx := mp.Client.Commit()
	mp.Client = mp.ParentDB
	return tx.Error
}

func (mp *MysqlPersistent) GetDataSourceById(id string) (model.DataSource, error) {
	var ds model.DataSource
	var table TblDataSource
	tx := mp.Client.Where("ds_id = ?", id).First(&table)
	if tx.Error != nil {
		return model.DataSource{}, wrapError(tx.Error)
	}
	if err := json.Unmarshal([]byte(table.Config), &ds); err != nil {
		return model.DataSource{}, errors.Wrap(err, "")
	}
	repository.DecodePasswd(&ds)
	return ds, nil
}

func (mp *MysqlPersistent) DataSourceExists(id string) bool {
	_, err := mp.GetDataSourceById(id)
	return err == nil
}

func (mp *MysqlPersistent) GetAllDataSources() ([]model.DataSource, error) {
	var tables []TblDataSource
	var sources []model.DataSource
	tx := mp.Client.Order("created_at desc").Find(&tables)
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

func (mp *MysqlPersistent) CreateDataSource(ds model.DataSource) error {
	if _, err := mp.GetDataSourceById(ds.Id); err == nil {
		//means already exists
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
	tx := mp.Client.Create(&table)
	return wrapError(tx.Error)
}

func (mp *MysqlPersistent) UpdateDataSource(ds model.DataSource) error {
	if _, err := mp.GetDataSourceById(ds.Id); err != nil {
		//means not found in database
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
	tx := mp.Client.Model(TblDataSource{}).Where("ds_id = ?", ds.Id).Updates(&table)
	return wrapError(tx.Error)
}

func (mp *MysqlPersistent) DeleteDataSource(id string) error {
	tx := mp.Client.Where("ds_id = ?", id).Unscoped().Delete(&TblDataSource{})
	return wrapError(tx.Error)
}

func (mp *MysqlPersistent) GetOrderById(id string) (model.SqlOrder, error) {
	var order model.SqlOrder
	var table TblOrder
	tx := mp.Client.Where("order_id = ?", id).First(&table)
	if tx.Error != nil {
		return model.SqlOrder{}, wrapError(tx.Error)
	}
	if err := json.Unmarshal([]byte(table.Config), &order); err != nil {
		return model.SqlOrder{}, errors.Wrap(err, "")
	}
	return order, nil
}

func (mp *MysqlPersistent) GetAllOrders() ([]model.SqlOrder, error) {
	var tables []TblOrder
	var orders []model.SqlOrder
	tx := mp.Client.Order("create_time desc").Find(&tables)
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

func (mp *MysqlPersistent) CreateOrder(order model.SqlOrder) error {
	if _, err := mp.GetOrderById(order.OrderId); err == nil {
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
	tx := mp.Client.Create(&table)
	return wrapError(tx.Error)
}

func (mp *MysqlPersistent) UpdateOrder(order model.SqlOrder) error {
	if _, err := mp.GetOrderById(order.OrderId); err != nil {
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
	tx := mp.Client.Model(TblOrder{}).Where("order_id = ?", order.OrderId).Updates(&table)
	return wrapError(tx.Error)
}

func (mp *MysqlPersistent) CountOrdersByDataSource(dsId string) (int, error) {
	var count int64
	tx := mp.Client.Model(&TblOrder{}).Where("datasource_id = ?", dsId).Count(&count)
	if tx.Error != nil {
		return 0, errors.Wrap(tx.Error, "")
	}
	return int(count), nil
}

func (mp *MysqlPersistent) CreateQueryRecord(record model.QueryRecord) error {
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
	tx := mp.Client.Create(&table)
	return wrapError(tx.Error)
}

func (mp *MysqlPersistent) GetQueryHistory(limit int) ([]model.QueryRecord, error) {
	var tables []TblQueryRecord
	var records []model.QueryRecord
	tx := mp.Client.Order("create_time desc")
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
