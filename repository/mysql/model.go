package mysql

import (
	"time"

	"gorm.io/gorm"
)

type TblDataSource struct {
	gorm.Model
	DsId   string `gorm:"index:idx_dsid,unique; column:ds_id"`
	DsName string `gorm:"index:idx_name,unique; column:ds_name"`
	Config string `gorm:"type:text; column:config"`
}

func (v TblDataSource) TableName() string {
	return MYSQL_TBL_DATASOURCE
}

type TblOrder struct {
	OrderId      string    `gorm:"primaryKey; column:order_id"`
	DataSourceId string    `gorm:"index:idx_ds; column:datasource_id"`
	Status       string    `gorm:"column:status"`
	Config       string    `gorm:"type:text; column:config"`
	CreateTime   time.Time `gorm:"column:create_time"`
}

func (v TblOrder) TableName() string {
	return MYSQL_TBL_ORDER
}

type TblQueryRecord struct {
	QueryId      string    `gorm:"primaryKey; column:query_id"`
	DataSourceId string    `gorm:"index:idx_ds; column:datasource_id"`
	Record       string    `gorm:"type:text; column:record"`
	CreateTime   time.Time `gorm:"column:create_time"`
}

func (v TblQueryRecord) TableName() string {
	return MYSQL_TBL_QUERY_RECORD
}
