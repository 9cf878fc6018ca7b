package local

import "github.com/dataops/sqlman/model"

type PersistentData struct {
	DataSources map[string]model.DataSource `json:"datasources" yaml:"datasources"`
	Orders      map[string]model.SqlOrder   `json:"orders" yaml:"orders"`
	Queries     []model.QueryRecord         `json:"queries" yaml:"queries"`
}
