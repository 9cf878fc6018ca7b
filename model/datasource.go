package model

import "time"

const (
	EngineMySQL      string = "mysql"
	EnginePostgres   string = "postgres"
	EngineClickHouse string = "clickhouse"
	EngineSQLServer  string = "sqlserver"

	ReachabilityUnknown     string = "unknown"
	ReachabilityReachable   string = "reachable"
	ReachabilityUnreachable string = "unreachable"
)

var EngineDefaultPort = map[string]int{
	EngineMySQL:      3306,
	EnginePostgres:   5432,
	EngineClickHouse: 9000,
	EngineSQLServer:  1433,
}

// TransactionalEngines lists engine kinds whose statement batches run as
// one transaction. The others execute statement by statement and halt at
// the first failure.
var TransactionalEngines = map[string]bool{
	EngineMySQL:      true,
	EnginePostgres:   true,
	EngineSQLServer:  true,
	EngineClickHouse: false,
}

type DataSource struct {
	Id              string    `json:"id" yaml:"id"`
	Name            string    `json:"name" yaml:"name"`
	Kind            string    `json:"kind" yaml:"kind"`
	Host            string    `json:"host" yaml:"host"`
	Port            int       `json:"port" yaml:"port"`
	User            string    `json:"user" yaml:"user"`
	Password        string    `json:"password,omitempty" yaml:"password"`
	Charset         string    `json:"charset" yaml:"charset"`
	DefaultDatabase string    `json:"defaultDatabase" yaml:"default_database"`
	Remark          string    `json:"remark" yaml:"remark"`
	Reachability    string    `json:"reachability" yaml:"reachability"`
	CreatedAt       time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" yaml:"updated_at"`
}

// Masked strips the stored credential before the record crosses the API
// boundary. Orders and list responses only ever carry the datasource id.
func (ds DataSource) Masked() DataSource {
	ds.Password = ""
	return ds
}

type DataSourceReq struct {
	Name            string `json:"name"`
	Kind            string `json:"kind"`
	Host            string `json:"host"`
	Port            int    `json:"port"`
	User            string `json:"user"`
	Password        string `json:"password"`
	Charset         string `json:"charset"`
	DefaultDatabase string `json:"defaultDatabase"`
	Remark          string `json:"remark"`
}

type ReachabilityResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ElapsedMs int64  `json:"elapsedMs"`
}
