package postgres

import "github.com/dataops/sqlman/common"

type PostgresConfig struct {
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

func (config *PostgresConfig) Normalize() {
	config.Host = common.GetStringwithDefault(config.Host, "localhost")
	config.Port = common.GetIntegerwithDefault(config.Port, POSTGRES_PORT_DEFAULT)
	config.DataBase = common.GetStringwithDefault(config.DataBase, POSTGRES_DATABASE_DEFAULT)
	config.MaxIdleConns = common.GetIntegerwithDefault(config.MaxIdleConns, POSTGRES_MAX_IDLE_CONNS_DEFAULT)
	config.MaxOpenConns = common.GetIntegerwithDefault(config.MaxOpenConns, POSTGRES_MAX_OPEN_CONNS_DEFAULT)
	config.ConnMaxIdleTime = common.GetIntegerwithDefault(config.ConnMaxIdleTime, POSTGRES_MAX_IDLE_TIME_DEFAULT)
	config.ConnMaxLifetime = common.GetIntegerwithDefault(config.ConnMaxLifetime, POSTGRES_MAX_LIFETIME_DEFAULT)
}
