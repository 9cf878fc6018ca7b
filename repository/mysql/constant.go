package mysql

const (
	MySQLPersistentName          string = "mysql"
	MYSQL_PORT_DEFAULT           int    = 3306
	MYSQL_DATABASE_DEFAULT       string = "sqlman_db"
	MYSQL_MAX_IDLE_CONNS_DEFAULT int    = 10
	MYSQL_MAX_OPEN_CONNS_DEFAULT int    = 100
	MYSQL_MAX_LIFETIME_DEFAULT   int    = 3600
	MYSQL_MAX_IDLE_TIME_DEFAULT  int    = 10

	MYSQL_TBL_DATASOURCE   string = "tbl_datasource"
	MYSQL_TBL_ORDER        string = "tbl_order"
	MYSQL_TBL_QUERY_RECORD string = "tbl_query_record"
)
