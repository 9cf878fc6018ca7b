package postgres

const (
	PostgresPersistentName          string = "postgres"
	POSTGRES_PORT_DEFAULT           int    = 5432
	POSTGRES_DATABASE_DEFAULT       string = "sqlman_db"
	POSTGRES_MAX_IDLE_CONNS_DEFAULT int    = 10
	POSTGRES_MAX_OPEN_CONNS_DEFAULT int    = 100
	POSTGRES_MAX_LIFETIME_DEFAULT   int    = 3600
	POSTGRES_MAX_IDLE_TIME_DEFAULT  int    = 10

	POSTGRES_TBL_DATASOURCE   string = "tbl_datasource"
	POSTGRES_TBL_ORDER        string = "tbl_order"
	POSTGRES_TBL_QUERY_RECORD string = "tbl_query_record"
)
