package executor

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
	"github.com/pkg/errors"

	"github.com/dataops/sqlman/common"
	"github.com/dataops/sqlman/log"
	"github.com/dataops/sqlman/model"
)

// Executor is the boundary to the managed database engines. The registry,
// workflow and workbench consume it; tests substitute a fake.
type Executor interface {
	TestConnection(ctx context.Context, ds model.DataSource) error
	ListDatabases(ctx context.Context, ds model.DataSource) ([]string, error)
	ExecuteBatch(ctx context.Context, ds model.DataSource, database string, statements []string) ([]model.StmtResult, error)
	Query(ctx context.Context, ds model.DataSource, database, statement string, limit int) (*model.QueryResult, error)
}

// Transactional reports whether the engine runs a statement batch as one
// transaction. Non-transactional engines execute statement by statement
// and halt at the first failure, keeping the partial results.
func Transactional(kind string) bool {
	return model.TransactionalEngines[kind]
}

type SqlExecutor struct{}

func NewSqlExecutor() *SqlExecutor {
	return &SqlExecutor{}
}

func buildDSN(ds model.DataSource, database string) (driverName, dsn string, err error) {
	user := url.QueryEscape(ds.User)
	pass := url.QueryEscape(ds.Password)
	switch ds.Kind {
	case model.EngineMySQL:
		charset := common.GetStringwithDefault(ds.Charset, "utf8mb4")
		return "mysql", fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
			ds.User, ds.Password, ds.Host, ds.Port, database, charset), nil
	case model.EnginePostgres:
		return "pgx", fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			user, pass, ds.Host, ds.Port, database), nil
	case model.EngineClickHouse:
		return "clickhouse", fmt.Sprintf("clickhouse://%s:%s@%s:%d/%s",
			user, pass, ds.Host, ds.Port, database), nil
	case model.EngineSQLServer:
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%d", user, pass, ds.Host, ds.Port)
		if database != "" {
			dsn += "?database=" + url.QueryEscape(database)
		}
		return "sqlserver", dsn, nil
	default:
		return "", "", model.NewFlowError(model.KindValidation, "unsupported engine kind %s", ds.Kind)
	}
}

func (e *SqlExecutor) open(ctx context.Context, ds model.DataSource, database string) (*sql.DB, error) {
	driverName, dsn, err := buildDSN(ds, database)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, model.NewFlowError(model.KindConnection, "open %s connection: %v", ds.Kind, err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(0)
	db.SetConnMaxIdleTime(10 * time.Second)
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, connectError(ctx, ds, err)
	}
	return db, nil
}

func connectError(ctx context.Context, ds model.DataSource, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return model.NewFlowError(model.KindTimeout, "connect %s:%d timed out", ds.Host, ds.Port)
	}
	return model.NewFlowError(model.KindConnection, "connect %s:%d: %v", ds.Host, ds.Port, err)
}

func (e *SqlExecutor) TestConnection(ctx context.Context, ds model.DataSource) error {
	db, err := e.open(ctx, ds, "")
	if err != nil {
		return err
	}
	return db.Close()
}

var systemDatabases = map[string][]string{
	model.EngineMySQL:      {"information_schema", "mysql", "performance_schema", "sys"},
	model.EnginePostgres:   {"template0", "template1"},
	model.EngineClickHouse: {"system", "INFORMATION_SCHEMA", "information_schema"},
	model.EngineSQLServer:  {"master", "tempdb", "model", "msdb"},
}

var listDatabasesQuery = map[string]string{
	model.EngineMySQL:      "SHOW DATABASES",
	model.EnginePostgres:   "SELECT datname FROM pg_database WHERE datistemplate = false ORDER BY datname",
	model.EngineClickHouse: "SHOW DATABASES",
	model.EngineSQLServer:  "SELECT name FROM sys.databases ORDER BY name",
}

func (e *SqlExecutor) ListDatabases(ctx context.Context, ds model.DataSource) ([]string, error) {
	db, err := e.open(ctx, ds, "")
	if err != nil {
		return nil, err
	}
	defer db.Close()

	query, ok := listDatabasesQuery[ds.Kind]
	if !ok {
		return nil, model.NewFlowError(model.KindValidation, "unsupported engine kind %s", ds.Kind)
	}
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, connectError(ctx, ds, err)
	}
	defer rows.Close()

	var databases []string
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "")
		}
		if common.ArraySearch(name, systemDatabases[ds.Kind]) {
			continue
		}
		databases = append(databases, name)
	}
	if err = rows.Err(); err != nil {
		return nil, connectError(ctx, ds, err)
	}
	return databases, nil
}

// ExecuteBatch runs the statements in order against one session. On a
// transactional engine the whole batch commits or rolls back atomically;
// otherwise every statement's outcome is recorded and execution halts at
// the first failure. The returned results are valid even when err != nil.
func (e *SqlExecutor) ExecuteBatch(ctx context.Context, ds model.DataSource, database string, statements []string) ([]model.StmtResult, error) {
	db, err := e.open(ctx, ds, database)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if Transactional(ds.Kind) {
		return e.executeInTransaction(ctx, db, statements)
	}
	return e.executePerStatement(ctx, db, statements)
}

func (e *SqlExecutor) executeInTransaction(ctx context.Context, db *sql.DB, statements []string) ([]model.StmtResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, model.NewFlowError(model.KindConnection, "begin transaction: %v", err)
	}
	var results []model.StmtResult
	for i, stmt := range statements {
		start := time.Now()
		res, err := tx.ExecContext(ctx, stmt)
		elapsed := time.Since(start).Milliseconds()
		if err != nil {
			_ = tx.Rollback()
			results = append(results, model.StmtResult{
				Index:      i,
				Statement:  stmt,
				DurationMs: elapsed,
				Error:      err.Error(),
			})
			return results, execError(ctx, i, err)
		}
		affected, _ := res.RowsAffected()
		results = append(results, model.StmtResult{
			Index:        i,
			Statement:    stmt,
			AffectedRows: affected,
			DurationMs:   elapsed,
		})
	}
	if err = tx.Commit(); err != nil {
		return results, model.NewFlowError(model.KindExecution, "commit: %v", err)
	}
	return results, nil
}

func (e *SqlExecutor) executePerStatement(ctx context.Context, db *sql.DB, statements []string) ([]model.StmtResult, error) {
	var results []model.StmtResult
	for i, stmt := range statements {
		start := time.Now()
		res, err := db.ExecContext(ctx, stmt)
		elapsed := time.Since(start).Milliseconds()
		if err != nil {
			results = append(results, model.StmtResult{
				Index:      i,
				Statement:  stmt,
				DurationMs: elapsed,
				Error:      err.Error(),
			})
			// halt here, never skip ahead to the remaining statements
			return results, execError(ctx, i, err)
		}
		affected, _ := res.RowsAffected()
		results = append(results, model.StmtResult{
			Index:        i,
			Statement:    stmt,
			AffectedRows: affected,
			DurationMs:   elapsed,
		})
	}
	return results, nil
}

func execError(ctx context.Context, index int, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return model.NewFlowError(model.KindTimeout, "statement #%d timed out", index+1)
	}
	return model.NewFlowError(model.KindExecution, "statement #%d failed: %v", index+1, err)
}

func (e *SqlExecutor) Query(ctx context.Context, ds model.DataSource, database, statement string, limit int) (*model.QueryResult, error) {
	db, err := e.open(ctx, ds, database)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	start := time.Now()
	rows, err := db.QueryContext(ctx, statement)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, model.NewFlowError(model.KindTimeout, "query timed out")
		}
		return nil, model.NewFlowError(model.KindExecution, "query failed: %v", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	result := &model.QueryResult{Columns: columns}
	values := make([]interface{}, len(columns))
	scanArgs := make([]interface{}, len(columns))
	for i := range values {
		scanArgs[i] = &values[i]
	}
	for rows.Next() {
		// the ceiling is applied here so dialects without a native
		// limit clause still get a bounded result set
		if limit > 0 && result.RowCount >= limit {
			result.Truncated = true
			break
		}
		if err = rows.Scan(scanArgs...); err != nil {
			return nil, errors.Wrap(err, "")
		}
		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result.Rows = append(result.Rows, row)
		result.RowCount++
	}
	if err = rows.Err(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, model.NewFlowError(model.KindTimeout, "query timed out")
		}
		return nil, model.NewFlowError(model.KindExecution, "query failed: %v", err)
	}
	result.DurationMs = time.Since(start).Milliseconds()
	log.Logger.Debugf("query returned %d rows in %dms, truncated:%v", result.RowCount, result.DurationMs, result.Truncated)
	return result, nil
}
