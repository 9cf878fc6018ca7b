package workbench

import (
	"context"
	"strings"
	"time"

	"github.com/go-basic/uuid"

	"github.com/dataops/sqlman/log"
	"github.com/dataops/sqlman/model"
	"github.com/dataops/sqlman/repository"
	"github.com/dataops/sqlman/service/checker"
	"github.com/dataops/sqlman/service/executor"
	"github.com/dataops/sqlman/service/registry"
)

// readOnlyVerbs are the only statement prefixes the workbench will run.
// Any statement that changes data goes through an order instead.
var readOnlyVerbs = map[string]bool{
	"SELECT":   true,
	"SHOW":     true,
	"DESC":     true,
	"DESCRIBE": true,
	"EXPLAIN":  true,
}

// Workbench runs ad-hoc read-only queries against a registered data
// source. Results are capped at maxRows and never persisted; only a
// history record of the query itself is kept.
type Workbench struct {
	repo         repository.PersistentMgr
	reg          *registry.Registry
	exec         executor.Executor
	maxRows      int
	queryTimeout time.Duration
}

func NewWorkbench(repo repository.PersistentMgr, reg *registry.Registry, exec executor.Executor, maxRows int, queryTimeout time.Duration) *Workbench {
	return &Workbench{
		repo:         repo,
		reg:          reg,
		exec:         exec,
		maxRows:      maxRows,
		queryTimeout: queryTimeout,
	}
}

// classify rejects everything it cannot positively identify as a single
// read-only statement. Unknown verbs fail closed.
func classify(statement string) error {
	statements := checker.SplitStatements(statement)
	if len(statements) == 0 {
		return model.NewFlowError(model.KindValidation, "statement is empty")
	}
	if len(statements) > 1 {
		return model.NewFlowError(model.KindValidation, "workbench accepts a single statement, got %d", len(statements))
	}
	fields := strings.Fields(statements[0])
	verb := strings.ToUpper(fields[0])
	if !readOnlyVerbs[verb] {
		return model.NewFlowError(model.KindValidation, "statement verb %s is not read-only", verb)
	}
	return nil
}

func (w *Workbench) Submit(ctx context.Context, req model.QueryReq) (*model.QueryResult, error) {
	if err := classify(req.Statement); err != nil {
		return nil, err
	}
	ds, err := w.reg.Resolve(req.DataSourceId)
	if err != nil {
		return nil, err
	}
	limit := w.maxRows
	if req.Limit > 0 && req.Limit < w.maxRows {
		limit = req.Limit
	}
	database := req.Database
	if database == "" {
		database = ds.DefaultDatabase
	}

	queryCtx, cancel := context.WithTimeout(ctx, w.queryTimeout)
	defer cancel()
	result, err := w.exec.Query(queryCtx, ds, database, req.Statement, limit)
	if err != nil {
		if kind := model.KindOf(err); kind == model.KindConnection || kind == model.KindTimeout {
			w.reg.MarkUnreachable(ds.Id)
		}
		return nil, err
	}

	record := model.QueryRecord{
		QueryId:      uuid.New(),
		DataSourceId: ds.Id,
		Database:     database,
		Statement:    req.Statement,
		Submitter:    req.Submitter,
		RowCount:     result.RowCount,
		Truncated:    result.Truncated,
		DurationMs:   result.DurationMs,
		CreatedAt:    time.Now(),
	}
	// history is best effort, a failed insert does not fail the query
	if err = w.repo.CreateQueryRecord(record); err != nil {
		log.Logger.Warnf("record query history failed: %v", err)
	}
	return result, nil
}

func (w *Workbench) History(limit int) ([]model.QueryRecord, error) {
	return w.repo.GetQueryHistory(limit)
}
