package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/go-basic/uuid"

	"github.com/dataops/sqlman/log"
	"github.com/dataops/sqlman/model"
	"github.com/dataops/sqlman/repository"
	"github.com/dataops/sqlman/service/checker"
	"github.com/dataops/sqlman/service/executor"
	"github.com/dataops/sqlman/service/registry"
)

// transitions is the whole state machine. Anything not in this table is
// refused with a conflict, so a terminal order can never move again.
var transitions = map[model.OrderStatus]map[model.OrderEvent]model.OrderStatus{
	model.OrderStatusDraft: {
		model.OrderEventSubmit: model.OrderStatusPendingReview,
	},
	model.OrderStatusPendingReview: {
		model.OrderEventApprove: model.OrderStatusApproved,
		model.OrderEventReject:  model.OrderStatusRejected,
	},
	model.OrderStatusApproved: {
		model.OrderEventBeginExec: model.OrderStatusExecuting,
	},
	model.OrderStatusExecuting: {
		model.OrderEventExecSuccess: model.OrderStatusSucceeded,
		model.OrderEventExecFailure: model.OrderStatusFailed,
	},
}

func nextStatus(current model.OrderStatus, event model.OrderEvent) (model.OrderStatus, error) {
	if next, ok := transitions[current][event]; ok {
		return next, nil
	}
	return "", model.NewFlowError(model.KindConflict, "order in state %s does not accept %s", current, event)
}

// Engine drives a SQL order from draft to its terminal state. Review and
// execution are separate transitions: a crash after approval leaves the
// order in approved, inspectable and resumable, never half-executed.
type Engine struct {
	repo         repository.PersistentMgr
	reg          *registry.Registry
	checker      *checker.Checker
	exec         executor.Executor
	enforceCheck bool
	execTimeout  time.Duration
	locks        sync.Map
}

func NewEngine(repo repository.PersistentMgr, reg *registry.Registry, chk *checker.Checker, exec executor.Executor, enforceCheck bool, execTimeout time.Duration) *Engine {
	return &Engine{
		repo:         repo,
		reg:          reg,
		checker:      chk,
		exec:         exec,
		enforceCheck: enforceCheck,
		execTimeout:  execTimeout,
	}
}

// lockOrder serializes transitions per order id. Transitions on distinct
// orders proceed independently.
func (e *Engine) lockOrder(id string) func() {
	lock, _ := e.locks.LoadOrStore(id, &sync.Mutex{})
	lock.(*sync.Mutex).Lock()
	return lock.(*sync.Mutex).Unlock
}

func (e *Engine) Create(req model.CreateOrderReq) (model.SqlOrder, error) {
	if req.Title == "" {
		return model.SqlOrder{}, model.NewFlowError(model.KindValidation, "order title is empty")
	}
	statements := checker.SplitStatements(req.SqlContent)
	if len(statements) == 0 {
		return model.SqlOrder{}, model.NewFlowError(model.KindValidation, "statement batch is empty")
	}
	if !e.repo.DataSourceExists(req.DataSourceId) {
		return model.SqlOrder{}, model.NewFlowError(model.KindNotFound, "data source %s not found", req.DataSourceId)
	}
	sqlType := req.SqlType
	if sqlType != model.SqlTypeDDL {
		sqlType = model.SqlTypeDML
	}

	check := e.checker.Check(statements, sqlType)
	order := model.SqlOrder{
		OrderId:      uuid.New(),
		Title:        req.Title,
		Remark:       req.Remark,
		DataSourceId: req.DataSourceId,
		Database:     req.Database,
		SqlType:      sqlType,
		Statements:   statements,
		Submitter:    req.Submitter,
		Status:       model.OrderStatusDraft,
		CheckResult:  &check,
		CreatedAt:    time.Now(),
	}
	if err := e.repo.CreateOrder(order); err != nil {
		return model.SqlOrder{}, err
	}
	return order, nil
}

func (e *Engine) Get(id string) (model.SqlOrder, error) {
	order, err := e.repo.GetOrderById(id)
	if err != nil {
		if err == repository.ErrRecordNotFound {
			return model.SqlOrder{}, model.NewFlowError(model.KindNotFound, "order %s not found", id)
		}
		return model.SqlOrder{}, err
	}
	return order, nil
}

func (e *Engine) List() ([]model.SqlOrder, error) {
	return e.repo.GetAllOrders()
}

func (e *Engine) Submit(id string) (model.SqlOrder, error) {
	defer e.lockOrder(id)()

	order, err := e.Get(id)
	if err != nil {
		return model.SqlOrder{}, err
	}
	next, err := nextStatus(order.Status, model.OrderEventSubmit)
	if err != nil {
		return model.SqlOrder{}, err
	}
	if len(order.Statements) == 0 {
		return model.SqlOrder{}, model.NewFlowError(model.KindValidation, "statement batch is empty")
	}
	if !e.repo.DataSourceExists(order.DataSourceId) {
		return model.SqlOrder{}, model.NewFlowError(model.KindNotFound, "data source %s not found", order.DataSourceId)
	}
	if e.enforceCheck && order.CheckResult != nil && !order.CheckResult.Passed {
		return model.SqlOrder{}, model.NewFlowErrorWithDetails(model.KindValidation,
			order.CheckResult.Items, "static check not passed and enforcement is on")
	}

	order.Status = next
	if err = e.repo.UpdateOrder(order); err != nil {
		return model.SqlOrder{}, err
	}
	return order, nil
}

func (e *Engine) Approve(id string, req model.ReviewReq) (model.SqlOrder, error) {
	defer e.lockOrder(id)()

	order, err := e.Get(id)
	if err != nil {
		return model.SqlOrder{}, err
	}
	next, err := nextStatus(order.Status, model.OrderEventApprove)
	if err != nil {
		return model.SqlOrder{}, err
	}
	if req.Reviewer == "" {
		return model.SqlOrder{}, model.NewFlowError(model.KindValidation, "reviewer is empty")
	}
	if req.Reviewer == order.Submitter {
		return model.SqlOrder{}, model.NewFlowError(model.KindConflict, "submitter %s cannot approve their own order", req.Reviewer)
	}

	now := time.Now()
	order.Status = next
	order.Reviewer = req.Reviewer
	order.ReviewComment = req.Comment
	order.ReviewedAt = &now
	if err = e.repo.UpdateOrder(order); err != nil {
		return model.SqlOrder{}, err
	}
	return order, nil
}

func (e *Engine) Reject(id string, req model.ReviewReq) (model.SqlOrder, error) {
	defer e.lockOrder(id)()

	order, err := e.Get(id)
	if err != nil {
		return model.SqlOrder{}, err
	}
	next, err := nextStatus(order.Status, model.OrderEventReject)
	if err != nil {
		return model.SqlOrder{}, err
	}
	if req.Reviewer == "" {
		return model.SqlOrder{}, model.NewFlowError(model.KindValidation, "reviewer is empty")
	}
	if req.Comment == "" {
		return model.SqlOrder{}, model.NewFlowError(model.KindValidation, "a rejection needs a comment")
	}

	now := time.Now()
	order.Status = next
	order.Reviewer = req.Reviewer
	order.ReviewComment = req.Comment
	order.ReviewedAt = &now
	if err = e.repo.UpdateOrder(order); err != nil {
		return model.SqlOrder{}, err
	}
	return order, nil
}

// Execute runs an approved order against its data source. The order lock
// is held for the whole run, so of two concurrent calls exactly one wins
// the approved->executing transition and the other gets a conflict. The
// execution outcome lands in the order itself: succeeded, or failed with
// the per-statement results gathered so far. Executing is never the
// state the order is left in.
func (e *Engine) Execute(ctx context.Context, id string) (model.SqlOrder, error) {
	defer e.lockOrder(id)()

	order, err := e.Get(id)
	if err != nil {
		return model.SqlOrder{}, err
	}
	next, err := nextStatus(order.Status, model.OrderEventBeginExec)
	if err != nil {
		return model.SqlOrder{}, err
	}
	ds, err := e.reg.Resolve(order.DataSourceId)
	if err != nil {
		return model.SqlOrder{}, err
	}

	order.Status = next
	if err = e.repo.UpdateOrder(order); err != nil {
		return model.SqlOrder{}, err
	}
	log.Logger.Infof("order %s executing %d statement(s) on %s(%s)", order.OrderId, len(order.Statements), ds.Name, ds.Kind)

	database := order.Database
	if database == "" {
		database = ds.DefaultDatabase
	}
	execCtx, cancel := context.WithTimeout(ctx, e.execTimeout)
	defer cancel()

	start := time.Now()
	results, execErr := e.exec.ExecuteBatch(execCtx, ds, database, order.Statements)

	order.StmtResults = results
	order.DurationMs = time.Since(start).Milliseconds()
	order.AffectedRows = 0
	for _, result := range results {
		order.AffectedRows += result.AffectedRows
	}
	now := time.Now()
	order.ExecutedAt = &now
	if execErr != nil {
		order.Status, _ = nextStatus(model.OrderStatusExecuting, model.OrderEventExecFailure)
		if kind := model.KindOf(execErr); kind == model.KindConnection || kind == model.KindTimeout {
			e.reg.MarkUnreachable(ds.Id)
		}
		log.Logger.Errorf("order %s failed: %v", order.OrderId, execErr)
	} else {
		order.Status, _ = nextStatus(model.OrderStatusExecuting, model.OrderEventExecSuccess)
		log.Logger.Infof("order %s succeeded, %d row(s) affected in %dms", order.OrderId, order.AffectedRows, order.DurationMs)
	}
	if err = e.repo.UpdateOrder(order); err != nil {
		return model.SqlOrder{}, err
	}
	return order, nil
}
