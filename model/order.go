package model

import "time"

type OrderStatus string

const (
	OrderStatusDraft         OrderStatus = "draft"
	OrderStatusPendingReview OrderStatus = "pending_review"
	OrderStatusApproved      OrderStatus = "approved"
	OrderStatusRejected      OrderStatus = "rejected"
	OrderStatusExecuting     OrderStatus = "executing"
	OrderStatusSucceeded     OrderStatus = "succeeded"
	OrderStatusFailed        OrderStatus = "failed"
)

// Terminal states have no outgoing transitions. A corrective action needs
// a new order, never a reopen.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusRejected || s == OrderStatusSucceeded || s == OrderStatusFailed
}

type OrderEvent string

const (
	OrderEventSubmit      OrderEvent = "submit"
	OrderEventApprove     OrderEvent = "approve"
	OrderEventReject      OrderEvent = "reject"
	OrderEventBeginExec   OrderEvent = "begin_execution"
	OrderEventExecSuccess OrderEvent = "execution_succeeded"
	OrderEventExecFailure OrderEvent = "execution_failed"
)

const (
	SqlTypeDDL string = "DDL"
	SqlTypeDML string = "DML"
)

// StmtResult records the outcome of one statement of the batch. On a
// non-transactional engine the list may be partial: every statement that
// ran before the failing one keeps its entry.
type StmtResult struct {
	Index        int    `json:"index" yaml:"index"`
	Statement    string `json:"statement" yaml:"statement"`
	AffectedRows int64  `json:"affectedRows" yaml:"affected_rows"`
	DurationMs   int64  `json:"durationMs" yaml:"duration_ms"`
	Error        string `json:"error,omitempty" yaml:"error,omitempty"`
}

type SqlOrder struct {
	OrderId       string       `json:"orderId" yaml:"order_id"`
	Title         string       `json:"title" yaml:"title"`
	Remark        string       `json:"remark" yaml:"remark"`
	DataSourceId  string       `json:"dataSourceId" yaml:"datasource_id"`
	Database      string       `json:"database" yaml:"database"`
	SqlType       string       `json:"sqlType" yaml:"sql_type"`
	Statements    []string     `json:"statements" yaml:"statements"`
	Submitter     string       `json:"submitter" yaml:"submitter"`
	Reviewer      string       `json:"reviewer" yaml:"reviewer"`
	ReviewComment string       `json:"reviewComment" yaml:"review_comment"`
	Status        OrderStatus  `json:"status" yaml:"status"`
	CheckResult   *CheckResult `json:"checkResult,omitempty" yaml:"check_result,omitempty"`
	StmtResults   []StmtResult `json:"stmtResults,omitempty" yaml:"stmt_results,omitempty"`
	AffectedRows  int64        `json:"affectedRows" yaml:"affected_rows"`
	DurationMs    int64        `json:"durationMs" yaml:"duration_ms"`
	CreatedAt     time.Time    `json:"createdAt" yaml:"created_at"`
	ReviewedAt    *time.Time   `json:"reviewedAt,omitempty" yaml:"reviewed_at,omitempty"`
	ExecutedAt    *time.Time   `json:"executedAt,omitempty" yaml:"executed_at,omitempty"`
}

type CreateOrderReq struct {
	Title        string `json:"title"`
	Remark       string `json:"remark"`
	DataSourceId string `json:"dataSourceId"`
	Database     string `json:"database"`
	SqlType      string `json:"sqlType"`
	SqlContent   string `json:"sqlContent"`
	Submitter    string `json:"submitter"`
}

type ReviewReq struct {
	Reviewer string `json:"reviewer"`
	Comment  string `json:"comment"`
}
