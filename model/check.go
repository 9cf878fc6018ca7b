package model

const (
	CheckLevelError   string = "error"
	CheckLevelWarning string = "warning"
	CheckLevelInfo    string = "info"
)

type CheckItem struct {
	Level     string `json:"level" yaml:"level"`
	Rule      string `json:"rule" yaml:"rule"`
	Message   string `json:"message" yaml:"message"`
	StmtIndex int    `json:"stmtIndex" yaml:"stmt_index"`
}

// CheckResult is advisory: a failing verdict blocks submission only when
// check enforcement is switched on.
type CheckResult struct {
	Passed bool        `json:"passed" yaml:"passed"`
	Items  []CheckItem `json:"items" yaml:"items"`
}

type CheckReq struct {
	SqlContent string `json:"sqlContent"`
	SqlType    string `json:"sqlType"`
}
