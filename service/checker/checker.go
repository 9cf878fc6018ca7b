package checker

import (
	"fmt"
	"regexp"
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/dataops/sqlman/model"
)

const maxStatementLength = 10000

var (
	selectStarRegex      = regexp.MustCompile(`\bSELECT\s+\*`)
	insertNoColumnsRegex = regexp.MustCompile(`INSERT\s+INTO\s+\S+\s+VALUES`)
	createTableRegex     = regexp.MustCompile(`(?i)CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?[` + "`" + `"]?(\w+)[` + "`" + `"]?`)
	tableNameRegex       = regexp.MustCompile(`(?i)^[a-z][a-z0-9_]*$`)
	trailingCommentRegex = regexp.MustCompile(`;\s*--`)
	blockCommentRegex    = regexp.MustCompile(`/\*.*\*/`)
)

// Checker runs the static rule set against a statement batch. It holds no
// state and never mutates anything, so a single instance serves all
// callers concurrently.
type Checker struct{}

func NewChecker() *Checker {
	return &Checker{}
}

func (c *Checker) Check(statements []string, sqlType string) model.CheckResult {
	var items []model.CheckItem
	for idx, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		items = append(items, checkStatement(idx, stmt, sqlType)...)
	}

	result := model.CheckResult{Items: items}
	result.Passed = true
	for _, item := range items {
		if item.Level == model.CheckLevelError {
			result.Passed = false
			break
		}
	}
	if len(items) == 0 {
		result.Items = []model.CheckItem{{
			Level:   model.CheckLevelInfo,
			Rule:    "ALL_PASSED",
			Message: "all checks passed",
		}}
	}
	return result
}

func checkStatement(idx int, stmt, sqlType string) []model.CheckItem {
	var items []model.CheckItem
	upper := strings.ToUpper(stmt)
	no := idx + 1

	add := func(level, rule, format string, args ...interface{}) {
		items = append(items, model.CheckItem{
			Level:     level,
			Rule:      rule,
			Message:   fmt.Sprintf("statement #%d: ", no) + fmt.Sprintf(format, args...),
			StmtIndex: idx,
		})
	}

	if strings.HasPrefix(upper, "DELETE") && !strings.Contains(upper, "WHERE") {
		add(model.CheckLevelError, "NO_WHERE_DELETE", "DELETE without WHERE may wipe the whole table")
	}
	if strings.HasPrefix(upper, "UPDATE") && !strings.Contains(upper, "WHERE") {
		add(model.CheckLevelError, "NO_WHERE_UPDATE", "UPDATE without WHERE may rewrite the whole table")
	}
	if selectStarRegex.MatchString(upper) {
		add(model.CheckLevelWarning, "SELECT_STAR", "name the columns instead of SELECT *")
	}
	if strings.HasPrefix(upper, "INSERT") && insertNoColumnsRegex.MatchString(upper) {
		add(model.CheckLevelWarning, "INSERT_NO_COLUMNS", "INSERT should name its target columns")
	}
	if strings.HasPrefix(upper, "TRUNCATE") {
		add(model.CheckLevelError, "TRUNCATE_TABLE", "TRUNCATE TABLE is too destructive, use DELETE with WHERE")
	}
	if sqlType == model.SqlTypeDML && strings.HasPrefix(upper, "DROP") {
		add(model.CheckLevelError, "DROP_IN_DML", "DROP is not allowed in a DML order, submit a DDL order")
	}
	if sqlType == model.SqlTypeDDL && strings.HasPrefix(upper, "CREATE TABLE") {
		if match := createTableRegex.FindStringSubmatch(stmt); match != nil {
			if !tableNameRegex.MatchString(match[1]) {
				add(model.CheckLevelWarning, "TABLE_NAME_CONVENTION",
					"table name %q should start with a letter and use lowercase with underscores", match[1])
			}
		}
	}
	if len(stmt) > maxStatementLength {
		add(model.CheckLevelWarning, "SQL_TOO_LONG", "statement longer than %d characters, consider splitting", maxStatementLength)
	}
	if trailingCommentRegex.MatchString(stmt) || blockCommentRegex.MatchString(stmt) {
		add(model.CheckLevelInfo, "COMMENT_PATTERN", "comment pattern detected, confirm it is intended")
	}
	for _, literal := range stringLiterals(stmt) {
		if isSQLi, fingerprint := libinjection.IsSQLi(literal); isSQLi {
			add(model.CheckLevelWarning, "INJECTION_PATTERN",
				"string literal matches injection fingerprint %s", string(fingerprint))
			break
		}
	}
	return items
}
