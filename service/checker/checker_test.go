package checker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dataops/sqlman/model"
)

func TestSplitStatements(t *testing.T) {
	statements := SplitStatements("SELECT 1; SELECT 2;\n SELECT 3")
	assert.Equal(t, []string{"SELECT 1", "SELECT 2", "SELECT 3"}, statements)

	statements = SplitStatements("INSERT INTO t (name) VALUES ('a;b'); DELETE FROM t WHERE name = 'a;b'")
	assert.Len(t, statements, 2)
	assert.Equal(t, "INSERT INTO t (name) VALUES ('a;b')", statements[0])

	statements = SplitStatements(`SELECT ";" FROM t`)
	assert.Len(t, statements, 1)

	assert.Empty(t, SplitStatements("  ;;  ;\n"))
	assert.Empty(t, SplitStatements(""))
}

func TestStringLiterals(t *testing.T) {
	literals := stringLiterals("SELECT * FROM t WHERE a = 'x' AND b = 'y'")
	assert.Equal(t, []string{"x", "y"}, literals)
	assert.Empty(t, stringLiterals("SELECT 1"))
}

func rules(result model.CheckResult) []string {
	var out []string
	for _, item := range result.Items {
		out = append(out, item.Rule)
	}
	return out
}

func TestCheckDangerousStatements(t *testing.T) {
	chk := NewChecker()

	result := chk.Check([]string{"DELETE FROM users"}, model.SqlTypeDML)
	assert.False(t, result.Passed)
	assert.Contains(t, rules(result), "NO_WHERE_DELETE")

	result = chk.Check([]string{"UPDATE users SET active = 0"}, model.SqlTypeDML)
	assert.False(t, result.Passed)
	assert.Contains(t, rules(result), "NO_WHERE_UPDATE")

	result = chk.Check([]string{"TRUNCATE TABLE users"}, model.SqlTypeDML)
	assert.False(t, result.Passed)
	assert.Contains(t, rules(result), "TRUNCATE_TABLE")

	result = chk.Check([]string{"DROP TABLE users"}, model.SqlTypeDML)
	assert.False(t, result.Passed)
	assert.Contains(t, rules(result), "DROP_IN_DML")

	// DROP is legitimate inside a DDL order
	result = chk.Check([]string{"DROP TABLE users"}, model.SqlTypeDDL)
	assert.True(t, result.Passed)
}

func TestCheckWarningsDoNotFail(t *testing.T) {
	chk := NewChecker()

	result := chk.Check([]string{"SELECT * FROM users WHERE id = 1"}, model.SqlTypeDML)
	assert.True(t, result.Passed)
	assert.Contains(t, rules(result), "SELECT_STAR")

	result = chk.Check([]string{"INSERT INTO users VALUES (1, 'bob')"}, model.SqlTypeDML)
	assert.True(t, result.Passed)
	assert.Contains(t, rules(result), "INSERT_NO_COLUMNS")

	long := "SELECT " + strings.Repeat("a", maxStatementLength)
	result = chk.Check([]string{long}, model.SqlTypeDML)
	assert.True(t, result.Passed)
	assert.Contains(t, rules(result), "SQL_TOO_LONG")
}

func TestCheckTableNameConvention(t *testing.T) {
	chk := NewChecker()

	result := chk.Check([]string{"CREATE TABLE UserAccounts (id INT)"}, model.SqlTypeDDL)
	assert.True(t, result.Passed)
	assert.Contains(t, rules(result), "TABLE_NAME_CONVENTION")

	result = chk.Check([]string{"CREATE TABLE user_accounts (id INT)"}, model.SqlTypeDDL)
	assert.NotContains(t, rules(result), "TABLE_NAME_CONVENTION")
}

func TestCheckCommentAndInjection(t *testing.T) {
	chk := NewChecker()

	result := chk.Check([]string{"DELETE FROM t WHERE id = 1 /* batch cleanup */"}, model.SqlTypeDML)
	assert.Contains(t, rules(result), "COMMENT_PATTERN")

	result = chk.Check([]string{"SELECT name FROM t WHERE name = '1 OR 1=1 UNION SELECT password FROM users --'"}, model.SqlTypeDML)
	assert.Contains(t, rules(result), "INJECTION_PATTERN")
	// a warning, not an error
	assert.True(t, result.Passed)
}

func TestCheckCleanBatch(t *testing.T) {
	chk := NewChecker()
	result := chk.Check([]string{"UPDATE users SET active = 1 WHERE id = 7"}, model.SqlTypeDML)
	assert.True(t, result.Passed)
	assert.Len(t, result.Items, 1)
	assert.Equal(t, "ALL_PASSED", result.Items[0].Rule)
}

func TestCheckIndexesPerStatement(t *testing.T) {
	chk := NewChecker()
	result := chk.Check([]string{
		"UPDATE users SET active = 1 WHERE id = 7",
		"DELETE FROM users",
	}, model.SqlTypeDML)
	assert.False(t, result.Passed)
	assert.Equal(t, 1, result.Items[0].StmtIndex)
	assert.Contains(t, result.Items[0].Message, "statement #2")
}
