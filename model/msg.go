package model

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	E_SUCCESS string = "0000"
	E_UNKNOWN string = "5000"

	E_INVALID_PARAMS   string = "5001"
	E_INVALID_VARIABLE string = "5002"
	E_DATA_EMPTY       string = "5003"
	E_DATA_DUPLICATED  string = "5004"
	E_DATA_CONFLICT    string = "5005"

	E_RECORD_NOT_FOUND   string = "5040"
	E_DATA_INSERT_FAILED string = "5041"
	E_DATA_UPDATE_FAILED string = "5042"
	E_DATA_DELETE_FAILED string = "5043"
	E_DATA_SELECT_FAILED string = "5044"

	E_MARSHAL_FAILED   string = "5060"
	E_UNMARSHAL_FAILED string = "5061"

	E_DS_CONNECT_FAILED string = "5110"
	E_TIMEOUT           string = "5111"
	E_EXECUTE_FAILED    string = "5112"
	E_CHECK_NOT_PASSED  string = "5113"
	E_QUERY_REJECTED    string = "5114"
	E_TRANSITION_DENIED string = "5115"
)

type CodeMessage struct {
	Msg_EN string
	Msg_ZH string
}

var Messages = map[string]CodeMessage{
	E_SUCCESS: {"E_SUCCESS", "成功"},
	E_UNKNOWN: {"E_UNKNOWN", "未知错误"},

	E_INVALID_PARAMS:   {"E_INVALID_PARAMS", "参数不合法"},
	E_INVALID_VARIABLE: {"E_INVALID_VARIABLE", "变量不合法"},
	E_DATA_EMPTY:       {"E_DATA_EMPTY", "数据不允许为空"},
	E_DATA_DUPLICATED:  {"E_DATA_DUPLICATED", "数据重复"},
	E_DATA_CONFLICT:    {"E_DATA_CONFLICT", "数据冲突"},

	E_RECORD_NOT_FOUND:   {"E_RECORD_NOT_FOUND", "记录找不到"},
	E_DATA_INSERT_FAILED: {"E_DATA_INSERT_FAILED", "数据插入失败"},
	E_DATA_UPDATE_FAILED: {"E_DATA_UPDATE_FAILED", "数据更新失败"},
	E_DATA_DELETE_FAILED: {"E_DATA_DELETE_FAILED", "数据删除失败"},
	E_DATA_SELECT_FAILED: {"E_DATA_SELECT_FAILED", "数据查询失败"},

	E_MARSHAL_FAILED:   {"E_MARSHAL_FAILED", "序列化失败"},
	E_UNMARSHAL_FAILED: {"E_UNMARSHAL_FAILED", "反序列化失败"},

	E_DS_CONNECT_FAILED: {"E_DS_CONNECT_FAILED", "数据源连接失败"},
	E_TIMEOUT:           {"E_TIMEOUT", "操作超时"},
	E_EXECUTE_FAILED:    {"E_EXECUTE_FAILED", "SQL执行失败"},
	E_CHECK_NOT_PASSED:  {"E_CHECK_NOT_PASSED", "SQL检查未通过"},
	E_QUERY_REJECTED:    {"E_QUERY_REJECTED", "查询语句被拒绝"},
	E_TRANSITION_DENIED: {"E_TRANSITION_DENIED", "工单状态不允许该操作"},
}

func GetMsg(c *gin.Context, code string) string {
	lang := c.Request.Header.Get("Accept-Language")
	var msg string
	if strings.Contains(lang, "zh") {
		msg = Messages[code].Msg_ZH
	} else {
		msg = Messages[code].Msg_EN
	}
	return msg
}
