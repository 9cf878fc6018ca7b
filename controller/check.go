package controller

import (
	"github.com/gin-gonic/gin"

	"github.com/dataops/sqlman/model"
	"github.com/dataops/sqlman/service/checker"
)

type CheckController struct {
	Controller
	checker *checker.Checker
}

func NewCheckController(chk *checker.Checker, wrapfunc Wrapfunc) *CheckController {
	cc := &CheckController{}
	cc.checker = chk
	cc.wrapfunc = wrapfunc
	return cc
}

// Check runs the static rules without creating an order, so a statement
// batch can be linted before submission.
func (controller *CheckController) Check(c *gin.Context) {
	var req model.CheckReq
	if err := model.DecodeRequestBody(c.Request, &req); err != nil {
		controller.wrapfunc(c, model.E_UNMARSHAL_FAILED, err)
		return
	}
	statements := checker.SplitStatements(req.SqlContent)
	if len(statements) == 0 {
		controller.wrapfunc(c, model.E_DATA_EMPTY, "statement batch is empty")
		return
	}
	sqlType := req.SqlType
	if sqlType != model.SqlTypeDDL {
		sqlType = model.SqlTypeDML
	}
	controller.wrapfunc(c, model.E_SUCCESS, controller.checker.Check(statements, sqlType))
}
