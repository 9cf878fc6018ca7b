package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dataops/sqlman/model"
	"github.com/dataops/sqlman/service/workbench"
)

const defaultHistoryLimit = 50

type QueryController struct {
	Controller
	workbench *workbench.Workbench
}

func NewQueryController(workbench *workbench.Workbench, wrapfunc Wrapfunc) *QueryController {
	qc := &QueryController{}
	qc.workbench = workbench
	qc.wrapfunc = wrapfunc
	return qc
}

func (controller *QueryController) Query(c *gin.Context) {
	var req model.QueryReq
	if err := model.DecodeRequestBody(c.Request, &req); err != nil {
		controller.wrapfunc(c, model.E_UNMARSHAL_FAILED, err)
		return
	}
	result, err := controller.workbench.Submit(c.Request.Context(), req)
	if err != nil {
		code := model.CodeOf(err)
		if model.KindOf(err) == model.KindValidation {
			code = model.E_QUERY_REJECTED
		}
		controller.wrapfunc(c, code, err)
		return
	}
	controller.wrapfunc(c, model.E_SUCCESS, result)
}

func (controller *QueryController) History(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			controller.wrapfunc(c, model.E_INVALID_PARAMS, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	history, err := controller.workbench.History(limit)
	if err != nil {
		controller.wrapfunc(c, model.CodeOf(err), err)
		return
	}
	controller.wrapfunc(c, model.E_SUCCESS, history)
}
