package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/dataops/sqlman/model"
	"github.com/dataops/sqlman/service/workflow"
)

type OrderController struct {
	Controller
	engine *workflow.Engine
}

func NewOrderController(engine *workflow.Engine, wrapfunc Wrapfunc) *OrderController {
	oc := &OrderController{}
	oc.engine = engine
	oc.wrapfunc = wrapfunc
	return oc
}

// orderCode refines the generic code mapping: a refused transition gets
// its own code so the caller can tell policy from data conflicts.
func orderCode(err error) string {
	var ferr *model.FlowError
	switch model.KindOf(err) {
	case model.KindConflict:
		return model.E_TRANSITION_DENIED
	case model.KindValidation:
		if errors.As(err, &ferr) && ferr.Details != nil {
			return model.E_CHECK_NOT_PASSED
		}
	}
	return model.CodeOf(err)
}

func (controller *OrderController) Create(c *gin.Context) {
	var req model.CreateOrderReq
	if err := model.DecodeRequestBody(c.Request, &req); err != nil {
		controller.wrapfunc(c, model.E_UNMARSHAL_FAILED, err)
		return
	}
	order, err := controller.engine.Create(req)
	if err != nil {
		controller.wrapfunc(c, orderCode(err), err)
		return
	}
	controller.wrapfunc(c, model.E_SUCCESS, order)
}

func (controller *OrderController) List(c *gin.Context) {
	orders, err := controller.engine.List()
	if err != nil {
		controller.wrapfunc(c, model.CodeOf(err), err)
		return
	}
	controller.wrapfunc(c, model.E_SUCCESS, orders)
}

func (controller *OrderController) Get(c *gin.Context) {
	order, err := controller.engine.Get(c.Param("id"))
	if err != nil {
		controller.wrapfunc(c, model.CodeOf(err), err)
		return
	}
	controller.wrapfunc(c, model.E_SUCCESS, order)
}

func (controller *OrderController) Submit(c *gin.Context) {
	order, err := controller.engine.Submit(c.Param("id"))
	if err != nil {
		controller.wrapfunc(c, orderCode(err), err)
		return
	}
	controller.wrapfunc(c, model.E_SUCCESS, order)
}

func (controller *OrderController) Approve(c *gin.Context) {
	var req model.ReviewReq
	if err := model.DecodeRequestBody(c.Request, &req); err != nil {
		controller.wrapfunc(c, model.E_UNMARSHAL_FAILED, err)
		return
	}
	order, err := controller.engine.Approve(c.Param("id"), req)
	if err != nil {
		controller.wrapfunc(c, orderCode(err), err)
		return
	}
	controller.wrapfunc(c, model.E_SUCCESS, order)
}

func (controller *OrderController) Reject(c *gin.Context) {
	var req model.ReviewReq
	if err := model.DecodeRequestBody(c.Request, &req); err != nil {
		controller.wrapfunc(c, model.E_UNMARSHAL_FAILED, err)
		return
	}
	order, err := controller.engine.Reject(c.Param("id"), req)
	if err != nil {
		controller.wrapfunc(c, orderCode(err), err)
		return
	}
	controller.wrapfunc(c, model.E_SUCCESS, order)
}

func (controller *OrderController) Execute(c *gin.Context) {
	order, err := controller.engine.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		controller.wrapfunc(c, orderCode(err), err)
		return
	}
	// a failed run is still a completed request: the order carries the
	// terminal status and the per-statement results
	controller.wrapfunc(c, model.E_SUCCESS, order)
}
