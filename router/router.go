package router

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/dataops/sqlman/controller"
	"github.com/dataops/sqlman/log"
	"github.com/dataops/sqlman/model"
	"github.com/dataops/sqlman/service/checker"
	"github.com/dataops/sqlman/service/registry"
	"github.com/dataops/sqlman/service/workbench"
	"github.com/dataops/sqlman/service/workflow"
)

type ResponseBody struct {
	RetCode string      `json:"retCode"`
	RetMsg  string      `json:"retMsg"`
	Entity  interface{} `json:"entity"`
}

// WrapMsg writes the uniform envelope. HTTP status is always 200, the
// outcome lives in retCode. On an error code the entity is replaced by
// the error details, if any.
func WrapMsg(c *gin.Context, retCode string, entity interface{}) {
	c.Status(http.StatusOK)
	c.Header("Content-Type", "application/json; charset=utf-8")

	retMsg := model.GetMsg(c, retCode)
	if retCode != model.E_SUCCESS {
		log.Logger.Errorf("%s %s return %s, %v", c.Request.Method, c.Request.RequestURI, retCode, entity)
		if err, ok := entity.(error); ok {
			retMsg += ": " + err.Error()
			var ferr *model.FlowError
			if errors.As(err, &ferr) {
				entity = ferr.Details
			} else {
				entity = nil
			}
		} else if s, ok := entity.(string); ok {
			retMsg += ": " + s
			entity = nil
		} else {
			entity = nil
		}
	}

	resp := ResponseBody{
		RetCode: retCode,
		RetMsg:  retMsg,
		Entity:  entity,
	}
	jsonBytes, err := json.Marshal(resp)
	if err != nil {
		log.Logger.Errorf("%s %s marshal response body fail: %s", c.Request.Method, c.Request.RequestURI, err.Error())
		return
	}

	log.Logger.Debugf("[response] | %s | %s | %s \n%v", c.Request.Host, c.Request.Method, c.Request.URL, string(jsonBytes))

	if _, err = c.Writer.Write(jsonBytes); err != nil {
		log.Logger.Errorf("%s %s write response body fail: %s", c.Request.Method, c.Request.RequestURI, err.Error())
	}
}

func InitRouterV1(groupV1 *gin.RouterGroup, reg *registry.Registry, engine *workflow.Engine, chk *checker.Checker, wb *workbench.Workbench) {
	dsController := controller.NewDataSourceController(reg, WrapMsg)
	orderController := controller.NewOrderController(engine, WrapMsg)
	checkController := controller.NewCheckController(chk, WrapMsg)
	queryController := controller.NewQueryController(wb, WrapMsg)

	groupV1.POST("/datasource", dsController.Create)
	groupV1.GET("/datasource", dsController.List)
	groupV1.GET("/datasource/:id", dsController.Get)
	groupV1.PUT("/datasource/:id", dsController.Update)
	groupV1.DELETE("/datasource/:id", dsController.Delete)
	groupV1.POST("/datasource/:id/test", dsController.Test)
	groupV1.GET("/datasource/:id/databases", dsController.Databases)

	groupV1.POST("/order", orderController.Create)
	groupV1.GET("/order", orderController.List)
	groupV1.GET("/order/:id", orderController.Get)
	groupV1.POST("/order/:id/submit", orderController.Submit)
	groupV1.POST("/order/:id/approve", orderController.Approve)
	groupV1.POST("/order/:id/reject", orderController.Reject)
	groupV1.POST("/order/:id/execute", orderController.Execute)

	groupV1.POST("/check", checkController.Check)

	groupV1.POST("/query", queryController.Query)
	groupV1.GET("/query/history", queryController.History)
}
