package controller

import (
	"github.com/gin-gonic/gin"

	"github.com/dataops/sqlman/model"
	"github.com/dataops/sqlman/service/registry"
)

type DataSourceController struct {
	Controller
	registry *registry.Registry
}

func NewDataSourceController(registry *registry.Registry, wrapfunc Wrapfunc) *DataSourceController {
	dc := &DataSourceController{}
	dc.registry = registry
	dc.wrapfunc = wrapfunc
	return dc
}

func (controller *DataSourceController) Create(c *gin.Context) {
	var req model.DataSourceReq
	if err := model.DecodeRequestBody(c.Request, &req); err != nil {
		controller.wrapfunc(c, model.E_UNMARSHAL_FAILED, err)
		return
	}
	ds, err := controller.registry.Register(req)
	if err != nil {
		controller.wrapfunc(c, model.CodeOf(err), err)
		return
	}
	controller.wrapfunc(c, model.E_SUCCESS, ds.Masked())
}

func (controller *DataSourceController) List(c *gin.Context) {
	list, err := controller.registry.List()
	if err != nil {
		controller.wrapfunc(c, model.CodeOf(err), err)
		return
	}
	masked := make([]model.DataSource, len(list))
	for i, ds := range list {
		masked[i] = ds.Masked()
	}
	controller.wrapfunc(c, model.E_SUCCESS, masked)
}

func (controller *DataSourceController) Get(c *gin.Context) {
	ds, err := controller.registry.Resolve(c.Param("id"))
	if err != nil {
		controller.wrapfunc(c, model.CodeOf(err), err)
		return
	}
	controller.wrapfunc(c, model.E_SUCCESS, ds.Masked())
}

func (controller *DataSourceController) Update(c *gin.Context) {
	var req model.DataSourceReq
	if err := model.DecodeRequestBody(c.Request, &req); err != nil {
		controller.wrapfunc(c, model.E_UNMARSHAL_FAILED, err)
		return
	}
	ds, err := controller.registry.Update(c.Param("id"), req)
	if err != nil {
		controller.wrapfunc(c, model.CodeOf(err), err)
		return
	}
	controller.wrapfunc(c, model.E_SUCCESS, ds.Masked())
}

func (controller *DataSourceController) Delete(c *gin.Context) {
	if err := controller.registry.Delete(c.Param("id")); err != nil {
		controller.wrapfunc(c, model.CodeOf(err), err)
		return
	}
	controller.wrapfunc(c, model.E_SUCCESS, nil)
}

func (controller *DataSourceController) Test(c *gin.Context) {
	result, err := controller.registry.TestConnection(c.Request.Context(), c.Param("id"))
	if err != nil {
		controller.wrapfunc(c, model.CodeOf(err), err)
		return
	}
	controller.wrapfunc(c, model.E_SUCCESS, result)
}

func (controller *DataSourceController) Databases(c *gin.Context) {
	databases, err := controller.registry.ListDatabases(c.Request.Context(), c.Param("id"))
	if err != nil {
		controller.wrapfunc(c, model.CodeOf(err), err)
		return
	}
	controller.wrapfunc(c, model.E_SUCCESS, databases)
}
