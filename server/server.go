package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"

	"github.com/dataops/sqlman/config"
	"github.com/dataops/sqlman/log"
	"github.com/dataops/sqlman/router"
	"github.com/dataops/sqlman/service/checker"
	"github.com/dataops/sqlman/service/registry"
	"github.com/dataops/sqlman/service/workbench"
	"github.com/dataops/sqlman/service/workflow"
)

type ApiServer struct {
	config   *config.SqlManConfig
	registry *registry.Registry
	engine   *workflow.Engine
	checker  *checker.Checker
	wb       *workbench.Workbench
	svr      *http.Server
}

func NewApiServer(conf *config.SqlManConfig, reg *registry.Registry, engine *workflow.Engine, chk *checker.Checker, wb *workbench.Workbench) *ApiServer {
	server := &ApiServer{}
	server.config = conf
	server.registry = reg
	server.engine = engine
	server.checker = chk
	server.wb = wb
	return server
}

func (server *ApiServer) Start() error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ginLoggerToFile())

	// http://127.0.0.1:8909/debug/pprof/
	if server.config.Server.Pprof {
		pprof.Register(r)
	}

	groupV1 := r.Group("/api/v1")
	router.InitRouterV1(groupV1, server.registry, server.engine, server.checker, server.wb)

	bind := fmt.Sprintf("%s:%d", server.config.Server.Ip, server.config.Server.Port)
	server.svr = &http.Server{
		Addr:         bind,
		WriteTimeout: time.Second * 300,
		ReadTimeout:  time.Second * 300,
		IdleTimeout:  time.Second * 60,
		Handler:      r,
	}

	go func() {
		if err := server.svr.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Logger.Fatalf("start http server fail: %s", err.Error())
		}
	}()

	return nil
}

func (server *ApiServer) Stop() error {
	waitTimeout := time.Duration(time.Second * 10)
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	return server.svr.Shutdown(ctx)
}

func ginLoggerToFile() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()
		latencyTime := time.Since(startTime)
		reqMethod := c.Request.Method
		reqUri := c.Request.RequestURI
		statusCode := c.Writer.Status()
		clientIP := c.ClientIP()
		if statusCode == http.StatusOK {
			log.Logger.Infof("| %3d | %13v | %15s | %s | %s",
				statusCode,
				latencyTime,
				clientIP,
				reqMethod,
				reqUri,
			)
		} else {
			log.Logger.Errorf("| %3d | %13v | %15s | %s | %s",
				statusCode,
				latencyTime,
				clientIP,
				reqMethod,
				reqUri,
			)
		}
	}
}
