package controller

import "github.com/gin-gonic/gin"

// Wrapfunc writes the uniform response envelope. The router injects it so
// controllers never touch the response format directly.
type Wrapfunc func(c *gin.Context, retCode string, entity interface{})

type Controller struct {
	wrapfunc Wrapfunc
}
