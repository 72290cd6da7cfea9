package api

import (
	"net/http"

	"github.com/domectrl/pidreg/internal/outputs"
	"github.com/labstack/echo/v4"
	"github.com/qdm12/reprint"
)

func registerOutputEndpoints(rest *echo.Echo) {
	group := rest.Group("/output")

	group.GET("/", getOutputs)
	group.GET("/:"+urlParamId+"/", getOutput)
}

// returns a list of all currently configured outputs
func getOutputs(c echo.Context) error {
	data := reprint.This(outputs.OutputMap.Items())
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}

func getOutput(c echo.Context) error {
	id := c.Param(urlParamId)
	data, exists := outputs.OutputMap.Get(id)
	if !exists {
		return returnNotFound(c, id)
	}
	return c.JSONPretty(http.StatusOK, reprint.This(data), indentationChar)
}
