package api

import (
	"errors"
	"net/http"
	"os"

	"github.com/domectrl/pidreg/internal/configuration"
	"github.com/domectrl/pidreg/internal/persistence"
	"github.com/domectrl/pidreg/internal/regulator"
	"github.com/labstack/echo/v4"
)

func registerRegulatorEndpoints(rest *echo.Echo) {
	group := rest.Group("/regulator")

	group.GET("/", getRegulators)
	group.GET("/:"+urlParamId+"/", getRegulator)
	group.GET("/:"+urlParamId+"/history/", getRegulatorHistory)
	group.POST("/:"+urlParamId+"/enable/", enableRegulator)
	group.POST("/:"+urlParamId+"/disable/", disableRegulator)
}

// returns the attributes of all currently configured regulators
func getRegulators(c echo.Context) error {
	data := map[string]map[string]interface{}{}
	for id, reg := range regulator.RegulatorMap.Items() {
		data[id] = reg.Attributes()
	}
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}

func getRegulator(c echo.Context) error {
	id := c.Param(urlParamId)
	reg, exists := regulator.RegulatorMap.Get(id)
	if !exists {
		return returnNotFound(c, id)
	}
	return c.JSONPretty(http.StatusOK, reg.Attributes(), indentationChar)
}

// returns the persisted cycle history of a regulator
func getRegulatorHistory(c echo.Context) error {
	id := c.Param(urlParamId)
	_, exists := regulator.RegulatorMap.Get(id)
	if !exists {
		return returnNotFound(c, id)
	}

	pers := persistence.NewPersistence(configuration.CurrentConfig.DbPath)
	entries, err := pers.LoadHistory(id)
	if errors.Is(err, os.ErrNotExist) {
		// regulator exists but has not recorded any cycles yet
		entries = []persistence.HistoryEntry{}
	} else if err != nil {
		return returnError(c, err)
	}
	return c.JSONPretty(http.StatusOK, entries, indentationChar)
}

func enableRegulator(c echo.Context) error {
	return setRegulatorEnabled(c, true)
}

func disableRegulator(c echo.Context) error {
	return setRegulatorEnabled(c, false)
}

func setRegulatorEnabled(c echo.Context, enabled bool) error {
	id := c.Param(urlParamId)
	reg, exists := regulator.RegulatorMap.Get(id)
	if !exists {
		return returnNotFound(c, id)
	}
	reg.SetEnabled(enabled)
	return c.JSONPretty(http.StatusOK, reg.Attributes(), indentationChar)
}
