package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/tokengate/component"
	"github.com/kbukum/tokengate/version"
)

// startTime records when the process started for uptime calculation.
var startTime = time.Now()

// Describer lists component descriptions.
type Describer func() []component.Description

// InfoResponse is the body of GET /info.
type InfoResponse struct {
	Service    string                  `json:"service"`
	Build      version.Info            `json:"build"`
	Uptime     string                  `json:"uptime"`
	Components []component.Description `json:"components,omitempty"`
}

// Info returns a handler that reports build information and what each
// component is configured as. Descriptions never include secrets.
func Info(serviceName string, describe Describer) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := InfoResponse{
			Service: serviceName,
			Build:   version.Get(),
			Uptime:  time.Since(startTime).Round(time.Second).String(),
		}
		if describe != nil {
			resp.Components = describe()
		}
		c.JSON(http.StatusOK, resp)
	}
}
