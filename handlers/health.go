package handlers

import (
	"net/http"

	"marketplace/utils"

	"github.com/gin-gonic/gin"
)

func HealthHandler(monitor *utils.HealthMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := monitor.Status()
		if !st.Healthy() {
			c.JSON(http.StatusServiceUnavailable, st)
			return
		}
		c.JSON(http.StatusOK, st)
	}
}
