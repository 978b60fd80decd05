package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetHome godoc
// @Summary Service banner
// @Tags home
// @Produce plain
// @Success 200 {string} string "ledger ingest backend"
// @Router /example/helloworld [get]
func GetHome(c *gin.Context) {
	c.String(http.StatusOK, "ledger ingest backend")
}
