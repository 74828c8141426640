package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleHealth(c echo.Context) error {
	resp := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startTime).Seconds(),
	}
	if s.llmHealthy != nil {
		resp["llm_healthy"] = s.llmHealthy.Load()
	}
	return c.JSON(http.StatusOK, resp)
}
