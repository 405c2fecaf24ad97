// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vireolabs/cyclegc/internal/snapshot"
)

func (s *Server) handleGraph(c *gin.Context) {
	snap := snapshot.Capture(s.ctx, c.Query("label"))
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleHistory(c *gin.Context) {
	records, err := s.history.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

func (s *Server) handleLogs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"entries": s.logTail.Entries()})
}
