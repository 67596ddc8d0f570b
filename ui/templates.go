package ui

import (
	"bytes"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// renderTemplate executes a template with the given data and status.
// Rendering goes to a buffer first so a template error never leaves a half-written page.
func (s *Server) renderTemplate(c *gin.Context, status int, templateName string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		s.logger.Error("template rendering failed",
			zap.String("template", templateName),
			zap.String("data_type", typeName(data)),
			zap.Error(err))
		c.AbortWithStatusJSON(500, gin.H{"error": "Template rendering failed", "code": "INTERNAL_ERROR"})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Writer.WriteHeader(status)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		s.logger.Warn("writing template response failed", zap.Error(err))
	}
}

func typeName(v interface{}) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
