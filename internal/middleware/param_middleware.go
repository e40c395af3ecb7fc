package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ExtractUintParam извлекает числовой параметр URL и кладёт его в контекст Gin
// под заданным ключом. Используется группой /attempts/:id, чтобы обработчики
// попыток читали готовый uint вместо повторного разбора строки.
// Нечисловой параметр отклоняется сразу, до обращения к базе.
func ExtractUintParam(paramName, contextKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param(paramName)
		value, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid %s", paramName)})
			c.Abort()
			return
		}
		c.Set(contextKey, uint(value))
		c.Next()
	}
}
