package http

import (
	"fmt"
	"html"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const fallbackPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Something went wrong</title></head>
<body>
<h1>Something went wrong</h1>
<pre>%s</pre>
<button onclick="window.location.reload()">Reload</button>
</body>
</html>
`

// FaultBoundary catches a panic anywhere below it and answers with a
// fallback view carrying the error and a reload action. Nothing propagates
// past it.
func FaultBoundary() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		description := fmt.Sprint(recovered)
		log.Printf("[HTTP] Recovered from panic on %s %s: %s", c.Request.Method, c.Request.URL.Path, description)

		if strings.Contains(c.GetHeader("Accept"), "text/html") {
			c.Data(http.StatusInternalServerError, "text/html; charset=utf-8",
				[]byte(fmt.Sprintf(fallbackPage, html.EscapeString(description))))
			c.Abort()
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":       "Something went wrong",
			"description": description,
			"action":      "reload",
			"reloadUrl":   "/",
		})
	})
}
