package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/robobooks/internal/orgcontext"
)

const (
	HeaderOrg         = "X-Org-Id"
	contextQuoteIDKey = "quote_id"
)

// OrgContext resolves the organization from the X-Org-Id header and injects
// it into the request context.
func OrgContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderOrg))
		if raw == "" {
			AbortWithError(c, newValidationError("organization", "required", "X-Org-Id header is required"))
			return
		}

		orgID, ok := orgcontext.ParseOrgID(raw)
		if !ok {
			AbortWithError(c, newValidationError("organization", "invalid_organization", "invalid X-Org-Id header"))
			return
		}

		c.Request = c.Request.WithContext(orgcontext.WithOrgID(c.Request.Context(), orgID))
		c.Next()
	}
}

// tagQuote exposes the quote id to the request logger.
func tagQuote(c *gin.Context, id string) {
	if id = strings.TrimSpace(id); id != "" {
		c.Set(contextQuoteIDKey, id)
	}
}
