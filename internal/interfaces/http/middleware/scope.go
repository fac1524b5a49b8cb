package middleware

import (
	"net/http"

	"github.com/bioinsight/backend/internal/domain/ledger"
	"github.com/bioinsight/backend/internal/infrastructure/logger"
	"github.com/bioinsight/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ScopeKeyHeader names the ledger partition of a request. Authorization has
// already happened upstream; the header is trusted as-is.
const ScopeKeyHeader = "X-Scope-Key"

const scopeContextKey = "ledger_scope"

type scopeHeader struct {
	Key string `header:"X-Scope-Key" binding:"required,scope_key"`
}

// RequireScope rejects requests without a valid X-Scope-Key and stores the
// parsed scope in the gin context and on the request logger.
func RequireScope() gin.HandlerFunc {
	SetupValidator()

	return func(c *gin.Context) {
		var h scopeHeader
		if err := c.ShouldBindHeader(&h); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeMissingScope,
				ScopeKeyHeader+" header must be <kind>:<id>",
				getRequestID(c),
			))
			return
		}

		scope, err := ledger.ParseScope(h.Key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeMissingScope, err.Error(), getRequestID(c),
			))
			return
		}

		key := scope.String()
		c.Set(scopeContextKey, scope)
		c.Set(logger.GinScopeKey, key)

		ctx := c.Request.Context()
		ctx, _ = logger.WithScopeKey(ctx, logger.FromContext(ctx), key)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetScope returns the scope stored by RequireScope
func GetScope(c *gin.Context) (ledger.Scope, bool) {
	v, ok := c.Get(scopeContextKey)
	if !ok {
		return ledger.Scope{}, false
	}
	scope, ok := v.(ledger.Scope)
	return scope, ok
}
