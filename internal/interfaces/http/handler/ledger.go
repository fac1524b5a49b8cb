package handler

import (
	"context"
	"time"

	ledgerapp "github.com/bioinsight/backend/internal/application/ledger"
	"github.com/bioinsight/backend/internal/domain/ledger"
	"github.com/bioinsight/backend/internal/domain/shared"
	"github.com/bioinsight/backend/internal/interfaces/http/dto"
	"github.com/bioinsight/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// ReportQuerier serves the read side of the ledger
type ReportQuerier interface {
	Summarize(ctx context.Context, scope ledger.Scope, from, to time.Time) (*ledgerapp.SummaryResponse, error)
	ListEntries(ctx context.Context, scope ledger.Scope, filter shared.Filter) (*shared.Paginated[ledgerapp.EntryResponse], error)
}

// LedgerHandler exposes quote finalization and spend reporting
type LedgerHandler struct {
	BaseHandler
	finalizer ledgerapp.Finalizer
	reports   ReportQuerier
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(finalizer ledgerapp.Finalizer, reports ReportQuerier) *LedgerHandler {
	return &LedgerHandler{
		finalizer: finalizer,
		reports:   reports,
	}
}

// RegisterRoutes mounts the ledger endpoints under /ledger. Every route
// requires an X-Scope-Key header.
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/ledger", middleware.RequireScope())
	g.POST("/quotes/:id/finalize", h.FinalizeQuote)
	g.GET("/summary", h.GetSummary)
	g.GET("/entries", h.ListEntries)
}

func (h *LedgerHandler) scope(c *gin.Context) (ledger.Scope, bool) {
	scope, ok := middleware.GetScope(c)
	if !ok {
		h.ErrorWithCode(c, dto.ErrCodeMissingScope, middleware.ScopeKeyHeader+" header is required")
	}
	return scope, ok
}

// FinalizeQuote copies an accepted quote into the ledger.
// 201 when rows were written, 200 when the quote was already finalized.
func (h *LedgerHandler) FinalizeQuote(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	var req dto.QuoteIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	quoteID, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid quote ID format")
		return
	}

	result, err := h.finalizer.Finalize(c.Request.Context(), quoteID, scope)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if result.AlreadyFinalized {
		h.Success(c, result)
		return
	}
	h.Created(c, result)
}

// GetSummary returns the spend summary for purchases in [from, to).
func (h *LedgerHandler) GetSummary(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	var req dto.SummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	from, err := time.ParseInLocation(dateLayout, req.From, time.UTC)
	if err != nil {
		h.BadRequest(c, "Invalid from date")
		return
	}
	to, err := time.ParseInLocation(dateLayout, req.To, time.UTC)
	if err != nil {
		h.BadRequest(c, "Invalid to date")
		return
	}

	summary, err := h.reports.Summarize(c.Request.Context(), scope, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// ListEntries returns a page of ledger rows, newest purchase first by default.
func (h *LedgerHandler) ListEntries(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	page, err := h.reports.ListEntries(c.Request.Context(), scope, shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
