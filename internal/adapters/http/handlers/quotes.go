package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-manager/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-manager/internal/app"
	"github.com/jsamuelsen/quote-manager/internal/domain"
	"github.com/jsamuelsen/quote-manager/internal/ports"
)

const (
	// MaxImportSize bounds the import document, raw or uploaded.
	MaxImportSize = 1 << 20

	// ImportFormField is the multipart field carrying an uploaded document.
	ImportFormField = "file"

	exportFilename = "quotes.json"
)

// NotificationSource lists the notifications that have not expired yet.
type NotificationSource interface {
	Active() []ports.Notification
}

// QuoteHandler serves the quote manager API.
type QuoteHandler struct {
	service       *app.QuoteService
	notifications NotificationSource
}

// NewQuoteHandler creates a new quote handler. notifications may be nil.
func NewQuoteHandler(service *app.QuoteService, notifications NotificationSource) *QuoteHandler {
	return &QuoteHandler{
		service:       service,
		notifications: notifications,
	}
}

// ListQuotes handles GET /api/v1/quotes.
// The cursor of a follow-up page keeps the category of the first request.
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	var req dto.ListQuotesRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	category, offset := req.Category, 0

	cursor, err := req.DecodeCursor()
	switch {
	case err == nil:
		category, offset = cursor.Category, cursor.Offset
	case !errors.Is(err, dto.ErrNoCursor):
		dto.RespondWithCode(c, dto.ErrorCodeBadRequest, err.Error())
		return
	}

	quotes := h.service.ListQuotes()
	if category != "" {
		quotes = domain.Filter(quotes, category)
	}

	c.JSON(http.StatusOK, dto.Paginate(dto.ToQuoteResponses(quotes), offset, req.GetLimit(), category))
}

// RandomQuote handles GET /api/v1/quotes/random.
// Without ?category the persisted filter applies.
func (h *QuoteHandler) RandomQuote(c *gin.Context) {
	var req dto.RandomQuoteRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	q, err := h.service.ShowRandom(c.Request.Context(), req.Category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToQuoteResponse(q))
}

// LastViewedQuote handles GET /api/v1/quotes/last.
func (h *QuoteHandler) LastViewedQuote(c *gin.Context) {
	q, err := h.service.LastViewed(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToQuoteResponse(q))
}

// AddQuote handles POST /api/v1/quotes.
func (h *QuoteHandler) AddQuote(c *gin.Context) {
	var req dto.AddQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	q, err := h.service.AddQuote(c.Request.Context(), req.Text, req.Category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToQuoteResponse(q))
}

// ExportQuotes handles GET /api/v1/quotes/export.
func (h *QuoteHandler) ExportQuotes(c *gin.Context) {
	data, err := h.service.ExportQuotes()
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	c.Data(http.StatusOK, "application/json", data)
}

// ImportQuotes handles POST /api/v1/quotes/import. The document is either
// the raw body or a multipart upload in the "file" field.
func (h *QuoteHandler) ImportQuotes(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxImportSize)

	src, err := importSource(c)
	if err != nil {
		respondImportReadError(c, err)
		return
	}
	defer src.Close()

	result, err := h.service.ImportQuotes(c.Request.Context(), src)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondImportReadError(c, err)
			return
		}

		dto.HandleError(c, err)

		return
	}

	c.JSON(http.StatusOK, dto.ToImportResponse(result))
}

// Categories handles GET /api/v1/categories.
func (h *QuoteHandler) Categories(c *gin.Context) {
	categories, selected := h.service.Categories()

	c.JSON(http.StatusOK, dto.CategoriesResponse{Categories: categories, Selected: selected})
}

// SelectCategory handles PUT /api/v1/categories/selected.
// An empty category resets the filter to "all".
func (h *QuoteHandler) SelectCategory(c *gin.Context) {
	var req dto.SelectCategoryRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	selected := h.service.SelectCategory(c.Request.Context(), req.Category)

	c.JSON(http.StatusOK, dto.SelectCategoryResponse{Selected: selected})
}

// Sync handles POST /api/v1/sync. A failed run answers 503 with the same
// body shape and the error text.
func (h *QuoteHandler) Sync(c *gin.Context) {
	result := h.service.SyncNow(c.Request.Context())

	status := http.StatusOK
	if !result.OK() {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, dto.ToSyncResponse(result, h.service.SyncState()))
}

// SyncState handles GET /api/v1/sync.
func (h *QuoteHandler) SyncState(c *gin.Context) {
	c.JSON(http.StatusOK, dto.SyncResponse{State: string(h.service.SyncState())})
}

// Notifications handles GET /api/v1/notifications.
func (h *QuoteHandler) Notifications(c *gin.Context) {
	var active []ports.Notification
	if h.notifications != nil {
		active = h.notifications.Active()
	}

	c.JSON(http.StatusOK, dto.ToNotificationResponses(active))
}

// RegisterRoutes registers the API routes on rg.
func (h *QuoteHandler) RegisterRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("", h.ListQuotes)
	quotes.POST("", h.AddQuote)
	quotes.GET("/random", h.RandomQuote)
	quotes.GET("/last", h.LastViewedQuote)
	quotes.GET("/export", h.ExportQuotes)
	quotes.POST("/import", h.ImportQuotes)

	rg.GET("/categories", h.Categories)
	rg.PUT("/categories/selected", h.SelectCategory)

	rg.GET("/sync", h.SyncState)
	rg.POST("/sync", h.Sync)

	rg.GET("/notifications", h.Notifications)
}

func importSource(c *gin.Context) (io.ReadCloser, error) {
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return c.Request.Body, nil
	}

	header, err := c.FormFile(ImportFormField)
	if err != nil {
		return nil, err
	}

	return header.Open()
}

func respondImportReadError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		dto.RespondWithCode(c, dto.ErrorCodePayloadTooLarge, "import document exceeds 1 MiB")
		return
	}

	dto.RespondWithCode(c, dto.ErrorCodeBadRequest, "reading import document: "+err.Error())
}
