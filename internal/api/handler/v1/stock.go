package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/api/handler/v1/request"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/domain"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/service"
)

type LedgerService interface {
	AddBatch(ctx context.Context, productID uint, quantity int, expiryDate time.Time, batchNumber, supplier string) (domain.StockBatch, error)
	ListBatches(ctx context.Context, productID uint) ([]domain.StockBatch, error)
}

type ClassifierService interface {
	Thresholds() service.Thresholds
	Classify(ctx context.Context, productID uint, lowStockThreshold int) (domain.StockStatus, int, error)
	ClassifyBatches(batches []domain.StockBatch, windowDays int, asOf time.Time) ([]domain.ClassifiedBatch, error)
	InventoryOverview(ctx context.Context, lowStockThreshold, windowDays int, asOf time.Time) ([]domain.ProductInventory, error)
}

type StockHandler struct {
	ledger     LedgerService
	classifier ClassifierService
	now        func() time.Time
}

func NewStockHandler(ledger LedgerService, classifier ClassifierService, now func() time.Time) *StockHandler {
	return &StockHandler{
		ledger:     ledger,
		classifier: classifier,
		now:        now,
	}
}

// HandleAddStock godoc
// @Summary      Receive a stock batch
// @Description  Records a new batch for a product. Batches already past their expiry date are accepted and reported as expired.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        request  body      request.AddStockRequest  true  "batch"
// @Success      201      {object}  domain.StockBatch
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /stock [post]
// @Security     BearerAuth
func (h *StockHandler) HandleAddStock(ctx *gin.Context) {
	var req request.AddStockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	quantity, err := request.ParseQuantity(req.Quantity)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	expiry, err := req.ParseExpiryDate()
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	batch, err := h.ledger.AddBatch(ctx.Request.Context(), req.ProductID, quantity, expiry, req.BatchNumber, req.Supplier)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleAddStock -> h.ledger.AddBatch", err)
		return
	}

	ctx.JSON(http.StatusCreated, batch)
}

// HandleGetBatches godoc
// @Summary      List the batches of a product
// @Description  Batches are ordered earliest expiry first and classified against the expiring window.
// @Tags         stock
// @Produce      json
// @Param        productID             path      int  true   "Product ID"
// @Param        expiring_window_days  query     int  false  "Expiring window in days"
// @Success      200                   {object}  response.BatchesResponse
// @Failure      400                   {object}  response.Err
// @Failure      404                   {object}  response.Err
// @Failure      500                   {object}  response.Err
// @Router       /products/{productID}/batches [get]
// @Security     BearerAuth
func (h *StockHandler) HandleGetBatches(ctx *gin.Context) {
	productID, err := parseID(ctx, "productID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	window, err := queryInt(ctx, "expiring_window_days", h.classifier.Thresholds().ExpiringWindowDays)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	batches, err := h.ledger.ListBatches(ctx.Request.Context(), productID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleGetBatches -> h.ledger.ListBatches", err)
		return
	}

	classified, err := h.classifier.ClassifyBatches(batches, window, h.now())
	if err != nil {
		renderServiceErr(ctx, "v1.HandleGetBatches -> h.classifier.ClassifyBatches", err)
		return
	}

	ctx.JSON(http.StatusOK, response.BatchesResponse{
		ProductID:          productID,
		ExpiringWindowDays: window,
		Batches:            classified,
	})
}

// HandleGetStockStatus godoc
// @Summary      Stock status of a product
// @Tags         stock
// @Produce      json
// @Param        productID            path      int  true   "Product ID"
// @Param        low_stock_threshold  query     int  false  "Low stock threshold"
// @Success      200                  {object}  response.StockStatusResponse
// @Failure      400                  {object}  response.Err
// @Failure      404                  {object}  response.Err
// @Failure      500                  {object}  response.Err
// @Router       /products/{productID}/status [get]
// @Security     BearerAuth
func (h *StockHandler) HandleGetStockStatus(ctx *gin.Context) {
	productID, err := parseID(ctx, "productID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	threshold, err := queryInt(ctx, "low_stock_threshold", h.classifier.Thresholds().LowStockThreshold)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	status, total, err := h.classifier.Classify(ctx.Request.Context(), productID, threshold)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleGetStockStatus -> h.classifier.Classify", err)
		return
	}

	ctx.JSON(http.StatusOK, response.StockStatusResponse{
		ProductID:         productID,
		TotalQuantity:     total,
		LowStockThreshold: threshold,
		Status:            status,
	})
}

// HandleGetInventory godoc
// @Summary      Inventory overview
// @Description  Every product with its total quantity, stock status, nearest expiry and classified batches.
// @Tags         stock
// @Produce      json
// @Param        low_stock_threshold   query     int  false  "Low stock threshold"
// @Param        expiring_window_days  query     int  false  "Expiring window in days"
// @Success      200                   {object}  response.InventoryResponse
// @Failure      400                   {object}  response.Err
// @Failure      500                   {object}  response.Err
// @Router       /inventory [get]
// @Security     BearerAuth
func (h *StockHandler) HandleGetInventory(ctx *gin.Context) {
	defaults := h.classifier.Thresholds()

	threshold, err := queryInt(ctx, "low_stock_threshold", defaults.LowStockThreshold)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	window, err := queryInt(ctx, "expiring_window_days", defaults.ExpiringWindowDays)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	overview, err := h.classifier.InventoryOverview(ctx.Request.Context(), threshold, window, h.now())
	if err != nil {
		renderServiceErr(ctx, "v1.HandleGetInventory -> h.classifier.InventoryOverview", err)
		return
	}

	ctx.JSON(http.StatusOK, response.InventoryResponse{
		LowStockThreshold:  threshold,
		ExpiringWindowDays: window,
		Products:           overview,
	})
}
