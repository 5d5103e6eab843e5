package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/api/handler/v1/request"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/api/middleware"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/domain"
)

var errWholesaleNotAllowed = errors.New("role may not make wholesale sales")

type DispenseService interface {
	Dispense(ctx context.Context, productID uint, quantity int, saleType domain.SaleType) (domain.DispenseResult, error)
	ListSales(ctx context.Context, productID uint) ([]domain.Sale, error)
}

type DispenseHandler struct {
	svc DispenseService
}

func NewDispenseHandler(svc DispenseService) *DispenseHandler {
	return &DispenseHandler{
		svc: svc,
	}
}

// HandleDispense godoc
// @Summary      Dispense a product
// @Description  Sells quantity units drawing from the earliest-expiring batches. Nothing is deducted when the request fails.
// @Tags         dispense
// @Accept       json
// @Produce      json
// @Param        request  body      request.DispenseRequest  true  "dispense"
// @Success      200      {object}  domain.DispenseResult
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      503      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /dispense [post]
// @Security     BearerAuth
func (h *DispenseHandler) HandleDispense(ctx *gin.Context) {
	var req request.DispenseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	quantity, err := request.ParseQuantity(req.Quantity)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if req.SaleType == domain.SaleTypeWholesale {
		if p, ok := middleware.PrincipalFrom(ctx); !ok || !p.Capabilities.WholesaleSale {
			response.RenderErr(ctx, response.ErrPermissionDenied(errWholesaleNotAllowed))
			return
		}
	}

	result, err := h.svc.Dispense(ctx.Request.Context(), req.InventoryID, quantity, req.SaleType)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleDispense -> h.svc.Dispense", err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// HandleGetSales godoc
// @Summary      Sales of a product
// @Tags         dispense
// @Produce      json
// @Param        productID  path      int  true  "Product ID"
// @Success      200        {array}   domain.Sale
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /products/{productID}/sales [get]
// @Security     BearerAuth
func (h *DispenseHandler) HandleGetSales(ctx *gin.Context) {
	productID, err := parseID(ctx, "productID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	sales, err := h.svc.ListSales(ctx.Request.Context(), productID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleGetSales -> h.svc.ListSales", err)
		return
	}
	if sales == nil {
		sales = []domain.Sale{}
	}

	ctx.JSON(http.StatusOK, sales)
}
