package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/api/handler/v1/request"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/domain"
)

type CatalogService interface {
	CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error)
	GetProduct(ctx context.Context, id uint) (domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

type ProductHandler struct {
	svc CatalogService
}

func NewProductHandler(svc CatalogService) *ProductHandler {
	return &ProductHandler{
		svc: svc,
	}
}

// HandleCreateProduct godoc
// @Summary      Create a product
// @Description  Adds a product to the catalog. Product names are unique.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateProductRequest  true  "product"
// @Success      201      {object}  domain.Product
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /products [post]
// @Security     BearerAuth
func (h *ProductHandler) HandleCreateProduct(ctx *gin.Context) {
	var req request.CreateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	product, err := h.svc.CreateProduct(ctx.Request.Context(), domain.Product{
		Name:             req.Name,
		Category:         req.Category,
		Description:      req.Description,
		RetailPrice:      req.RetailPrice,
		WholesalePrice:   req.WholesalePrice,
		MinOrderQuantity: req.MinOrderQuantity,
	})
	if err != nil {
		renderServiceErr(ctx, "v1.HandleCreateProduct -> h.svc.CreateProduct", err)
		return
	}

	ctx.JSON(http.StatusCreated, product)
}

// HandleGetProducts godoc
// @Summary      List products
// @Tags         products
// @Produce      json
// @Success      200  {array}   domain.Product
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /products [get]
// @Security     BearerAuth
func (h *ProductHandler) HandleGetProducts(ctx *gin.Context) {
	products, err := h.svc.ListProducts(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, "v1.HandleGetProducts -> h.svc.ListProducts", err)
		return
	}

	ctx.JSON(http.StatusOK, products)
}

// HandleGetProduct godoc
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        productID  path      int  true  "Product ID"
// @Success      200        {object}  domain.Product
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /products/{productID} [get]
// @Security     BearerAuth
func (h *ProductHandler) HandleGetProduct(ctx *gin.Context) {
	productID, err := parseID(ctx, "productID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	product, err := h.svc.GetProduct(ctx.Request.Context(), productID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleGetProduct -> h.svc.GetProduct", err)
		return
	}

	ctx.JSON(http.StatusOK, product)
}
