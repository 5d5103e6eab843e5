package v1

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/domain"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/service"
)

// renderServiceErr maps a service error onto its HTTP response. Domain errors
// are rendered with their own message, without the call chain wrapped around
// them.
func renderServiceErr(ctx *gin.Context, op string, err error) {
	var (
		validationErr   *domain.ValidationError
		quantityErr     *domain.InvalidQuantityError
		configErr       *domain.ConfigurationError
		notFoundErr     *domain.NotFoundError
		insufficientErr *domain.InsufficientStockError
		concurrencyErr  *domain.ConcurrencyError
	)

	switch {
	case errors.As(err, &validationErr):
		response.RenderErr(ctx, response.ErrBadRequest(validationErr))
	case errors.As(err, &quantityErr):
		response.RenderErr(ctx, response.ErrBadRequest(quantityErr))
	case errors.As(err, &configErr):
		response.RenderErr(ctx, response.ErrBadRequest(configErr))
	case errors.As(err, &notFoundErr):
		response.RenderErr(ctx, response.ErrNotFound(notFoundErr.Entity, "id", notFoundErr.ID))
	case errors.As(err, &insufficientErr):
		response.RenderErr(ctx, response.ErrConflict(insufficientErr))
	case errors.As(err, &concurrencyErr):
		response.RenderErr(ctx, response.ErrServiceUnavailable(concurrencyErr))
	case errors.Is(err, service.ErrProductNameExists):
		response.RenderErr(ctx, response.ErrConflict(service.ErrProductNameExists))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err)))
	}
}

func parseID(ctx *gin.Context, param string) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param(param), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s: %q", param, ctx.Param(param))
	}
	return uint(id), nil
}

// queryInt returns def when the query parameter is absent.
func queryInt(ctx *gin.Context, name string, def int) (int, error) {
	raw, ok := ctx.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}
