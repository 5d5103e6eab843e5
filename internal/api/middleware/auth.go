package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/domain"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/pkg/jwthelper"
)

const principalKey = "principal"

var (
	errMissingToken = errors.New("missing bearer token")
	errUnknownRole  = errors.New("unknown role")
)

type Authenticator struct {
	signingKey []byte
}

func NewAuthenticator(signingKey string) *Authenticator {
	return &Authenticator{
		signingKey: []byte(signingKey),
	}
}

// VerifyJWT resolves the bearer token into a domain.Principal and stores it on
// the context.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			return
		}

		claims, err := jwthelper.ParseToken(a.signingKey, tokenString)
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(err))
			return
		}

		caps, ok := domain.CapabilitiesFor(claims.Role)
		if !ok {
			response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("%w: %q", errUnknownRole, claims.Role)))
			return
		}

		ctx.Set(principalKey, domain.Principal{
			UserID:       claims.UserID,
			Role:         claims.Role,
			Capabilities: caps,
		})
		ctx.Next()
	}
}

// RequireCapability rejects requests whose principal lacks the capability
// picked by has.
func RequireCapability(name string, has func(domain.Capabilities) bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		p, ok := PrincipalFrom(ctx)
		if !ok {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			return
		}
		if !has(p.Capabilities) {
			response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("role %s may not %s", p.Role, name)))
			return
		}
		ctx.Next()
	}
}

func PrincipalFrom(ctx *gin.Context) (domain.Principal, bool) {
	v, ok := ctx.Get(principalKey)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}

func CanManageCatalog(c domain.Capabilities) bool { return c.ManageCatalog }
func CanReceiveStock(c domain.Capabilities) bool  { return c.ReceiveStock }
func CanDispense(c domain.Capabilities) bool      { return c.Dispense }
func CanViewInventory(c domain.Capabilities) bool { return c.ViewInventory }
func CanViewSales(c domain.Capabilities) bool     { return c.ViewSales }
