package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"peoplework/internal/domain"
	"peoplework/internal/service"
)

const authClaimsKey = "auth_claims"

// JWTAuthMiddleware valida el bearer token y guarda los claims en el contexto.
// Sin token o con token inválido/expirado responde 401 con el envelope FAILED.
func JWTAuthMiddleware(jwtSvc *service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSvc == nil {
			respondFailed(c, http.StatusInternalServerError, "jwt not configured", identInvalidToken)
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			respondFailed(c, http.StatusUnauthorized, "Unauthorized", identMissingToken)
			return
		}

		token := strings.TrimSpace(header[len("Bearer "):])
		claims, err := jwtSvc.Verify(token)
		if err != nil {
			respondFailed(c, http.StatusUnauthorized, "Unauthorized", identInvalidToken)
			return
		}

		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

// RequireRole compone sobre JWTAuthMiddleware: rechaza con 403 si el rol del
// token no pertenece al conjunto permitido.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetAuthClaims(c)
		if !ok {
			respondFailed(c, http.StatusUnauthorized, "Unauthorized", identMissingToken)
			return
		}
		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}
		respondFailed(c, http.StatusForbidden, "Forbidden", identForbidden)
	}
}

// GetAuthClaims obtiene los claims del token desde el contexto.
func GetAuthClaims(c *gin.Context) (service.Claims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return service.Claims{}, false
	}
	claims, ok := val.(service.Claims)
	return claims, ok
}
