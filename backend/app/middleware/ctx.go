package middleware

import (
	"context"

	jwtutil "mirage/backend/app/jwt"
)

func GetClaims(ctx context.Context) *jwtutil.Claims {
	claims, _ := ctx.Value(ClaimsKey).(*jwtutil.Claims)
	return claims
}
