package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Dosada05/tournament-liveops/models"
	"github.com/golang-jwt/jwt/v4"
)

// Имена JWT claims.
const (
	jwtClaimOperatorID = "operator_id"
	jwtClaimRole       = "role"
)

func GetOperatorIDFromContext(ctx context.Context) (int, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return 0, errors.New("operator claims not found in context or invalid type")
	}

	idClaim, ok := claims[jwtClaimOperatorID]
	if !ok {
		return 0, fmt.Errorf("missing '%s' claim in token", jwtClaimOperatorID)
	}

	// Числа из JSON приходят как float64; строка — запасной вариант.
	idFloat, ok := idClaim.(float64)
	if !ok {
		if idStr, okStr := idClaim.(string); okStr {
			if id, err := strconv.Atoi(idStr); err == nil && id > 0 {
				return id, nil
			}
		}
		return 0, fmt.Errorf("invalid type for '%s' claim: expected float64 or string, got %T", jwtClaimOperatorID, idClaim)
	}

	if idFloat != float64(int(idFloat)) {
		return 0, fmt.Errorf("'%s' claim is not an integer: %f", jwtClaimOperatorID, idFloat)
	}
	id := int(idFloat)
	if id <= 0 {
		return 0, fmt.Errorf("invalid operator ID value in '%s' claim: %d", jwtClaimOperatorID, id)
	}
	return id, nil
}

func GetOperatorRoleFromContext(ctx context.Context) (string, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return "", errors.New("operator claims not found in context or invalid type")
	}

	roleClaim, ok := claims[jwtClaimRole]
	if !ok {
		return "", fmt.Errorf("missing '%s' claim in token", jwtClaimRole)
	}
	roleStr, ok := roleClaim.(string)
	if !ok {
		return "", fmt.Errorf("invalid type for '%s' claim: expected string, got %T", jwtClaimRole, roleClaim)
	}

	switch roleStr {
	case models.RoleOperator, models.RoleViewer:
		return roleStr, nil
	default:
		return "", fmt.Errorf("invalid role value in claim: %q", roleStr)
	}
}
