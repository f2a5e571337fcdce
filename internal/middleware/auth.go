package middleware

import (
	"net/http"
	"strings"

	"srm-service/pkg/jwtutil"
	"srm-service/pkg/logger"
	"srm-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware verifies the JWT token and extracts the principal. Only
// identity is taken from the token; terminal roles and menu grants are
// resolved from storage per request by the services behind the gate.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Track authentication attempts
		if prometheus.AuthAttemptsCounter != nil {
			prometheus.AuthAttemptsCounter.Inc()
		}

		// Extract the token from the Authorization header
		tokenString := c.Request().Header.Get("Authorization")
		if tokenString == "" {
			log.Warn("Missing authorization token")
			if prometheus.AuthErrorsCounter != nil {
				prometheus.AuthErrorsCounter.Inc()
			}
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}

		// Remove "Bearer " prefix if present
		if len(tokenString) > 7 && strings.ToUpper(tokenString[0:7]) == "BEARER " {
			tokenString = tokenString[7:]
		}

		// Validate the token
		claims, err := jwtutil.ValidateToken(tokenString)
		if err != nil {
			log.Warn("Invalid token", zap.Error(err))
			if prometheus.AuthErrorsCounter != nil {
				prometheus.AuthErrorsCounter.Inc()
			}
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
		}

		if prometheus.AuthSuccessCounter != nil {
			prometheus.AuthSuccessCounter.Inc()
		}

		// Store principal information in the context
		c.Set("principal_id", claims.PrincipalID)
		c.Set("email", claims.Email)

		log = log.With(
			zap.Uint("principal_id", claims.PrincipalID),
			zap.String("email", claims.Email),
		)
		c.Set("logger", log)

		return next(c)
	}
}
