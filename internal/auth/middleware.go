package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// DeviceIDLocal is the fiber locals key holding the authenticated device.
const DeviceIDLocal = "device_id"

var parseMiddlewareClaimsFn = jwt.ParseWithClaims

// JWTMiddleware admits requests carrying a device token signed with secret.
// Tokens without a device claim are refused.
func JWTMiddleware(secret string) fiber.Handler {
	keyFn := func(_ *jwt.Token) (interface{}, error) { return []byte(secret), nil }

	return func(c *fiber.Ctx) error {
		raw := bearerFromHeader(c.Get(fiber.HeaderAuthorization))
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		token, err := parseMiddlewareClaimsFn(raw, &Claims{}, keyFn,
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		claims, ok := token.Claims.(*Claims)
		if !ok || !token.Valid || claims.DeviceID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, ErrTokenInvalid.Error())
		}

		c.Locals(DeviceIDLocal, claims.DeviceID)
		return c.Next()
	}
}

func bearerFromHeader(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
