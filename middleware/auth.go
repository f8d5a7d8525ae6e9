package middleware

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"

	"eventease/database"
	"eventease/errors"
	"eventease/model"
)

const (
	tokenKey    = "identity"
	identityKey = "user"
)

var errNoSubject = stderrors.New("token has no subject")

// Identity is the caller as currently stored, resolved from the token subject.
type Identity struct {
	UserId string
	Email  string
	Name   string
	Role   string
}

// Users looks up the account a token was issued for.
type Users interface {
	GetUser(ctx context.Context, id string) (model.UserData, error)
}

// Authorize verifies the bearer token and then loads its subject from users.
// A deleted account is rejected and role checks use the stored role, so both
// take effect before the token expires.
func Authorize(signingKey string, users Users) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     []byte(signingKey),
		SuccessHandler: loadUser(users),
		ErrorHandler:   jwtError,
		ContextKey:     tokenKey,
	})
}

func loadUser(users Users) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals(tokenKey).(*jwt.Token)
		if !ok {
			return jwtError(c, errNoSubject)
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || claimString(claims, "sub") == "" {
			return jwtError(c, errNoSubject)
		}

		user, err := users.GetUser(c.UserContext(), claimString(claims, "sub"))
		if stderrors.Is(err, database.ErrNotFound) {
			return errors.RaiseError(c, fiber.StatusUnauthorized, "Invalid or expired JWT", "account no longer exists")
		}
		if err != nil {
			slog.Error("load token subject", "user", claimString(claims, "sub"), "err", err)
			return errors.RaiseUnavailableError(c, "could not load account")
		}

		c.Locals(identityKey, Identity{UserId: user.Id, Email: user.Email, Name: user.Name, Role: user.Role})
		return c.Next()
	}
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT", "data": nil})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"status": "error", "message": "Invalid or expired JWT", "data": nil})
}

// RequireRole lets the request through when the caller holds one of roles.
// It must run after Authorize.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := CurrentIdentity(c)
		if !ok {
			return errors.RaisePermissionsError(c, "authentication required")
		}
		for _, role := range roles {
			if id.Role == role {
				return c.Next()
			}
		}
		return errors.RaiseForbiddenError(c, "your role does not allow this operation")
	}
}

// IssueToken signs a token for user that Authorize accepts.
func IssueToken(user model.UserData, signingKey string, ttl time.Duration) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["sub"] = user.Id
	claims["email"] = user.Email
	claims["name"] = user.Name
	claims["role"] = user.Role
	claims["exp"] = time.Now().Add(ttl).Unix()

	return token.SignedString([]byte(signingKey))
}

// CurrentIdentity returns the caller loaded by Authorize.
func CurrentIdentity(c *fiber.Ctx) (Identity, bool) {
	id, ok := c.Locals(identityKey).(Identity)
	return id, ok && id.UserId != ""
}

func IsAdmin(c *fiber.Ctx) bool {
	id, ok := CurrentIdentity(c)
	return ok && id.Role == model.RoleAdmin
}

func claimString(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}
