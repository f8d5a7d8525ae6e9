package handlers

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"eventease/database"
	"eventease/errors"
	"eventease/middleware"
	"eventease/model"
	"eventease/registration"
)

const minPasswordLength = 6

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type session struct {
	Token string         `json:"token"`
	User  model.UserData `json:"user"`
}

func isPasswordHashCorrect(dbHash, pass string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(dbHash), []byte(pass))
	return err == nil
}

func hashPassword(pass string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h *Handler) Signup(c *fiber.Ctx) error {
	var creds credentials
	if err := c.BodyParser(&creds); err != nil {
		return errors.RaiseBadRequestError(c, "Error on signup request when parse credentials")
	}
	creds.Name = strings.TrimSpace(creds.Name)
	creds.Email = strings.ToLower(strings.TrimSpace(creds.Email))

	switch {
	case creds.Name == "":
		return errors.RaiseBadRequestError(c, "name is required")
	case !registration.ValidEmail(creds.Email):
		return errors.RaiseBadRequestError(c, "email is not valid")
	case len(creds.Password) < minPasswordLength:
		return errors.RaiseBadRequestError(c, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := hashPassword(creds.Password)
	if err != nil {
		return errors.RaiseInternalServerError(c, "could not hash password")
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	user := model.UserData{Name: creds.Name, Email: creds.Email, HashedPassword: hash, Role: model.RoleUser}
	if err := h.Store.CreateUser(ctx, &user); err != nil {
		return h.storeError(c, err, "user")
	}

	return h.issue(c, fiber.StatusCreated, "Success signup", user)
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var creds credentials
	if err := c.BodyParser(&creds); err != nil {
		return errors.RaiseBadRequestError(c, "Error on login request when parse credentials")
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	user, err := h.Store.GetUserByEmail(ctx, strings.TrimSpace(creds.Email))
	if stderrors.Is(err, database.ErrNotFound) {
		return errors.RaiseError(c, fiber.StatusUnauthorized, "Invalid email or password", "")
	}
	if err != nil {
		return h.storeError(c, err, "user")
	}

	if !isPasswordHashCorrect(user.HashedPassword, creds.Password) {
		return errors.RaiseError(c, fiber.StatusUnauthorized, "Invalid email or password", "")
	}

	return h.issue(c, fiber.StatusOK, "Success login", user)
}

func (h *Handler) issue(c *fiber.Ctx, status int, message string, user model.UserData) error {
	t, err := middleware.IssueToken(user, h.SigningKey, h.TokenTTL)
	if err != nil {
		h.log().Error("sign token", "err", err)
		return errors.RaiseInternalServerError(c, "could not issue token")
	}
	return respond(c, status, message, session{Token: t, User: user})
}

func (h *Handler) Me(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)

	ctx, cancel := h.requestContext(c)
	defer cancel()

	user, err := h.Store.GetUser(ctx, id.UserId)
	if err != nil {
		return h.storeError(c, err, "user")
	}
	return respond(c, fiber.StatusOK, "current user", user)
}

// EnsureAdmin creates an admin account for email unless a user with that
// email exists already, in which case the user is promoted.
func EnsureAdmin(ctx context.Context, store database.Store, email, password string) (model.UserData, error) {
	user, err := store.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if user.Role == model.RoleAdmin {
			return user, nil
		}
		return store.UpdateUserRole(ctx, user.Id, model.RoleAdmin)
	case !stderrors.Is(err, database.ErrNotFound):
		return model.UserData{}, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return model.UserData{}, err
	}
	user = model.UserData{Name: "Administrator", Email: email, HashedPassword: hash, Role: model.RoleAdmin}
	if err := store.CreateUser(ctx, &user); err != nil {
		return model.UserData{}, err
	}
	return user, nil
}
