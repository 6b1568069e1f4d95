package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

const bearerPrefix = "Bearer "

// AuthController is the session boundary: it maps the account operations to
// HTTP semantics and nothing else. Tokens travel both ways in two forms, a
// cookie and an explicit authToken JSON field, since they are stateless and
// verifiable from either.
type AuthController struct {
	Debug      bool
	Logger     Logger
	Accounts   *Accounts
	CookieName string
	CookieTTL  time.Duration
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func NewAuthController(accounts *Accounts, cfg *Config, opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Debug:      cfg.Debug,
		Logger:     defLogger{},
		Accounts:   accounts,
		CookieName: cfg.CookieName,
		CookieTTL:  cfg.UserTokenTTL,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Accounts == nil {
		panic("Missing Accounts service in auth controller...")
	}

	return c
}

func RegisterAuthRoutes(app *fiber.App, controller *AuthController) {
	app.Post("/signup", controller.SignUp)
	app.Post("/signin", controller.SignIn)
	app.Get("/current-user", controller.CurrentUser)
	app.Post("/modify-user", controller.ModifyUser)
	app.Get("/signout", controller.SignOut)
}

func (a *AuthController) SignUp(ctx *fiber.Ctx) error {
	payload, err := a.parseBody(ctx)
	if err != nil {
		return a.renderError(ctx, err)
	}

	session, err := a.Accounts.SignUp(ctx.UserContext(), payload)
	if err != nil {
		return a.renderError(ctx, err)
	}

	a.setAuthCookie(ctx, session.Token)

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   fmt.Sprintf("User successfully created! Welcome, %s!", session.User.Username),
		"user":      session.User,
		"authToken": session.Token,
	})
}

func (a *AuthController) SignIn(ctx *fiber.Ctx) error {
	payload, err := a.parseBody(ctx)
	if err != nil {
		return a.renderError(ctx, err)
	}

	session, err := a.Accounts.SignIn(ctx.UserContext(), payload)
	if err != nil {
		return a.renderError(ctx, err)
	}

	a.setAuthCookie(ctx, session.Token)

	return ctx.JSON(fiber.Map{
		"message":   fmt.Sprintf("Welcome, %s!", session.User.Username),
		"user":      session.User,
		"authToken": session.Token,
	})
}

func (a *AuthController) CurrentUser(ctx *fiber.Ctx) error {
	profile, err := a.Accounts.CurrentUser(ctx.UserContext(), a.tokenFromRequest(ctx))
	if err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"user": profile,
	})
}

func (a *AuthController) ModifyUser(ctx *fiber.Ctx) error {
	payload, err := a.parseBody(ctx)
	if err != nil {
		return a.renderError(ctx, err)
	}

	// The token is not part of the validated payload shape.
	delete(payload, "authToken")

	profile, err := a.Accounts.Modify(ctx.UserContext(), a.tokenFromRequest(ctx), payload)
	if err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"message": "User successfully updated!",
		"user":    profile,
	})
}

// SignOut is stateless: the token stays valid until expiry, the client is
// just told to discard it.
func (a *AuthController) SignOut(ctx *fiber.Ctx) error {
	a.clearAuthCookie(ctx)

	return ctx.JSON(fiber.Map{
		"message": "You are now signed out!",
	})
}

func (a *AuthController) parseBody(ctx *fiber.Ctx) (map[string]any, error) {
	payload := map[string]any{}
	if len(ctx.Body()) == 0 {
		return payload, nil
	}

	if err := ctx.BodyParser(&payload); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "malformed request body").
			WithCode(fiber.StatusBadRequest)
	}

	return payload, nil
}

// tokenFromRequest looks for the bearer token in the auth cookie, the
// Authorization header, and the authToken body field, in that order.
func (a *AuthController) tokenFromRequest(ctx *fiber.Ctx) string {
	if cookie := ctx.Cookies(a.CookieName); cookie != "" {
		return strings.TrimPrefix(cookie, bearerPrefix)
	}

	if header := ctx.Get(fiber.HeaderAuthorization); header != "" {
		return strings.TrimPrefix(header, bearerPrefix)
	}

	if len(ctx.Body()) > 0 {
		payload := map[string]any{}
		if err := ctx.BodyParser(&payload); err == nil {
			if token, ok := payload["authToken"].(string); ok {
				return token
			}
		}
	}

	return ""
}

func (a *AuthController) setAuthCookie(ctx *fiber.Ctx, token string) {
	ctx.Cookie(&fiber.Cookie{
		Name:     a.CookieName,
		Value:    bearerPrefix + token,
		Expires:  time.Now().Add(a.CookieTTL),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *AuthController) clearAuthCookie(ctx *fiber.Ctx) {
	ctx.Cookie(&fiber.Cookie{
		Name:     a.CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

// renderError translates taxonomy errors into the status-code contract.
// Anything unrecognized is treated as a server fault and answered with a
// generic message so no store or signing internals leak to the caller.
func (a *AuthController) renderError(ctx *fiber.Ctx, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(fiber.StatusInternalServerError)
	}

	if fields, ok := ValidationErrors(richErr); ok {
		if a.Debug {
			a.Logger.Debug("validation rejected request: %s", print.MaybePrettyJSON(fields))
		}
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"validationErrors": fields,
		})
	}

	status := richErr.Code
	if status == 0 {
		status = fiber.StatusInternalServerError
	}

	if status >= fiber.StatusInternalServerError {
		a.Logger.Error("request failed",
			"category", richErr.Category,
			"error", richErr.Message,
			"path", ctx.OriginalURL(),
		)
		return ctx.Status(status).JSON(fiber.Map{
			"error": "An unexpected server error occurred",
		})
	}

	return ctx.Status(status).JSON(fiber.Map{
		"error": richErr.Message,
		"code":  richErr.TextCode,
	})
}
