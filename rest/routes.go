package rest

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mealdiary/mealdiary"
	"github.com/mealdiary/mealdiary/middleware/authgate"
)

// Dependencies carries everything route registration needs.
type Dependencies struct {
	Logger   mealdiary.Logger
	Repo     mealdiary.RepositoryManager
	Auth     mealdiary.Authenticator
	Tokens   mealdiary.TokenService
	External mealdiary.ExternalDecoder
	Resets   *mealdiary.ResetTokenService
	Mailer   mealdiary.Mailer
	ResetURL string
	Debug    bool

	// Sessions validates bearer tokens at the gate. Defaults to Tokens;
	// set it to a MultiTokenValidator chain when older signing keys must
	// keep validating through a rotation.
	Sessions mealdiary.TokenValidator
}

// RegisterRoutes mounts the public and protected API surface.
func RegisterRoutes(app *fiber.App, deps Dependencies) {
	if deps.Logger == nil {
		deps.Logger = mealdiary.DefaultLogger()
	}

	usersCtrl := &UsersController{
		Debug:    deps.Debug,
		Logger:   deps.Logger,
		Repo:     deps.Repo,
		Auth:     deps.Auth,
		Tokens:   deps.Tokens,
		External: deps.External,
		Resets:   deps.Resets,
		Mailer:   deps.Mailer,
		ResetURL: deps.ResetURL,
	}

	diariesCtrl := &DiariesController{
		Logger: deps.Logger,
		Repo:   deps.Repo,
	}

	if deps.Sessions == nil {
		deps.Sessions = deps.Tokens
	}

	protected := authgate.New(authgate.Config{
		TokenValidator:  deps.Sessions,
		ExternalDecoder: deps.External,
	})

	users := app.Group("/users")
	users.Post("/signup", usersCtrl.Signup)
	users.Post("/signin", usersCtrl.Signin)
	users.Post("/externalsignin", usersCtrl.ExternalSignin)
	users.Post("/resetPassword", usersCtrl.ResetPasswordRequest)
	users.Post("/resetPassword/:token", usersCtrl.ResetPasswordFinalize)

	users.Get("/", protected, usersCtrl.Index)
	users.Patch("/profile/:id", protected, usersCtrl.UpdateProfile)
	users.Patch("/userData/:id", protected, usersCtrl.UpdateAccount)
	users.Delete("/:id", protected, usersCtrl.Delete)

	diaries := app.Group("/diaries")
	diaries.Get("/", diariesCtrl.List)
	diaries.Get("/mine", protected, diariesCtrl.Mine)
	diaries.Post("/", protected, diariesCtrl.Create)
	diaries.Patch("/:id/rate", protected, diariesCtrl.Rate)
	diaries.Patch("/:id", protected, diariesCtrl.Update)
	diaries.Delete("/:id", protected, diariesCtrl.Delete)
}
