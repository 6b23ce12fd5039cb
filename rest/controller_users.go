package rest

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"

	"github.com/mealdiary/mealdiary"
)

// UsersController serves account endpoints: signup, the two signin
// flavors, profile reads and writes, deletion, and password reset.
type UsersController struct {
	Debug    bool
	Logger   mealdiary.Logger
	Repo     mealdiary.RepositoryManager
	Auth     mealdiary.Authenticator
	Tokens   mealdiary.TokenService
	External mealdiary.ExternalDecoder
	Resets   *mealdiary.ResetTokenService
	Mailer   mealdiary.Mailer
	ResetURL string
}

type sessionResponse struct {
	Result *mealdiary.PublicUser `json:"result"`
	Token  string                `json:"token"`
}

// Signup registers an account and opens a session.
func (a *UsersController) Signup(c *fiber.Ctx) error {
	payload := new(SignupPayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("signup parse payload: %v", err)
		return RespondError(c, errors.Wrap(err, errors.CategoryBadInput, "Could not parse request body"))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("signup validate payload: %v", err)
		return RespondError(c, err)
	}

	if a.Debug {
		fmt.Println("======= SIGNUP ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=====================")
	}

	var resp *mealdiary.SignupResponse
	handler := mealdiary.NewSignupHandler(a.Repo, a.Tokens)
	err := handler.Execute(c.UserContext(), mealdiary.SignupMessage{
		Name:            payload.Name,
		Email:           payload.Email,
		Password:        payload.Password,
		ConfirmPassword: payload.ConfirmPassword,
		OnResponse:      func(r *mealdiary.SignupResponse) { resp = r },
	})
	if err != nil {
		return RespondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(sessionResponse{
		Result: resp.User.Public(),
		Token:  resp.Token,
	})
}

// Signin verifies credentials and mints a session token.
func (a *UsersController) Signin(c *fiber.Ctx) error {
	payload := new(SigninPayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("signin parse payload: %v", err)
		return RespondError(c, errors.Wrap(err, errors.CategoryBadInput, "Could not parse request body"))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("signin validate payload: %v", err)
		return RespondError(c, err)
	}

	token, user, err := a.Auth.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return RespondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(sessionResponse{
		Result: user.Public(),
		Token:  token,
	})
}

// ExternalSignin accepts a third-party assertion, provisioning the
// account on first contact, and echoes the assertion as the session
// token.
func (a *UsersController) ExternalSignin(c *fiber.Ctx) error {
	payload := new(ExternalSigninPayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("external signin parse payload: %v", err)
		return RespondError(c, errors.Wrap(err, errors.CategoryBadInput, "Could not parse request body"))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("external signin validate payload: %v", err)
		return RespondError(c, err)
	}

	var resp *mealdiary.ExternalSigninResponse
	handler := mealdiary.NewExternalSigninHandler(a.Repo, a.External)
	err := handler.Execute(c.UserContext(), mealdiary.ExternalSigninMessage{
		Assertion:  payload.Token,
		OnResponse: func(r *mealdiary.ExternalSigninResponse) { resp = r },
	})
	if err != nil {
		return RespondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(sessionResponse{
		Result: resp.User.Public(),
		Token:  resp.Token,
	})
}

// Index lists every account, credential material redacted.
func (a *UsersController) Index(c *fiber.Ctx) error {
	if _, ok := mealdiary.CallerFromFiber(c); !ok {
		return RespondError(c, mealdiary.ErrUnauthenticated)
	}

	users, err := a.Repo.Users().ListAll(c.UserContext())
	if err != nil {
		return RespondError(c, err)
	}

	out := make([]*mealdiary.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"result": out})
}

// UpdateProfile replaces the caller's profile with the request body.
func (a *UsersController) UpdateProfile(c *fiber.Ctx) error {
	caller, ok := mealdiary.CallerFromFiber(c)
	if !ok {
		return RespondError(c, mealdiary.ErrUnauthenticated)
	}

	// The body IS the profile object, stored as-is.
	profile := map[string]any{}
	if err := c.BodyParser(&profile); err != nil {
		a.Logger.Error("profile update parse payload: %v", err)
		return RespondError(c, errors.Wrap(err, errors.CategoryBadInput, "Could not parse request body"))
	}

	var resp *mealdiary.UpdateProfileResponse
	handler := mealdiary.NewUpdateProfileHandler(a.Repo)
	err := handler.Execute(c.UserContext(), mealdiary.UpdateProfileMessage{
		Identifier: caller.Identifier(),
		Profile:    profile,
		OnResponse: func(r *mealdiary.UpdateProfileResponse) { resp = r },
	})
	if err != nil {
		return RespondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"result": resp.User.Profile})
}

// UpdateAccount changes account data, verifying the current password
// before a password change, and reissues the session token since the
// email inside it may have changed.
func (a *UsersController) UpdateAccount(c *fiber.Ctx) error {
	caller, ok := mealdiary.CallerFromFiber(c)
	if !ok {
		return RespondError(c, mealdiary.ErrUnauthenticated)
	}

	// Externally managed accounts have no local credential material to
	// change.
	if caller.Kind == mealdiary.CallerByEmail {
		return c.Status(fiber.StatusOK).JSON(nil)
	}

	payload := new(UpdateAccountPayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("account update parse payload: %v", err)
		return RespondError(c, errors.Wrap(err, errors.CategoryBadInput, "Could not parse request body"))
	}

	if err := payload.Validate(); err != nil {
		return RespondError(c, err)
	}

	var resp *mealdiary.UpdateAccountResponse
	handler := mealdiary.NewUpdateAccountHandler(a.Repo)
	err := handler.Execute(c.UserContext(), mealdiary.UpdateAccountMessage{
		Identifier:      caller.Identifier(),
		Name:            payload.Username,
		Email:           payload.Email,
		Password:        payload.NewPassword,
		ConfirmPassword: payload.ConfirmPassword,
		OldPassword:     payload.OldPassword,
		OnResponse:      func(r *mealdiary.UpdateAccountResponse) { resp = r },
	})
	if err != nil {
		return RespondError(c, err)
	}

	token, err := a.Tokens.Generate(resp.User, mealdiary.DefaultSessionTTL)
	if err != nil {
		return RespondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(sessionResponse{
		Result: resp.User.Public(),
		Token:  token,
	})
}

// Delete removes the caller's account.
func (a *UsersController) Delete(c *fiber.Ctx) error {
	caller, ok := mealdiary.CallerFromFiber(c)
	if !ok {
		return RespondError(c, mealdiary.ErrUnauthenticated)
	}

	handler := mealdiary.NewDeleteAccountHandler(a.Repo)
	err := handler.Execute(c.UserContext(), mealdiary.DeleteAccountMessage{
		Identifier: caller.Identifier(),
	})
	if err != nil {
		return RespondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Account deleted",
		"result":  nil,
	})
}

// ResetPasswordRequest starts the reset flow. The response is identical
// whether or not the email matched an account.
func (a *UsersController) ResetPasswordRequest(c *fiber.Ctx) error {
	payload := new(ResetRequestPayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("password reset parse payload: %v", err)
		return RespondError(c, errors.Wrap(err, errors.CategoryBadInput, "Could not parse request body"))
	}

	if err := payload.Validate(); err != nil {
		return RespondError(c, err)
	}

	// Unknown addresses succeed silently inside the handler, so any
	// error reaching this point is an infrastructure failure.
	handler := mealdiary.NewInitializePasswordResetHandler(a.Repo, a.Resets, a.Mailer).
		WithLogger(a.Logger)
	err := handler.Execute(c.UserContext(), mealdiary.InitializePasswordResetMessage{
		Email:    payload.Email,
		ResetURL: a.ResetURL,
	})
	if err != nil {
		return RespondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "If the account exists, a reset link has been sent",
	})
}

// ResetPasswordFinalize consumes a reset token and installs the new
// password.
func (a *UsersController) ResetPasswordFinalize(c *fiber.Ctx) error {
	token := c.Params("token")

	payload := new(ResetFinalizePayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("password reset finalize parse payload: %v", err)
		return RespondError(c, errors.Wrap(err, errors.CategoryBadInput, "Could not parse request body"))
	}

	if err := payload.Validate(); err != nil {
		return RespondError(c, err)
	}

	handler := mealdiary.NewFinalizePasswordResetHandler(a.Repo, a.Resets)
	err := handler.Execute(c.UserContext(), mealdiary.FinalizePasswordResetMessage{
		Token:           token,
		Password:        payload.Password,
		ConfirmPassword: payload.ConfirmPassword,
	})
	if err != nil {
		return RespondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Password updated",
	})
}
