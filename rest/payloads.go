package rest

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"

	"github.com/mealdiary/mealdiary"
)

// SignupPayload is the registration body.
type SignupPayload struct {
	Name            string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmpassword"`
}

func (r SignupPayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Name, validation.Length(0, 200)),
			validation.Field(&r.Email, validation.Required, is.Email),
			validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
			// Password/confirmation equality is checked by the handler so
			// the mismatch keeps its dedicated error message.
			validation.Field(&r.ConfirmPassword, validation.Required),
		)
	}, "Invalid signup request payload")
}

// SigninPayload is the password login body.
type SigninPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r SigninPayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Email, validation.Required, is.Email),
			validation.Field(&r.Password, validation.Required),
		)
	}, "Invalid signin request payload")
}

// ExternalSigninPayload carries a third-party identity assertion.
type ExternalSigninPayload struct {
	Token string `json:"credential"`
}

func (r ExternalSigninPayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Token, validation.Required),
		)
	}, "Invalid external signin request payload")
}

// UpdateAccountPayload changes name, email, or password. A password
// change additionally carries the current password.
type UpdateAccountPayload struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmNewPassword"`
}

func (r UpdateAccountPayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Username, validation.Length(0, 200)),
			validation.Field(&r.Email, is.Email),
			// A password change without the current password fails the
			// handler's credential check, so no conditional rule here.
			validation.Field(&r.NewPassword, validation.Length(6, 100)),
		)
	}, "Invalid account update payload")
}

// ResetRequestPayload starts the password reset flow.
type ResetRequestPayload struct {
	Email string `json:"email"`
}

func (r ResetRequestPayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Email, validation.Required, is.Email),
		)
	}, "Invalid password reset payload")
}

// ResetFinalizePayload consumes a reset token.
type ResetFinalizePayload struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmpassword"`
}

func (r ResetFinalizePayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
			validation.Field(&r.ConfirmPassword, validation.Required),
		)
	}, "Invalid password reset payload")
}

// DiaryPayload is the create body for a diary.
type DiaryPayload struct {
	Title             string               `json:"title"`
	Date              string               `json:"date"`
	Meals             []mealdiary.Meal     `json:"meals"`
	Nutrients         mealdiary.Nutrients  `json:"nutrients"`
	Demand            mealdiary.Nutrients  `json:"demand"`
	CalorieAdjustment int                  `json:"calorie_adjustment"`
	Private           bool                 `json:"private"`
}

func (r DiaryPayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
			validation.Field(&r.Date, validation.Required),
		)
	}, "Invalid diary payload")
}

// DiaryUpdatePayload is the patch body; nil fields keep stored values.
type DiaryUpdatePayload struct {
	Title             *string              `json:"title"`
	Date              *string              `json:"date"`
	Meals             []mealdiary.Meal     `json:"meals"`
	Nutrients         *mealdiary.Nutrients `json:"nutrients"`
	Demand            *mealdiary.Nutrients `json:"demand"`
	CalorieAdjustment *int                 `json:"calorie_adjustment"`
	Private           *bool                `json:"private"`
}

func (r DiaryUpdatePayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Title, validation.Length(1, 200)),
		)
	}, "Invalid diary update payload")
}

// Patch converts the payload to the repository patch shape.
func (r DiaryUpdatePayload) Patch() *mealdiary.DiaryPatch {
	return &mealdiary.DiaryPatch{
		Title:             r.Title,
		Date:              r.Date,
		Meals:             r.Meals,
		Nutrients:         r.Nutrients,
		Demand:            r.Demand,
		CalorieAdjustment: r.CalorieAdjustment,
		Private:           r.Private,
	}
}

// RatePayload is a single 1..5 rating.
type RatePayload struct {
	Rate int `json:"rate"`
}

func (r RatePayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Rate, validation.Required, validation.Min(1), validation.Max(5)),
		)
	}, "Invalid rating payload")
}
