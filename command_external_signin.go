package mealdiary

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

type ExternalSigninMessage struct {
	Assertion  string `json:"token"`
	OnResponse func(resp *ExternalSigninResponse)
}

func (e ExternalSigninMessage) Type() string { return "user.external_signin" }

type ExternalSigninResponse struct {
	User *User
	// Token is the third-party assertion echoed back; the auth gate
	// recognizes it by length and routes it through the external path.
	Token string
}

type ExternalSigninHandler struct {
	repo    RepositoryManager
	decoder ExternalDecoder
}

func NewExternalSigninHandler(repo RepositoryManager, decoder ExternalDecoder) *ExternalSigninHandler {
	return &ExternalSigninHandler{repo: repo, decoder: decoder}
}

func (h *ExternalSigninHandler) Execute(ctx context.Context, event ExternalSigninMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during external signin",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ExternalSigninHandler) execute(ctx context.Context, event ExternalSigninMessage) error {
	resp := &ExternalSigninResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	claims, err := h.decoder.Decode(event.Assertion)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryAuth, "could not decode external assertion")
	}

	if claims.Email == "" {
		return goerrors.New("external assertion is missing the email claim", goerrors.CategoryBadInput).
			WithTextCode(TextCodeInvalidInput)
	}

	record := &User{
		Name:     claims.Name,
		Email:    claims.Email,
		External: true,
		// A placeholder no user-entered password can match, so the
		// account stays unusable through the password signin path.
		PasswordHash: RandomPasswordHash(),
	}

	// Deterministic ID so repeated signins resolve the same account even
	// under concurrent first requests.
	if id, err := hashid.NewUUID(claims.Email); err == nil {
		record.ID = id
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err := h.repo.Users().GetOrCreateTx(ctx, tx, record)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not resolve external account")
		}
		resp.User = user
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "external signin transaction failed")
	}

	resp.Token = event.Assertion

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
