package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"

	"github.com/mealdiary/mealdiary"
)

// DiariesController serves diary CRUD plus peer rating.
type DiariesController struct {
	Logger mealdiary.Logger
	Repo   mealdiary.RepositoryManager
}

// List returns every public diary with rating summaries.
func (a *DiariesController) List(c *fiber.Ctx) error {
	records, err := a.Repo.Diaries().ListPublic(c.UserContext())
	if err != nil {
		return RespondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"result": publicDiaries(records)})
}

// Mine returns all of the caller's diaries, private included.
func (a *DiariesController) Mine(c *fiber.Ctx) error {
	caller, ok := mealdiary.CallerFromFiber(c)
	if !ok {
		return RespondError(c, mealdiary.ErrUnauthenticated)
	}

	records, err := a.Repo.Diaries().ListByCreator(c.UserContext(), caller.Identifier())
	if err != nil {
		return RespondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"result": publicDiaries(records)})
}

// Create stores a new diary owned by the caller.
func (a *DiariesController) Create(c *fiber.Ctx) error {
	caller, ok := mealdiary.CallerFromFiber(c)
	if !ok {
		return RespondError(c, mealdiary.ErrUnauthenticated)
	}

	payload := new(DiaryPayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("diary create parse payload: %v", err)
		return RespondError(c, errors.Wrap(err, errors.CategoryBadInput, "Could not parse request body"))
	}

	if err := payload.Validate(); err != nil {
		return RespondError(c, err)
	}

	record := &mealdiary.Diary{
		Title:             payload.Title,
		Date:              payload.Date,
		CreatorID:         caller.Identifier(),
		Meals:             payload.Meals,
		Nutrients:         payload.Nutrients,
		Demand:            payload.Demand,
		CalorieAdjustment: payload.CalorieAdjustment,
		Private:           payload.Private,
	}

	record, err := a.Repo.Diaries().Create(c.UserContext(), record)
	if err != nil {
		return RespondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"result": record.Public()})
}

// Update patches a diary the caller owns.
func (a *DiariesController) Update(c *fiber.Ctx) error {
	caller, ok := mealdiary.CallerFromFiber(c)
	if !ok {
		return RespondError(c, mealdiary.ErrUnauthenticated)
	}

	id, err := diaryID(c)
	if err != nil {
		return RespondError(c, err)
	}

	payload := new(DiaryUpdatePayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("diary update parse payload: %v", err)
		return RespondError(c, errors.Wrap(err, errors.CategoryBadInput, "Could not parse request body"))
	}

	if err := payload.Validate(); err != nil {
		return RespondError(c, err)
	}

	record, err := a.Repo.Diaries().UpdateOwned(c.UserContext(), id, caller.Identifier(), payload.Patch())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return RespondError(c, notFoundDiary())
		}
		return RespondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"result": record.Public()})
}

// Delete removes a diary the caller owns.
func (a *DiariesController) Delete(c *fiber.Ctx) error {
	caller, ok := mealdiary.CallerFromFiber(c)
	if !ok {
		return RespondError(c, mealdiary.ErrUnauthenticated)
	}

	id, err := diaryID(c)
	if err != nil {
		return RespondError(c, err)
	}

	if err := a.Repo.Diaries().DeleteOwned(c.UserContext(), id, caller.Identifier()); err != nil {
		if repository.IsRecordNotFound(err) {
			return RespondError(c, notFoundDiary())
		}
		return RespondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Diary deleted"})
}

// Rate records the caller's rating, replacing an earlier one.
func (a *DiariesController) Rate(c *fiber.Ctx) error {
	caller, ok := mealdiary.CallerFromFiber(c)
	if !ok {
		return RespondError(c, mealdiary.ErrUnauthenticated)
	}

	id, err := diaryID(c)
	if err != nil {
		return RespondError(c, err)
	}

	payload := new(RatePayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("diary rate parse payload: %v", err)
		return RespondError(c, errors.Wrap(err, errors.CategoryBadInput, "Could not parse request body"))
	}

	if err := payload.Validate(); err != nil {
		return RespondError(c, err)
	}

	record, err := a.Repo.Diaries().Rate(c.UserContext(), id, mealdiary.Rating{
		UserID: caller.Identifier(),
		Rate:   payload.Rate,
	})
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return RespondError(c, notFoundDiary())
		}
		return RespondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"result": record.Public()})
}

func diaryID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, errors.Wrap(err, errors.CategoryBadInput, "Invalid diary id").
			WithCode(errors.CodeBadRequest).
			WithTextCode(mealdiary.TextCodeInvalidInput)
	}
	return id, nil
}

func notFoundDiary() error {
	return errors.New("Diary not found", errors.CategoryNotFound).
		WithCode(errors.CodeNotFound).
		WithTextCode(mealdiary.TextCodeNotFound)
}

func publicDiaries(records []*mealdiary.Diary) []*mealdiary.PublicDiary {
	out := make([]*mealdiary.PublicDiary, 0, len(records))
	for _, r := range records {
		out = append(out, r.Public())
	}
	return out
}
