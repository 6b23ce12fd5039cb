package mealdiary

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Diaries interface {
	repository.Repository[*Diary]

	ListPublic(ctx context.Context) ([]*Diary, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*Diary, error)
	Create(ctx context.Context, record *Diary, criteria ...repository.InsertCriteria) (*Diary, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Diary, criteria ...repository.InsertCriteria) (*Diary, error)

	UpdateOwned(ctx context.Context, id uuid.UUID, creatorID string, patch *DiaryPatch) (*Diary, error)
	UpdateOwnedTx(ctx context.Context, tx bun.IDB, id uuid.UUID, creatorID string, patch *DiaryPatch) (*Diary, error)
	DeleteOwned(ctx context.Context, id uuid.UUID, creatorID string) error
	DeleteOwnedTx(ctx context.Context, tx bun.IDB, id uuid.UUID, creatorID string) error

	Rate(ctx context.Context, id uuid.UUID, rating Rating) (*Diary, error)
	RateTx(ctx context.Context, tx bun.IDB, id uuid.UUID, rating Rating) (*Diary, error)
}

type diaries struct {
	repository.Repository[*Diary]
	db *bun.DB
}

var (
	_ Diaries                       = (*diaries)(nil)
	_ repository.Repository[*Diary] = (*diaries)(nil)
)

func NewDiariesRepository(db *bun.DB) Diaries {
	repo := repository.NewRepository[*Diary](db, repository.ModelHandlers[*Diary]{
		NewRecord: func() *Diary { return &Diary{} },
		GetID: func(d *Diary) uuid.UUID {
			if d == nil {
				return uuid.Nil
			}
			return d.ID
		},
		SetID: func(d *Diary, id uuid.UUID) {
			if d != nil {
				d.ID = id
			}
		},
	})

	return &diaries{
		Repository: repo,
		db:         db,
	}
}

// ListPublic returns every diary not marked private, newest first.
func (a *diaries) ListPublic(ctx context.Context) ([]*Diary, error) {
	var records []*Diary
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.private = ?", false).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListByCreator returns all diaries owned by the creator, private included.
func (a *diaries) ListByCreator(ctx context.Context, creatorID string) ([]*Diary, error) {
	var records []*Diary
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.creator_id = ?", creatorID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (a *diaries) Create(ctx context.Context, record *Diary, criteria ...repository.InsertCriteria) (*Diary, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *diaries) CreateTx(ctx context.Context, tx bun.IDB, record *Diary, criteria ...repository.InsertCriteria) (*Diary, error) {
	prepareDiaryDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

// DiaryPatch carries the fields an update may change. Nil fields keep
// the stored value.
type DiaryPatch struct {
	Title             *string
	Date              *string
	Meals             []Meal
	Nutrients         *Nutrients
	Demand            *Nutrients
	CalorieAdjustment *int
	Private           *bool
}

func (a *diaries) UpdateOwned(ctx context.Context, id uuid.UUID, creatorID string, patch *DiaryPatch) (*Diary, error) {
	return a.UpdateOwnedTx(ctx, a.db, id, creatorID, patch)
}

// UpdateOwnedTx updates a diary only when the caller owns it. A diary
// owned by someone else reads the same as a missing one.
func (a *diaries) UpdateOwnedTx(ctx context.Context, tx bun.IDB, id uuid.UUID, creatorID string, patch *DiaryPatch) (*Diary, error) {
	record, err := a.getOwnedTx(ctx, tx, id, creatorID)
	if err != nil {
		return nil, err
	}

	applyDiaryPatch(record, patch)

	return a.Repository.UpdateTx(ctx, tx, record, repository.UpdateByID(id.String()))
}

func (a *diaries) DeleteOwned(ctx context.Context, id uuid.UUID, creatorID string) error {
	return a.DeleteOwnedTx(ctx, a.db, id, creatorID)
}

func (a *diaries) DeleteOwnedTx(ctx context.Context, tx bun.IDB, id uuid.UUID, creatorID string) error {
	record, err := a.getOwnedTx(ctx, tx, id, creatorID)
	if err != nil {
		return err
	}
	return a.Repository.DeleteTx(ctx, tx, record)
}

func (a *diaries) Rate(ctx context.Context, id uuid.UUID, rating Rating) (*Diary, error) {
	return a.RateTx(ctx, a.db, id, rating)
}

// RateTx records the caller's rating, replacing any rating they already
// placed on the diary. Creators cannot rate their own diary.
func (a *diaries) RateTx(ctx context.Context, tx bun.IDB, id uuid.UUID, rating Rating) (*Diary, error) {
	record := &Diary{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id.String()).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}

	if record.CreatorID == rating.UserID {
		return nil, ErrOwnDiaryRating
	}

	replaced := false
	for i, r := range record.Ratings {
		if r.UserID == rating.UserID {
			record.Ratings[i].Rate = rating.Rate
			replaced = true
			break
		}
	}
	if !replaced {
		record.Ratings = append(record.Ratings, rating)
	}

	return a.Repository.UpdateTx(ctx, tx, record, repository.UpdateByID(id.String()))
}

func (a *diaries) getOwnedTx(ctx context.Context, tx bun.IDB, id uuid.UUID, creatorID string) (*Diary, error) {
	record := &Diary{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id.String()).
		Where("?TableAlias.creator_id = ?", creatorID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id":         id.String(),
					"creator_id": creatorID,
				})
		}
		return nil, err
	}

	return record, nil
}

func applyDiaryPatch(record *Diary, patch *DiaryPatch) {
	if patch == nil {
		return
	}

	if patch.Title != nil {
		record.Title = *patch.Title
	}
	if patch.Date != nil {
		record.Date = *patch.Date
	}
	if patch.Meals != nil {
		record.Meals = patch.Meals
	}
	if patch.Nutrients != nil {
		record.Nutrients = *patch.Nutrients
	}
	if patch.Demand != nil {
		record.Demand = *patch.Demand
	}
	if patch.CalorieAdjustment != nil {
		record.CalorieAdjustment = *patch.CalorieAdjustment
	}
	if patch.Private != nil {
		record.Private = *patch.Private
	}
}

func prepareDiaryDefaults(record *Diary) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.Ratings == nil {
		record.Ratings = []Rating{}
	}
}
