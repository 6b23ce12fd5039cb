package mealdiary

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account model. Accounts bootstrapped from a third-party
// assertion carry External=true and a placeholder password hash that no
// user-entered password can produce.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string         `bun:"name,notnull" json:"name,omitempty"`
	Email         string         `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string         `bun:"password_hash,notnull" json:"-"`
	Profile       map[string]any `bun:"profile,type:jsonb" json:"profile,omitempty"`
	External      bool           `bun:"external,notnull,default:false" json:"external,omitempty"`
	CreatedAt     *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// PublicUser is the redacted projection returned by every account endpoint.
type PublicUser struct {
	ID      uuid.UUID      `json:"id,omitempty"`
	Name    string         `json:"name"`
	Email   string         `json:"email"`
	Profile map[string]any `json:"profile,omitempty"`
}

// Public strips credential material from the record.
func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Profile: u.Profile,
	}
}

// Nutrients is the macro breakdown shared by meals, diaries and demand
// targets.
type Nutrients struct {
	Kcal    float64 `json:"kcal"`
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

// Product is a single food item inside a meal.
type Product struct {
	Name      string    `json:"name"`
	Amount    float64   `json:"amount,omitempty"`
	Nutrients Nutrients `json:"nutrients"`
}

// Meal groups products eaten together.
type Meal struct {
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title"`
	Products  []Product `json:"products,omitempty"`
	Nutrients Nutrients `json:"nutrients"`
}

// Rating is a single peer rating. It is stored with the diary and never
// exposed raw; clients only ever see the RatingSummary projection.
type Rating struct {
	UserID string `json:"user_id"`
	Rate   int    `json:"rate"`
}

// RatingSummary is the public view of a diary's ratings.
type RatingSummary struct {
	Average float64 `json:"average"`
	Rates   int     `json:"rates"`
}

// Diary is a single day of tracked meals.
type Diary struct {
	bun.BaseModel     `bun:"table:diaries,alias:dry"`
	ID                uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title             string     `bun:"title" json:"title,omitempty"`
	Date              string     `bun:"date" json:"date,omitempty"`
	CreatorID         string     `bun:"creator_id,notnull" json:"creator,omitempty"`
	Meals             []Meal     `bun:"meals,type:jsonb" json:"meals,omitempty"`
	Nutrients         Nutrients  `bun:"nutrients,type:jsonb" json:"nutrients"`
	Demand            Nutrients  `bun:"demand,type:jsonb" json:"demand"`
	CalorieAdjustment int        `bun:"calorie_adjustment" json:"calorie_adjustment,omitempty"`
	Private           bool       `bun:"private,notnull,default:false" json:"private,omitempty"`
	Ratings           []Rating   `bun:"ratings,type:jsonb" json:"-"`
	CreatedAt         *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt         *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// PublicDiary is a diary with its ratings collapsed to the summary.
type PublicDiary struct {
	*Diary
	Rating RatingSummary `json:"rating"`
}

// Public redacts the private rating entries down to their summary.
func (d *Diary) Public() *PublicDiary {
	if d == nil {
		return nil
	}
	return &PublicDiary{
		Diary:  d,
		Rating: SummarizeRatings(d.Ratings),
	}
}

// RatedBy reports whether the given caller already rated the diary.
func (d *Diary) RatedBy(userID string) bool {
	for _, r := range d.Ratings {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// SummarizeRatings computes the public average over private rating entries.
func SummarizeRatings(ratings []Rating) RatingSummary {
	if len(ratings) == 0 {
		return RatingSummary{}
	}

	total := 0
	for _, r := range ratings {
		total += r.Rate
	}

	return RatingSummary{
		Average: float64(total) / float64(len(ratings)),
		Rates:   len(ratings),
	}
}
