// Package market defines the domain model of the marketplace bot:
// users, listings, and the conversational session attached to a user.
package market

import "time"

// User is a bot user, created on first contact and kept for the whole
// process lifetime (or persisted, depending on the store backing it).
type User struct {
	ID        int64     `db:"id"`
	Username  string    `db:"username"`
	FirstName string    `db:"first_name"`
	Platinum  bool      `db:"platinum"`
	CreatedAt time.Time `db:"created_at"`

	// Session is the single active wizard of the user, nil when idle.
	Session *Session `db:"-"`
}

// Listing is a published sale offer. Immutable once created.
type Listing struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	Title       string    `db:"title"`
	Price       int64     `db:"price"`
	Style       string    `db:"style"`
	Gender      string    `db:"gender"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	Approved    bool      `db:"approved"`
}

// Flow names a multi-step wizard.
type Flow string

// FlowSell is the listing creation wizard, currently the only flow.
const FlowSell Flow = "sell"

// Step identifies one state within a flow's linear step sequence.
type Step string

// Steps of the sell flow, in wizard order.
const (
	StepTitle       Step = "title"
	StepPrice       Step = "price"
	StepStyle       Step = "style"
	StepGender      Step = "gender"
	StepDescription Step = "description"
	StepPhoto       Step = "photo"
)

// Draft accumulates wizard input, one field per completed step.
type Draft struct {
	Title       string `json:"title,omitempty"`
	Price       int64  `json:"price,omitempty"`
	Style       string `json:"style,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Description string `json:"description,omitempty"`
}

// Session is an in-flight wizard. It belongs to exactly one user and is
// destroyed when the wizard completes or is abandoned.
type Session struct {
	Flow      Flow      `json:"flow"`
	Step      Step      `json:"step"`
	Draft     Draft     `json:"draft"`
	UpdatedAt time.Time `json:"updated_at"`
}
