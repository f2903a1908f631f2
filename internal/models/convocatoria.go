package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultInstitution is used when a convocatoria is created without an
// explicit responsible institution.
const DefaultInstitution = "Instituto Municipal de Cultura Física y Deporte"

type Category string

const (
	CategoryOpen     Category = "Open"
	CategoryYouth    Category = "Youth"
	CategoryVeterans Category = "Veterans"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryOpen, CategoryYouth, CategoryVeterans:
		return true
	}
	return false
}

func Categories() []Category {
	return []Category{CategoryOpen, CategoryYouth, CategoryVeterans}
}

type Division string

const (
	DivisionWomens Division = "Women's"
	DivisionMens   Division = "Men's"
	DivisionMixed  Division = "Mixed"
)

func (d Division) IsValid() bool {
	switch d {
	case DivisionWomens, DivisionMens, DivisionMixed:
		return true
	}
	return false
}

func Divisions() []Division {
	return []Division{DivisionWomens, DivisionMens, DivisionMixed}
}

type Status string

const (
	StatusOpen       Status = "Open"
	StatusClosed     Status = "Closed"
	StatusInProgress Status = "In Progress"
	StatusFinished   Status = "Finished"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusClosed, StatusInProgress, StatusFinished:
		return true
	}
	return false
}

func Statuses() []Status {
	return []Status{StatusOpen, StatusClosed, StatusInProgress, StatusFinished}
}

// Convocatoria is a sports-tournament announcement. Active acts as the
// soft-delete flag: inactive records are excluded from listings but kept in
// the table.
type Convocatoria struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`

	Name        string `gorm:"not null" json:"name"`
	Sport       string `gorm:"not null" json:"sport"`
	Description string `json:"description"`

	LogoPath       string `json:"logo_path"`
	BackgroundPath string `json:"background_path"`

	StartDate            time.Time `gorm:"type:date;not null" json:"start_date"`
	RegistrationDeadline time.Time `gorm:"type:date;not null" json:"registration_deadline"`

	PreMeetingDate *time.Time `gorm:"type:date" json:"pre_meeting_date"`
	PreMeetingTime *string    `gorm:"type:varchar(5)" json:"pre_meeting_time"`

	Category Category `gorm:"type:varchar(20);not null" json:"category"`
	Division Division `gorm:"type:varchar(10);not null" json:"division"`
	Status   Status   `gorm:"type:varchar(20);not null;default:'Open'" json:"status"`

	OrganizingCommittee string `json:"organizing_committee"`

	CompetitionFormat string `json:"competition_format"`
	FinalPhase        string `json:"final_phase"`

	RegistrationFee      float64 `gorm:"type:numeric(10,2);not null;default:0" json:"registration_fee"`
	PaymentMethod        string  `json:"payment_method"`
	RegistrationLocation string  `json:"registration_location"`

	Requirements      string `json:"requirements"`
	RequiredDocuments string `json:"required_documents"`

	Regulations string `json:"regulations"`

	PrizeFirst      string `json:"prize_first"`
	PrizeSecond     string `json:"prize_second"`
	PrizeThird      string `json:"prize_third"`
	PrizeAdditional string `json:"prize_additional"`

	Arbitration    string   `json:"arbitration"`
	ArbitrationFee *float64 `gorm:"type:numeric(10,2)" json:"arbitration_fee"`

	BoardMeetingDescription string     `json:"board_meeting_description"`
	BoardMeetingDate        *time.Time `gorm:"type:date" json:"board_meeting_date"`
	BoardMeetingTime        *string    `gorm:"type:varchar(5)" json:"board_meeting_time"`

	Transitional string `json:"transitional"`

	ResponsibleInstitution string `gorm:"not null" json:"responsible_institution"`
	Address                string `json:"address"`
	Phone                  string `gorm:"type:varchar(20)" json:"phone"`
	Email                  string `json:"email"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	// Active has no column default on purpose: a default would make GORM
	// drop an explicit false on insert. The normalizer always sets it.
	Active bool `gorm:"not null" json:"active"`
}

func (c *Convocatoria) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

// IsOpenForRegistration reports whether the convocatoria still accepts
// entries: status Open and today not past the registration deadline.
func (c *Convocatoria) IsOpenForRegistration(now time.Time) bool {
	if c.Status != StatusOpen {
		return false
	}
	// The deadline is stored as a UTC calendar day, so its components are
	// read in UTC regardless of the driver's scan location. "Today" comes
	// from the caller's clock in its own zone, matching how the date
	// defaults are filled in.
	deadline := c.RegistrationDeadline.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	deadline = time.Date(deadline.Year(), deadline.Month(), deadline.Day(), 0, 0, 0, 0, time.UTC)
	return !today.After(deadline)
}
