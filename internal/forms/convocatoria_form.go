package forms

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/imcufide/convocatorias/internal/models"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// AllowedImageExtensions are the only attachment extensions accepted for the
// logo and background images.
var AllowedImageExtensions = []string{".png", ".jpg", ".jpeg"}

// Profile selects which validation profile applies: creation fills defaults,
// edits keep the stored value when a field is omitted.
type Profile int

const (
	ProfileFull Profile = iota
	ProfilePartial
)

// FieldErrors maps a submitted field name to the reason it was rejected.
// Every offending field is reported, not just the first.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	return fmt.Sprintf("invalid fields: %s", strings.Join(fields, ", "))
}

// ConvocatoriaInput carries the raw submitted form values. Everything arrives
// as a string; Normalize coerces and checks them.
type ConvocatoriaInput struct {
	Name        string `form:"name" validate:"required"`
	Sport       string `form:"sport" validate:"required"`
	Description string `form:"description"`

	StartDate            string `form:"start_date"`
	RegistrationDeadline string `form:"registration_deadline"`
	PreMeetingDate       string `form:"pre_meeting_date"`
	PreMeetingTime       string `form:"pre_meeting_time"`

	Category string `form:"category" validate:"required"`
	Division string `form:"division" validate:"required"`
	Status   string `form:"status"`

	OrganizingCommittee string `form:"organizing_committee"`
	CompetitionFormat   string `form:"competition_format"`
	FinalPhase          string `form:"final_phase"`

	RegistrationFee      string `form:"registration_fee"`
	PaymentMethod        string `form:"payment_method"`
	RegistrationLocation string `form:"registration_location"`

	Requirements      string `form:"requirements"`
	RequiredDocuments string `form:"required_documents"`
	Regulations       string `form:"regulations"`

	PrizeFirst      string `form:"prize_first"`
	PrizeSecond     string `form:"prize_second"`
	PrizeThird      string `form:"prize_third"`
	PrizeAdditional string `form:"prize_additional"`

	Arbitration    string `form:"arbitration"`
	ArbitrationFee string `form:"arbitration_fee"`

	BoardMeetingDescription string `form:"board_meeting_description"`
	BoardMeetingDate        string `form:"board_meeting_date"`
	BoardMeetingTime        string `form:"board_meeting_time"`

	Transitional string `form:"transitional"`

	ResponsibleInstitution string `form:"responsible_institution"`
	Address                string `form:"address"`
	Phone                  string `form:"phone"`
	Email                  string `form:"email" validate:"omitempty,email"`
}

var validate = validator.New()

// fieldNames maps the input struct field names reported by the validator back
// to the submitted form names.
var fieldNames = map[string]string{
	"Name":     "name",
	"Sport":    "sport",
	"Category": "category",
	"Division": "division",
	"Email":    "email",
}

// Normalize coerces the raw input into a Convocatoria or reports every
// offending field. It is a pure transformation: attachments are checked by
// extension only and nothing is read from disk.
//
// With ProfileFull, omitted defaultable fields are filled (dates default to
// today, status to Open, institution to the default institute, fee to 0).
// With ProfilePartial the zero values are left for the caller to resolve
// against the stored record; the bookkeeping timestamps are never touched by
// either profile.
func (in *ConvocatoriaInput) Normalize(profile Profile, logo, background *multipart.FileHeader) (*models.Convocatoria, FieldErrors) {
	errs := FieldErrors{}

	if err := validate.Struct(in); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, verr := range verrs {
				name, known := fieldNames[verr.StructField()]
				if !known {
					name = strings.ToLower(verr.StructField())
				}
				if verr.Tag() == "required" {
					errs[name] = "this field is required"
				} else {
					errs[name] = fmt.Sprintf("failed %s validation", verr.Tag())
				}
			}
		} else {
			errs["_"] = err.Error()
		}
	}

	c := &models.Convocatoria{
		Name:                    strings.TrimSpace(in.Name),
		Sport:                   strings.TrimSpace(in.Sport),
		Description:             in.Description,
		OrganizingCommittee:     in.OrganizingCommittee,
		CompetitionFormat:       in.CompetitionFormat,
		FinalPhase:              in.FinalPhase,
		PaymentMethod:           in.PaymentMethod,
		RegistrationLocation:    in.RegistrationLocation,
		Requirements:            in.Requirements,
		RequiredDocuments:       in.RequiredDocuments,
		Regulations:             in.Regulations,
		PrizeFirst:              in.PrizeFirst,
		PrizeSecond:             in.PrizeSecond,
		PrizeThird:              in.PrizeThird,
		PrizeAdditional:         in.PrizeAdditional,
		Arbitration:             in.Arbitration,
		BoardMeetingDescription: in.BoardMeetingDescription,
		Transitional:            in.Transitional,
		ResponsibleInstitution:  strings.TrimSpace(in.ResponsibleInstitution),
		Address:                 in.Address,
		Phone:                   in.Phone,
		Email:                   in.Email,
		Active:                  true,
	}

	// Closed enumerations. The validator's oneof tag cannot express values
	// containing spaces or apostrophes, so these are checked by hand.
	if in.Category != "" {
		c.Category = models.Category(in.Category)
		if !c.Category.IsValid() {
			errs["category"] = fmt.Sprintf("must be one of %v", models.Categories())
		}
	}
	if in.Division != "" {
		c.Division = models.Division(in.Division)
		if !c.Division.IsValid() {
			errs["division"] = fmt.Sprintf("must be one of %v", models.Divisions())
		}
	}
	switch {
	case in.Status != "":
		c.Status = models.Status(in.Status)
		if !c.Status.IsValid() {
			errs["status"] = fmt.Sprintf("must be one of %v", models.Statuses())
		}
	case profile == ProfileFull:
		c.Status = models.StatusOpen
	}

	// The local calendar day, not a 24h truncation of the UTC epoch: near
	// midnight in a non-UTC zone those disagree on the date.
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	c.StartDate = parseDate(in.StartDate, "start_date", errs)
	c.RegistrationDeadline = parseDate(in.RegistrationDeadline, "registration_deadline", errs)
	if profile == ProfileFull {
		if in.StartDate == "" {
			c.StartDate = today
		}
		if in.RegistrationDeadline == "" {
			c.RegistrationDeadline = today
		}
	}

	c.PreMeetingDate = parseOptionalDate(in.PreMeetingDate, "pre_meeting_date", errs)
	c.PreMeetingTime = parseOptionalTime(in.PreMeetingTime, "pre_meeting_time", errs)
	c.BoardMeetingDate = parseOptionalDate(in.BoardMeetingDate, "board_meeting_date", errs)
	c.BoardMeetingTime = parseOptionalTime(in.BoardMeetingTime, "board_meeting_time", errs)

	if in.RegistrationFee != "" {
		fee, err := strconv.ParseFloat(in.RegistrationFee, 64)
		switch {
		case err != nil:
			errs["registration_fee"] = "must be a decimal number"
		case fee < 0:
			errs["registration_fee"] = "must not be negative"
		default:
			c.RegistrationFee = fee
		}
	}
	if in.ArbitrationFee != "" {
		fee, err := strconv.ParseFloat(in.ArbitrationFee, 64)
		switch {
		case err != nil:
			errs["arbitration_fee"] = "must be a decimal number"
		case fee < 0:
			errs["arbitration_fee"] = "must not be negative"
		default:
			c.ArbitrationFee = &fee
		}
	}

	if profile == ProfileFull && c.ResponsibleInstitution == "" {
		c.ResponsibleInstitution = models.DefaultInstitution
	}

	if logo != nil && !HasAllowedImageExtension(logo.Filename) {
		errs["logo"] = fmt.Sprintf("file extension must be one of %v", AllowedImageExtensions)
	}
	if background != nil && !HasAllowedImageExtension(background.Filename) {
		errs["background"] = fmt.Sprintf("file extension must be one of %v", AllowedImageExtensions)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return c, nil
}

// HasAllowedImageExtension checks an attachment filename against the image
// extension allow-list. Case-insensitive.
func HasAllowedImageExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedImageExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func parseDate(value, field string, errs FieldErrors) time.Time {
	if value == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		errs[field] = "must be a date in YYYY-MM-DD format"
		return time.Time{}
	}
	return parsed
}

func parseOptionalDate(value, field string, errs FieldErrors) *time.Time {
	if value == "" {
		return nil
	}
	parsed := parseDate(value, field, errs)
	if parsed.IsZero() {
		return nil
	}
	return &parsed
}

func parseOptionalTime(value, field string, errs FieldErrors) *string {
	if value == "" {
		return nil
	}
	if _, err := time.Parse(timeLayout, value); err != nil {
		errs[field] = "must be a time in HH:MM format"
		return nil
	}
	return &value
}
