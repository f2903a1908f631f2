package store

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/imcufide/convocatorias/internal/models"
)

var (
	// ErrNotFound is returned when an id or exact-name lookup matches nothing.
	ErrNotFound = errors.New("convocatoria not found")
	// ErrAmbiguousMatch is returned when an exact-name lookup matches more
	// than one record. The caller gets to decide; nothing is deleted or
	// modified on an ambiguous match.
	ErrAmbiguousMatch = errors.New("multiple convocatorias share that name")
)

// ConvocatoriaStore wraps the persistence operations for convocatorias.
// Timestamp bookkeeping (CreatedAt on insert, UpdatedAt on every mutation)
// is handled here via GORM's auto-stamping, never by callers.
type ConvocatoriaStore struct {
	db *gorm.DB
}

func New(db *gorm.DB) *ConvocatoriaStore {
	return &ConvocatoriaStore{db: db}
}

// Filter narrows ListActive. The keyword matches case-insensitively as a
// substring of name, sport or description (any of the three); sport,
// category and status are exact case-insensitive matches. All provided
// clauses combine with AND.
type Filter struct {
	Keyword  string
	Sport    string
	Category string
	Status   string
	Page     int
	Limit    int
}

func (s *ConvocatoriaStore) Insert(c *models.Convocatoria) error {
	return s.db.Create(c).Error
}

func (s *ConvocatoriaStore) GetByID(id uuid.UUID) (*models.Convocatoria, error) {
	var c models.Convocatoria
	if err := s.db.Where("id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// GetByExactName resolves a convocatoria by case-insensitive name equality.
// LOWER() instead of ILIKE keeps the query portable across drivers.
func (s *ConvocatoriaStore) GetByExactName(name string) (*models.Convocatoria, error) {
	var matches []models.Convocatoria
	err := s.db.Where("LOWER(name) = LOWER(?)", name).Limit(2).Find(&matches).Error
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return &matches[0], nil
	default:
		return nil, ErrAmbiguousMatch
	}
}

// Update persists the record's current field values. GORM refreshes
// UpdatedAt; CreatedAt keeps its insert-time value.
func (s *ConvocatoriaStore) Update(c *models.Convocatoria) error {
	return s.db.Save(c).Error
}

// DeleteByExactName resolves the record by name and removes it permanently.
// NotFound and AmbiguousMatch propagate untouched; on an ambiguous name
// nothing is deleted. The Active flag remains the soft-delete path for
// listings — this is the one hard-delete operation.
func (s *ConvocatoriaStore) DeleteByExactName(name string) (*models.Convocatoria, error) {
	c, err := s.GetByExactName(name)
	if err != nil {
		return nil, err
	}
	if err := s.db.Delete(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// ListActive returns active records matching the filter, newest tournament
// first, with the total match count for pagination.
func (s *ConvocatoriaStore) ListActive(f Filter) ([]models.Convocatoria, int64, error) {
	query := s.db.Model(&models.Convocatoria{}).Where("active = ?", true)

	if f.Keyword != "" {
		pattern := "%" + f.Keyword + "%"
		query = query.Where(
			"LOWER(name) LIKE LOWER(?) OR LOWER(sport) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)",
			pattern, pattern, pattern,
		)
	}
	if f.Sport != "" {
		query = query.Where("LOWER(sport) = LOWER(?)", f.Sport)
	}
	if f.Category != "" {
		query = query.Where("LOWER(category) = LOWER(?)", f.Category)
	}
	if f.Status != "" {
		query = query.Where("LOWER(status) = LOWER(?)", f.Status)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * f.Limit).Limit(f.Limit)
	}

	var convocatorias []models.Convocatoria
	err := query.Order("start_date DESC").Find(&convocatorias).Error
	if err != nil {
		return nil, 0, err
	}
	return convocatorias, totalCount, nil
}

// DistinctSports returns the sports present among active records, for filter
// choices. Order is unspecified.
func (s *ConvocatoriaStore) DistinctSports() ([]string, error) {
	return s.distinctColumn("sport")
}

func (s *ConvocatoriaStore) DistinctCategories() ([]string, error) {
	return s.distinctColumn("category")
}

func (s *ConvocatoriaStore) DistinctStatuses() ([]string, error) {
	return s.distinctColumn("status")
}

func (s *ConvocatoriaStore) distinctColumn(column string) ([]string, error) {
	var values []string
	err := s.db.Model(&models.Convocatoria{}).
		Where("active = ?", true).
		Distinct(column).
		Pluck(column, &values).Error
	if err != nil {
		return nil, err
	}
	return values, nil
}
