package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/imcufide/convocatorias/internal/forms"
	"github.com/imcufide/convocatorias/internal/helpers"
	"github.com/imcufide/convocatorias/internal/pdf"
	"github.com/imcufide/convocatorias/internal/store"
)

func storeFromContext(c *gin.Context) *store.ConvocatoriaStore {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return nil
	}
	return store.New(db.(*gorm.DB))
}

// CreateConvocatoria validates the multipart form, stores the optional
// attachments and persists the record.
func CreateConvocatoria(c *gin.Context) {
	var input forms.ConvocatoriaInput
	if err := c.ShouldBind(&input); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid form submission.")
		return
	}

	logoFile, _ := c.FormFile("logo")
	backgroundFile, _ := c.FormFile("background")

	convocatoria, errs := input.Normalize(forms.ProfileFull, logoFile, backgroundFile)
	if errs != nil {
		helpers.RespondWithValidationErrors(c, errs)
		return
	}

	s := storeFromContext(c)
	if s == nil {
		return
	}

	if logoFile != nil {
		logoPath, err := helpers.UploadFile(c, logoFile, "convocatoria_logos")
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		convocatoria.LogoPath = logoPath
	}
	if backgroundFile != nil {
		backgroundPath, err := helpers.UploadFile(c, backgroundFile, "convocatoria_backgrounds")
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		convocatoria.BackgroundPath = backgroundPath
	}

	if err := s.Insert(convocatoria); err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create convocatoria.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":         "Convocatoria created successfully.",
		"convocatoria_id": convocatoria.ID,
	})
}

// PreviewConvocatoria runs the same validation as create and returns the
// normalized record without persisting anything.
func PreviewConvocatoria(c *gin.Context) {
	var input forms.ConvocatoriaInput
	if err := c.ShouldBind(&input); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid form submission.")
		return
	}

	logoFile, _ := c.FormFile("logo")
	backgroundFile, _ := c.FormFile("background")

	convocatoria, errs := input.Normalize(forms.ProfileFull, logoFile, backgroundFile)
	if errs != nil {
		helpers.RespondWithValidationErrors(c, errs)
		return
	}

	c.JSON(http.StatusOK, gin.H{"convocatoria": convocatoria})
}

func GetConvocatoria(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid convocatoria id.")
		return
	}

	s := storeFromContext(c)
	if s == nil {
		return
	}

	convocatoria, err := s.GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Convocatoria not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving convocatoria.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"convocatoria":          convocatoria,
		"open_for_registration": convocatoria.IsOpenForRegistration(time.Now()),
	})
}

// ListConvocatorias searches active records and returns the distinct
// sport/category/status sets that drive the filter choices.
func ListConvocatorias(c *gin.Context) {
	s := storeFromContext(c)
	if s == nil {
		return
	}

	pageNum, err := helpers.StringToInt(c.DefaultQuery("page", "1"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid page number.")
		return
	}
	limitNum, err := helpers.StringToInt(c.DefaultQuery("limit", "10"))
	if err != nil || limitNum < 1 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid limit.")
		return
	}
	if pageNum < 1 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid page number.")
		return
	}

	filter := store.Filter{
		Keyword:  c.Query("kword"),
		Sport:    c.Query("sport"),
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Page:     pageNum,
		Limit:    limitNum,
	}

	convocatorias, totalCount, err := s.ListActive(filter)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving convocatorias.")
		return
	}

	sports, err := s.DistinctSports()
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving filter choices.")
		return
	}
	categories, err := s.DistinctCategories()
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving filter choices.")
		return
	}
	statuses, err := s.DistinctStatuses()
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving filter choices.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"convocatorias": convocatorias,
		"sports":        sports,
		"categories":    categories,
		"statuses":      statuses,
		"total":         totalCount,
		"page":          pageNum,
		"limit":         limitNum,
		"total_pages":   (totalCount + int64(limitNum) - 1) / int64(limitNum),
	})
}

// UpdateConvocatoria re-validates the submitted fields and applies them to
// the stored record. Omitted defaultable fields keep their stored values;
// the creation timestamp is never touched.
func UpdateConvocatoria(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid convocatoria id.")
		return
	}

	var input forms.ConvocatoriaInput
	if err := c.ShouldBind(&input); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid form submission.")
		return
	}

	logoFile, _ := c.FormFile("logo")
	backgroundFile, _ := c.FormFile("background")

	normalized, errs := input.Normalize(forms.ProfilePartial, logoFile, backgroundFile)
	if errs != nil {
		helpers.RespondWithValidationErrors(c, errs)
		return
	}

	s := storeFromContext(c)
	if s == nil {
		return
	}

	convocatoria, err := s.GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Convocatoria not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error finding convocatoria.")
		return
	}

	// Fields the partial profile leaves at their zero value fall back to
	// the stored record.
	if normalized.StartDate.IsZero() {
		normalized.StartDate = convocatoria.StartDate
	}
	if normalized.RegistrationDeadline.IsZero() {
		normalized.RegistrationDeadline = convocatoria.RegistrationDeadline
	}
	if normalized.Status == "" {
		normalized.Status = convocatoria.Status
	}
	if normalized.ResponsibleInstitution == "" {
		normalized.ResponsibleInstitution = convocatoria.ResponsibleInstitution
	}
	normalized.LogoPath = convocatoria.LogoPath
	normalized.BackgroundPath = convocatoria.BackgroundPath

	if logoFile != nil {
		logoPath, err := helpers.UploadFile(c, logoFile, "convocatoria_logos")
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		if convocatoria.LogoPath != "" {
			if err := helpers.DeleteFile(convocatoria.LogoPath); err != nil {
				log.Printf("Error deleting old logo: %v", err)
			}
		}
		normalized.LogoPath = logoPath
	}
	if backgroundFile != nil {
		backgroundPath, err := helpers.UploadFile(c, backgroundFile, "convocatoria_backgrounds")
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		if convocatoria.BackgroundPath != "" {
			if err := helpers.DeleteFile(convocatoria.BackgroundPath); err != nil {
				log.Printf("Error deleting old background: %v", err)
			}
		}
		normalized.BackgroundPath = backgroundPath
	}

	normalized.ID = convocatoria.ID
	normalized.CreatedAt = convocatoria.CreatedAt
	normalized.Active = convocatoria.Active

	if err := s.Update(normalized); err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update convocatoria.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Convocatoria updated successfully.",
		"convocatoria": normalized,
	})
}

// DeleteConvocatoria removes a record by exact (case-insensitive) name.
// An ambiguous name deletes nothing and is reported as a conflict.
func DeleteConvocatoria(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		helpers.RespondWithError(c, http.StatusBadRequest, "Missing 'name' query parameter.")
		return
	}

	s := storeFromContext(c)
	if s == nil {
		return
	}

	deleted, err := s.DeleteByExactName(name)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			helpers.RespondWithError(c, http.StatusNotFound, fmt.Sprintf("No convocatoria named '%s' was found.", name))
		case errors.Is(err, store.ErrAmbiguousMatch):
			helpers.RespondWithError(c, http.StatusConflict, "Multiple convocatorias share that name. Nothing was deleted.")
		default:
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete convocatoria.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         fmt.Sprintf("Convocatoria '%s' deleted successfully.", deleted.Name),
		"convocatoria_id": deleted.ID,
	})
}

// ExportConvocatoriaPDF streams the printable document for one record.
func ExportConvocatoriaPDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid convocatoria id.")
		return
	}

	s := storeFromContext(c)
	if s == nil {
		return
	}

	convocatoria, err := s.GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Convocatoria not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving convocatoria.")
		return
	}

	document, err := pdf.Generate(convocatoria)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate document.")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, pdf.Filename(convocatoria)))
	c.Data(http.StatusOK, "application/pdf", document)
}
