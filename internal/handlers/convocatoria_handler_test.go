package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/imcufide/convocatorias/internal/models"
	"github.com/imcufide/convocatorias/internal/server"
)

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Convocatoria{}))

	r := gin.New()
	server.SetupRoutes(r, db)
	return r, db
}

func authToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": uuid.NewString(),
		"role":    "admin",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func multipartBody(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func validFields() map[string]string {
	return map[string]string{
		"name":     "Liga Norte",
		"sport":    "Futbol",
		"category": "Open",
		"division": "Mixed",
	}
}

func createConvocatoria(t *testing.T, r *gin.Engine, fields map[string]string) uuid.UUID {
	t.Helper()
	body, contentType := multipartBody(t, fields)
	req := httptest.NewRequest(http.MethodPost, "/v1/convocatorias", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+authToken(t))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		ConvocatoriaID uuid.UUID `json:"convocatoria_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEqual(t, uuid.Nil, resp.ConvocatoriaID)
	return resp.ConvocatoriaID
}

func TestCreateAndGetConvocatoria(t *testing.T) {
	r, _ := setupRouter(t)

	id := createConvocatoria(t, r, validFields())

	req := httptest.NewRequest(http.MethodGet, "/v1/convocatorias/"+id.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Convocatoria        models.Convocatoria `json:"convocatoria"`
		OpenForRegistration bool                `json:"open_for_registration"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Liga Norte", resp.Convocatoria.Name)
	assert.Equal(t, models.StatusOpen, resp.Convocatoria.Status)
	assert.Equal(t, models.DefaultInstitution, resp.Convocatoria.ResponsibleInstitution)
	assert.False(t, resp.Convocatoria.CreatedAt.IsZero())
	assert.True(t, resp.OpenForRegistration, "deadline defaults to today, still open")
}

func TestCreateRejectsInvalidFieldsWithFullErrorMap(t *testing.T) {
	r, _ := setupRouter(t)

	fields := validFields()
	fields["category"] = "Senior"
	fields["registration_fee"] = "-10"

	body, contentType := multipartBody(t, fields)
	req := httptest.NewRequest(http.MethodPost, "/v1/convocatorias", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+authToken(t))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Fields, "category")
	assert.Contains(t, resp.Fields, "registration_fee")
}

func TestCreateRequiresAuth(t *testing.T) {
	r, _ := setupRouter(t)

	body, contentType := multipartBody(t, validFields())
	req := httptest.NewRequest(http.MethodPost, "/v1/convocatorias", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPreviewDoesNotPersist(t *testing.T) {
	r, db := setupRouter(t)

	body, contentType := multipartBody(t, validFields())
	req := httptest.NewRequest(http.MethodPost, "/v1/convocatorias/preview", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+authToken(t))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Convocatoria models.Convocatoria `json:"convocatoria"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Liga Norte", resp.Convocatoria.Name)

	var count int64
	require.NoError(t, db.Model(&models.Convocatoria{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestUpdateConvocatoria(t *testing.T) {
	r, _ := setupRouter(t)

	id := createConvocatoria(t, r, validFields())

	fields := validFields()
	fields["status"] = "Closed"
	body, contentType := multipartBody(t, fields)
	req := httptest.NewRequest(http.MethodPut, "/v1/convocatorias/"+id.String(), body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+authToken(t))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Convocatoria models.Convocatoria `json:"convocatoria"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusClosed, resp.Convocatoria.Status)
	assert.Equal(t, id, resp.Convocatoria.ID)
}

func TestDeleteByNameOutcomes(t *testing.T) {
	r, _ := setupRouter(t)
	token := authToken(t)

	deleteByName := func(name string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/v1/convocatorias?name="+name, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusNotFound, deleteByName("Liga%20Norte").Code)

	createConvocatoria(t, r, validFields())
	createConvocatoria(t, r, validFields())
	assert.Equal(t, http.StatusConflict, deleteByName("Liga%20Norte").Code)

	fields := validFields()
	fields["name"] = "Copa Municipal"
	createConvocatoria(t, r, fields)
	assert.Equal(t, http.StatusOK, deleteByName("copa%20municipal").Code)
}

func TestListFiltersByKeyword(t *testing.T) {
	r, _ := setupRouter(t)

	createConvocatoria(t, r, validFields())

	other := validFields()
	other["name"] = "Carrera 5K"
	other["sport"] = "Atletismo"
	createConvocatoria(t, r, other)

	req := httptest.NewRequest(http.MethodGet, "/v1/convocatorias?kword=futbol", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Convocatorias []models.Convocatoria `json:"convocatorias"`
		Sports        []string              `json:"sports"`
		Total         int64                 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Total)
	require.Len(t, resp.Convocatorias, 1)
	assert.Equal(t, "Liga Norte", resp.Convocatorias[0].Name)
	assert.ElementsMatch(t, []string{"Futbol", "Atletismo"}, resp.Sports)
}

func TestListRejectsNonPositivePagination(t *testing.T) {
	r, _ := setupRouter(t)

	createConvocatoria(t, r, validFields())

	for _, query := range []string{"limit=0", "limit=-5", "page=0", "page=-1"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/convocatorias?"+query, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "query %q should be rejected", query)
	}
}

func TestExportPDF(t *testing.T) {
	r, _ := setupRouter(t)

	id := createConvocatoria(t, r, validFields())

	req := httptest.NewRequest(http.MethodGet, "/v1/convocatorias/"+id.String()+"/pdf", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "convocatoria_Liga Norte.pdf")
	assert.Equal(t, "%PDF-", w.Body.String()[:5])
}

func TestExportPDFNotFound(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/convocatorias/"+uuid.NewString()+"/pdf", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	r, _ := setupRouter(t)

	creds := map[string]string{"email": "admin@imcufide.gob.mx", "password": "secret123"}
	payload, err := json.Marshal(creds)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/register", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/v1/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
}
