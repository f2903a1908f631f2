package helpers

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/imcufide/convocatorias/internal/forms"
)

type UploadConfig struct {
	MaxSizeBytes      int64
	AllowedExtensions []string
	UploadBasePath    string
}

// DefaultImageUploadConfig covers the convocatoria attachments (logo and
// background image). Extension allow-list per the announcement format.
var DefaultImageUploadConfig = UploadConfig{
	MaxSizeBytes:      5 * 1024 * 1024, // 5MB
	AllowedExtensions: forms.AllowedImageExtensions,
	UploadBasePath:    "./uploads/",
}

// UploadFile stores an attachment under uploadType's subdirectory with a
// uuid-based filename and returns the stored path.
func UploadFile(c *gin.Context, fileHeader *multipart.FileHeader, uploadType string, configs ...UploadConfig) (string, error) {
	config := DefaultImageUploadConfig
	if len(configs) > 0 {
		config = configs[0]
	}

	if fileHeader.Size > config.MaxSizeBytes {
		return "", fmt.Errorf("file size exceeds maximum limit of %d MB", config.MaxSizeBytes/(1024*1024))
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	extAllowed := false
	for _, allowed := range config.AllowedExtensions {
		if ext == allowed {
			extAllowed = true
			break
		}
	}
	if !extAllowed {
		return "", fmt.Errorf("invalid file extension. Allowed extensions: %v", config.AllowedExtensions)
	}

	uploadPath := filepath.Join(config.UploadBasePath, uploadType)
	if err := os.MkdirAll(uploadPath, os.ModePerm); err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	fullFilepath := filepath.Join(uploadPath, filename)

	if err := c.SaveUploadedFile(fileHeader, fullFilepath); err != nil {
		return "", err
	}

	return fullFilepath, nil
}

func DeleteFile(filePath string) error {
	return os.Remove(filePath)
}
