package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// MaxAttachmentSize caps a single uploaded attachment at 10MB
	MaxAttachmentSize = 10 * 1024 * 1024
)

// allowedAttachmentExts are the attachment types accepted on intake
var allowedAttachmentExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".pdf":  true,
}

// ValidateAttachment checks an uploaded attachment for size and type.
// Screenshots and documents only: png, jpg, jpeg, pdf.
func ValidateAttachment(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxAttachmentSize {
		return &ValidationError{Message: "attachment exceeds maximum allowed size of 10MB"}
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedAttachmentExts[ext] {
		return &ValidationError{Message: "only png, jpg, jpeg and pdf attachments are allowed"}
	}
	return nil
}

// SaveAttachment stores an uploaded attachment under uploadDir and returns
// the stored filename. The case document keeps only the name, not the bytes.
func SaveAttachment(fileHeader *multipart.FileHeader, uploadDir string) (string, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	// Content hash + timestamp gives a collision-safe stored name
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to hash attachment: %w", err)
	}
	hashStr := hex.EncodeToString(hash.Sum(nil))[:16]

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	fileName := fmt.Sprintf("%s_%d%s", hashStr, time.Now().Unix(), ext)
	filePath := filepath.Join(uploadDir, fileName)

	// Verify path is within upload directory (prevent path traversal)
	absUploadDir, err := filepath.Abs(uploadDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve upload directory: %w", err)
	}
	absFilePath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve attachment path: %w", err)
	}
	if !strings.HasPrefix(absFilePath, absUploadDir) {
		return "", fmt.Errorf("invalid attachment path")
	}

	if _, err := file.Seek(0, 0); err != nil {
		return "", fmt.Errorf("failed to rewind attachment: %w", err)
	}

	dst, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create attachment file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(filePath)
		return "", fmt.Errorf("failed to save attachment: %w", err)
	}

	return fileName, nil
}
