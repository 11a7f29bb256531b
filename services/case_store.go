package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"vitalite_portal_go/models"

	"gorm.io/gorm"
)

var (
	// ErrCaseNotFound is returned when a case ID has no row
	ErrCaseNotFound = errors.New("case not found")
	// ErrConflict is returned when a versioned save loses to a concurrent write
	ErrConflict = errors.New("case was modified by another user")
)

const (
	// writeRetryAttempts bounds retries of transient SQLite write failures
	writeRetryAttempts = 3
	writeRetryDelay    = 50 * time.Millisecond
)

// SaveCase inserts or replaces the case document keyed by case ID.
// New rows start at version 1; existing rows get their version bumped
// (last-write-wins, no stale check - use SaveCaseVersion for that).
func SaveCase(db *gorm.DB, c *models.Case) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode case %s: %w", c.CaseID, err)
	}

	return withWriteRetry(func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			var record models.CaseRecord
			err := tx.First(&record, "case_id = ?", c.CaseID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				record = models.CaseRecord{
					CaseID:        c.CaseID,
					CaseData:      string(data),
					SchemaVersion: models.CaseSchemaVersion,
					Version:       1,
				}
				return tx.Create(&record).Error
			}
			if err != nil {
				return err
			}

			return tx.Model(&models.CaseRecord{}).
				Where("case_id = ?", c.CaseID).
				Updates(map[string]interface{}{
					"case_data":      string(data),
					"schema_version": models.CaseSchemaVersion,
					"version":        record.Version + 1,
				}).Error
		})
	})
}

// SaveCaseVersion overwrites the case document only if the stored version
// still equals expectedVersion. A concurrent edit in between returns
// ErrConflict and leaves the row untouched.
func SaveCaseVersion(db *gorm.DB, c *models.Case, expectedVersion int64) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode case %s: %w", c.CaseID, err)
	}

	return withWriteRetry(func() error {
		result := db.Model(&models.CaseRecord{}).
			Where("case_id = ? AND version = ?", c.CaseID, expectedVersion).
			Updates(map[string]interface{}{
				"case_data":      string(data),
				"schema_version": models.CaseSchemaVersion,
				"version":        expectedVersion + 1,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := db.Model(&models.CaseRecord{}).Where("case_id = ?", c.CaseID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrCaseNotFound
			}
			return ErrConflict
		}
		return nil
	})
}

// GetCase returns the decoded case document and its current version
func GetCase(db *gorm.DB, caseID string) (*models.Case, int64, error) {
	var record models.CaseRecord
	err := db.First(&record, "case_id = ?", caseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, ErrCaseNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch case %s: %w", caseID, err)
	}

	var c models.Case
	if err := json.Unmarshal([]byte(record.CaseData), &c); err != nil {
		return nil, 0, fmt.Errorf("failed to decode case %s: %w", caseID, err)
	}
	return &c, record.Version, nil
}

// GetAllCases returns every stored case document in insertion order.
// A row that fails to decode is skipped with a log line rather than
// aborting the whole read.
func GetAllCases(db *gorm.DB) ([]models.Case, error) {
	var records []models.CaseRecord
	if err := db.Order("rowid").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch cases: %w", err)
	}

	cases := make([]models.Case, 0, len(records))
	for _, record := range records {
		var c models.Case
		if err := json.Unmarshal([]byte(record.CaseData), &c); err != nil {
			log.Printf("Skipping undecodable case row %s: %v", record.CaseID, err)
			continue
		}
		cases = append(cases, c)
	}
	return cases, nil
}

// DeleteCase removes the row if present. Deleting a missing case is a no-op.
func DeleteCase(db *gorm.DB, caseID string) error {
	return withWriteRetry(func() error {
		result := db.Where("case_id = ?", caseID).Delete(&models.CaseRecord{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete case %s: %w", caseID, result.Error)
		}
		return nil
	})
}

// withWriteRetry retries a write a bounded number of times when SQLite
// reports the database as busy or locked, then surfaces the error.
func withWriteRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < writeRetryAttempts; attempt++ {
		err = fn()
		if err == nil || !isTransientDBError(err) {
			return err
		}
		time.Sleep(writeRetryDelay * time.Duration(attempt+1))
	}
	return err
}

func isTransientDBError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "busy")
}
