package services

import (
	"errors"
	"fmt"
	"time"

	"vitalite_portal_go/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Resolve actions accepted by ResolveCase
const (
	ResolveActionClose    = "close"
	ResolveActionEscalate = "escalate"
)

// ValidationError is a recoverable input error. Handlers report it to the
// user; nothing is written when one is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError reports whether err is a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// CaseInput carries the raw intake form values for a new case
type CaseInput struct {
	Channel         string   `json:"channel"`
	Name            string   `json:"name"`
	ReporterRole    string   `json:"role"`
	AgentNumber     string   `json:"agent_number"`
	Phone           string   `json:"phone"`
	Email           string   `json:"email"`
	ReceivedTime    string   `json:"received_time"`
	Region          string   `json:"region"`
	IssueType       string   `json:"issue_type"`
	Description     string   `json:"description"`
	ResolutionNotes string   `json:"resolution_notes"`
	Attachments     []string `json:"attachments"`
}

// GenerateCaseID generates a globally unique case ID.
// Format: VL-{YYYYMMDD}-{8 hex chars}
// Example: VL-20260831-1a2b3c4d
func GenerateCaseID() string {
	return fmt.Sprintf("VL-%s-%s", time.Now().Format("20060102"), uuid.New().String()[:8])
}

// ValidateCaseForm enforces the required-field and channel-conditional rules
// for a new case. It returns a ValidationError describing the first problem.
func ValidateCaseForm(input *CaseInput) error {
	if input.Name == "" || input.ReporterRole == "" || input.Region == "" ||
		input.IssueType == "" || input.Description == "" {
		return validationErrorf("please fill all required fields")
	}
	if !models.IsValidChannel(input.Channel) {
		return validationErrorf("invalid channel: %q", input.Channel)
	}
	if !models.IsValidReporterRole(input.ReporterRole) {
		return validationErrorf("invalid reporter role: %q", input.ReporterRole)
	}
	if !models.IsValidRegion(input.Region) {
		return validationErrorf("invalid region: %q", input.Region)
	}
	if !models.IsValidIssueType(input.IssueType) {
		return validationErrorf("invalid issue type: %q", input.IssueType)
	}
	if input.ReporterRole == models.ReporterRoleAgent && input.AgentNumber == "" {
		return validationErrorf("agent number is required for Agent role")
	}
	switch input.Channel {
	case models.ChannelWhatsApp, models.ChannelVoiceCall:
		if input.Phone == "" {
			return validationErrorf("phone number is required for this channel")
		}
	case models.ChannelEmail:
		if input.Email == "" {
			return validationErrorf("email address is required for email cases")
		}
	}
	return nil
}

// NewCase assembles a case document from validated intake input.
// Status is always Open; resolution stays nil unless initial notes were
// supplied with the form.
func NewCase(input *CaseInput, actingUsername string) *models.Case {
	now := time.Now().Format(models.TimestampLayout)

	contact := input.Phone
	if input.Channel == models.ChannelEmail {
		contact = input.Email
	}

	received := ""
	if input.Channel == models.ChannelWhatsApp {
		received = input.ReceivedTime
	}

	agentNumber := ""
	if input.ReporterRole == models.ReporterRoleAgent {
		agentNumber = input.AgentNumber
	}

	c := &models.Case{
		CaseID:  GenerateCaseID(),
		Channel: input.Channel,
		Timestamps: models.CaseTimestamps{
			Received: received,
			Logged:   now,
		},
		Reporter: models.CaseReporter{
			Name:        input.Name,
			Role:        input.ReporterRole,
			AgentNumber: agentNumber,
			Contact:     contact,
		},
		Region: input.Region,
		Issue: models.CaseIssue{
			Type:        input.IssueType,
			Description: input.Description,
			Attachments: input.Attachments,
		},
		Status:     models.CaseStatusOpen,
		Resolution: nil,
		HandledBy:  actingUsername,
	}

	if input.ResolutionNotes != "" {
		c.Resolution = &models.CaseResolution{
			Notes:       input.ResolutionNotes,
			ActionTaken: models.ResolutionActionInitial,
			Timestamp:   now,
		}
	}

	return c
}

// CreateCase validates the intake input, builds the case document and
// persists it.
func CreateCase(db *gorm.DB, input *CaseInput, actingUsername string) (*models.Case, error) {
	if err := ValidateCaseForm(input); err != nil {
		return nil, err
	}

	c := NewCase(input, actingUsername)
	if err := SaveCase(db, c); err != nil {
		return nil, fmt.Errorf("failed to save case: %w", err)
	}
	return c, nil
}

// ResolveCase applies a close or escalate action to a stored case.
// Closing is terminal; escalation keeps the case Open and records the
// escalation only in the resolution metadata. Empty notes fail validation
// and leave the stored case untouched. A concurrent edit between the read
// and the write surfaces as ErrConflict.
func ResolveCase(db *gorm.DB, caseID, notes, action string) (*models.Case, error) {
	if notes == "" {
		return nil, validationErrorf("please provide resolution notes")
	}

	var actionTaken, status string
	switch action {
	case ResolveActionClose:
		status = models.CaseStatusClosed
		actionTaken = models.ResolutionActionClosed
	case ResolveActionEscalate:
		status = models.CaseStatusOpen
		actionTaken = models.ResolutionActionEscalated
	default:
		return nil, validationErrorf("unknown resolve action: %q", action)
	}

	c, version, err := GetCase(db, caseID)
	if err != nil {
		return nil, err
	}

	c.Status = status
	c.Resolution = &models.CaseResolution{
		Notes:       notes,
		ActionTaken: actionTaken,
		Timestamp:   time.Now().Format(models.TimestampLayout),
	}

	if err := SaveCaseVersion(db, c, version); err != nil {
		return nil, err
	}
	return c, nil
}
