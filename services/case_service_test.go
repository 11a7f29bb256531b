package services

import (
	"fmt"
	"regexp"
	"testing"

	"vitalite_portal_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCaseTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.CaseRecord{}))
	return db
}

func validWhatsAppInput() *CaseInput {
	return &CaseInput{
		Channel:      models.ChannelWhatsApp,
		Name:         "Moses Banda",
		ReporterRole: "Agent",
		AgentNumber:  "AG-0042",
		Phone:        "+260971234567",
		ReceivedTime: "2024-01-01 10:00:00",
		Region:       "Lusaka",
		IssueType:    "Tokens",
		Description:  "Customer did not receive tokens after payment",
	}
}

func TestGenerateCaseID_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^VL-\d{8}-[0-9a-f]{8}$`)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := GenerateCaseID()
		assert.Regexp(t, pattern, id)
		assert.False(t, seen[id], "duplicate case ID generated: %s", id)
		seen[id] = true
	}
}

func TestValidateCaseForm_RequiredFields(t *testing.T) {
	fields := []struct {
		name   string
		mutate func(*CaseInput)
	}{
		{"name", func(i *CaseInput) { i.Name = "" }},
		{"role", func(i *CaseInput) { i.ReporterRole = "" }},
		{"region", func(i *CaseInput) { i.Region = "" }},
		{"issue type", func(i *CaseInput) { i.IssueType = "" }},
		{"description", func(i *CaseInput) { i.Description = "" }},
	}

	for _, tc := range fields {
		t.Run(tc.name, func(t *testing.T) {
			input := validWhatsAppInput()
			tc.mutate(input)
			err := ValidateCaseForm(input)
			assert.Error(t, err)
			assert.True(t, IsValidationError(err))
		})
	}

	assert.NoError(t, ValidateCaseForm(validWhatsAppInput()))
}

func TestValidateCaseForm_ChannelConditionalRules(t *testing.T) {
	// Agent role requires an agent number
	input := validWhatsAppInput()
	input.AgentNumber = ""
	err := ValidateCaseForm(input)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "agent number")

	// Non-agent roles do not
	input = validWhatsAppInput()
	input.ReporterRole = "Agent Team Leader"
	input.AgentNumber = ""
	assert.NoError(t, ValidateCaseForm(input))

	// Phone channels require a phone number
	for _, channel := range []string{models.ChannelWhatsApp, models.ChannelVoiceCall} {
		input = validWhatsAppInput()
		input.Channel = channel
		input.Phone = ""
		err = ValidateCaseForm(input)
		assert.Error(t, err, "channel %s", channel)
		assert.Contains(t, err.Error(), "phone")
	}

	// Email channel requires an email address
	input = validWhatsAppInput()
	input.Channel = models.ChannelEmail
	input.Email = ""
	err = ValidateCaseForm(input)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "email")

	input.Email = "agent@example.com"
	assert.NoError(t, ValidateCaseForm(input))
}

func TestValidateCaseForm_EnumMembership(t *testing.T) {
	input := validWhatsAppInput()
	input.Channel = "Carrier Pigeon"
	assert.Error(t, ValidateCaseForm(input))

	input = validWhatsAppInput()
	input.Region = "Atlantis"
	assert.Error(t, ValidateCaseForm(input))

	input = validWhatsAppInput()
	input.IssueType = "Weather"
	assert.Error(t, ValidateCaseForm(input))

	input = validWhatsAppInput()
	input.ReporterRole = "Intern"
	assert.Error(t, ValidateCaseForm(input))
}

func TestNewCase_Defaults(t *testing.T) {
	input := validWhatsAppInput()
	c := NewCase(input, "jbanda")

	assert.Equal(t, models.CaseStatusOpen, c.Status)
	assert.Nil(t, c.Resolution)
	assert.Equal(t, "jbanda", c.HandledBy)
	assert.Equal(t, input.Phone, c.Reporter.Contact)
	assert.Equal(t, input.ReceivedTime, c.Timestamps.Received)
	assert.NotEmpty(t, c.Timestamps.Logged)
	assert.Empty(t, c.Timestamps.Resolved)
}

func TestNewCase_EmailChannelUsesEmailContact(t *testing.T) {
	input := validWhatsAppInput()
	input.Channel = models.ChannelEmail
	input.Email = "reporter@example.com"
	input.ReceivedTime = "2024-01-01 10:00:00" // must be ignored off WhatsApp

	c := NewCase(input, "jbanda")

	assert.Equal(t, "reporter@example.com", c.Reporter.Contact)
	assert.Empty(t, c.Timestamps.Received)
}

func TestNewCase_InitialResolutionNotes(t *testing.T) {
	input := validWhatsAppInput()
	input.ResolutionNotes = "Told customer to retry in an hour"

	c := NewCase(input, "jbanda")

	require.NotNil(t, c.Resolution)
	assert.Equal(t, "Told customer to retry in an hour", c.Resolution.Notes)
	assert.Equal(t, models.ResolutionActionInitial, c.Resolution.ActionTaken)
	assert.NotEmpty(t, c.Resolution.Timestamp)
	// Initial notes do not close the case
	assert.Equal(t, models.CaseStatusOpen, c.Status)
}

func TestCreateCase_PersistsCase(t *testing.T) {
	db := setupCaseTestDB(t)

	created, err := CreateCase(db, validWhatsAppInput(), "jbanda")
	require.NoError(t, err)

	stored, version, err := GetCase(db, created.CaseID)
	require.NoError(t, err)
	assert.Equal(t, created, stored)
	assert.Equal(t, int64(1), version)
}

func TestCreateCase_InvalidInputWritesNothing(t *testing.T) {
	db := setupCaseTestDB(t)

	input := validWhatsAppInput()
	input.Description = ""
	_, err := CreateCase(db, input, "jbanda")
	assert.True(t, IsValidationError(err))

	cases, err := GetAllCases(db)
	require.NoError(t, err)
	assert.Empty(t, cases)
}

func TestResolveCase_Close(t *testing.T) {
	db := setupCaseTestDB(t)
	created, err := CreateCase(db, validWhatsAppInput(), "jbanda")
	require.NoError(t, err)

	resolved, err := ResolveCase(db, created.CaseID, "fixed it", ResolveActionClose)
	require.NoError(t, err)

	assert.Equal(t, models.CaseStatusClosed, resolved.Status)
	require.NotNil(t, resolved.Resolution)
	assert.Equal(t, "fixed it", resolved.Resolution.Notes)
	assert.Equal(t, models.ResolutionActionClosed, resolved.Resolution.ActionTaken)

	stored, version, err := GetCase(db, created.CaseID)
	require.NoError(t, err)
	assert.Equal(t, resolved, stored)
	assert.Equal(t, int64(2), version)
}

func TestResolveCase_EscalateStaysOpen(t *testing.T) {
	db := setupCaseTestDB(t)
	created, err := CreateCase(db, validWhatsAppInput(), "jbanda")
	require.NoError(t, err)

	resolved, err := ResolveCase(db, created.CaseID, "escalating", ResolveActionEscalate)
	require.NoError(t, err)

	assert.Equal(t, models.CaseStatusOpen, resolved.Status)
	require.NotNil(t, resolved.Resolution)
	assert.Equal(t, models.ResolutionActionEscalated, resolved.Resolution.ActionTaken)
}

func TestResolveCase_EmptyNotesLeavesCaseUntouched(t *testing.T) {
	db := setupCaseTestDB(t)
	created, err := CreateCase(db, validWhatsAppInput(), "jbanda")
	require.NoError(t, err)

	_, err = ResolveCase(db, created.CaseID, "", ResolveActionClose)
	assert.True(t, IsValidationError(err))

	stored, version, err := GetCase(db, created.CaseID)
	require.NoError(t, err)
	assert.Equal(t, models.CaseStatusOpen, stored.Status)
	assert.Nil(t, stored.Resolution)
	assert.Equal(t, int64(1), version)
}

func TestResolveCase_UnknownAction(t *testing.T) {
	db := setupCaseTestDB(t)
	created, err := CreateCase(db, validWhatsAppInput(), "jbanda")
	require.NoError(t, err)

	_, err = ResolveCase(db, created.CaseID, "notes", "reopen")
	assert.True(t, IsValidationError(err))
}

func TestResolveCase_NotFound(t *testing.T) {
	db := setupCaseTestDB(t)

	_, err := ResolveCase(db, "VL-20240101-deadbeef", "notes", ResolveActionClose)
	assert.ErrorIs(t, err, ErrCaseNotFound)
}

func TestResolveCase_ReEscalationKeepsNotesEditable(t *testing.T) {
	db := setupCaseTestDB(t)
	created, err := CreateCase(db, validWhatsAppInput(), "jbanda")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		notes := fmt.Sprintf("update %d", i)
		resolved, err := ResolveCase(db, created.CaseID, notes, ResolveActionEscalate)
		require.NoError(t, err)
		assert.Equal(t, notes, resolved.Resolution.Notes)
		assert.Equal(t, models.CaseStatusOpen, resolved.Status)
	}

	// Finally close after iterative escalations
	resolved, err := ResolveCase(db, created.CaseID, "final fix", ResolveActionClose)
	require.NoError(t, err)
	assert.Equal(t, models.CaseStatusClosed, resolved.Status)
}
