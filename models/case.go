package models

import (
	"time"
)

// Case status constants
const (
	CaseStatusOpen   = "Open"
	CaseStatusClosed = "Closed"
	// CaseStatusEscalated is never written by current code. Older databases
	// still contain it, so read paths must treat it as Open.
	CaseStatusEscalated = "Escalated"
)

// Resolution action constants
const (
	ResolutionActionClosed    = "Closed by agent"
	ResolutionActionEscalated = "Escalated to senior support"
	ResolutionActionInitial   = "Initial notes"
)

// TimestampLayout is the format used for every datetime string stored inside
// a case document.
const TimestampLayout = "2006-01-02 15:04:05"

// CaseSchemaVersion is the current schema version written into new case rows.
const CaseSchemaVersion = 1

// Contact channels, in the order they are offered on the intake form
var Channels = []string{"WhatsApp", "Voice Call", "Email"}

// Channel constants
const (
	ChannelWhatsApp  = "WhatsApp"
	ChannelVoiceCall = "Voice Call"
	ChannelEmail     = "Email"
)

// Reporter roles, in form order
var ReporterRoles = []string{
	"Agent",
	"Sales and Service Assistant",
	"Agent Team Leader",
	"Regional Manager",
	"Assistant Regional Manager",
}

// ReporterRoleAgent requires an agent number on intake
const ReporterRoleAgent = "Agent"

// Regions covered by the support operation, in form order
var Regions = []string{
	"Lusaka", "Western", "North-Western",
	"Northern", "Southern", "Central",
	"Luapula", "Eastern", "Copperbelt",
	"Muchinga",
}

// Issue categories, in form order
var IssueTypes = []string{
	"Commissions", "Tokens", "Registration Failure",
	"Float", "Stock", "Edit own account request",
	"Edit customer request", "Reporting New Fault",
	"Follow up on previously reported fault",
	"Balance inquiry", "Campaign related",
	"Call back request", "Call was dropped",
	"Customer feedback",
}

// CaseTimestamps tracks when an issue was received and logged.
// Received is only populated for WhatsApp cases. Resolved is unused; the
// resolution timestamp lives on CaseResolution.
type CaseTimestamps struct {
	Received string `json:"received,omitempty"`
	Logged   string `json:"logged"`
	Resolved string `json:"resolved,omitempty"`
}

// CaseReporter identifies the person who reported the issue
type CaseReporter struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	AgentNumber string `json:"agent_number,omitempty"`
	Contact     string `json:"contact"`
}

// CaseIssue describes the reported problem
type CaseIssue struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Attachments []string `json:"attachments,omitempty"`
}

// CaseResolution records how and when a case was closed or escalated
type CaseResolution struct {
	Notes       string `json:"notes"`
	ActionTaken string `json:"action_taken"`
	Timestamp   string `json:"timestamp"`
}

// Case is the full case document, persisted as one JSON blob per row
// (schema-on-read). Field names match the stored document exactly.
type Case struct {
	CaseID     string          `json:"case_id"`
	Channel    string          `json:"channel"`
	Timestamps CaseTimestamps  `json:"timestamps"`
	Reporter   CaseReporter    `json:"reporter"`
	Region     string          `json:"region"`
	Issue      CaseIssue       `json:"issue"`
	Status     string          `json:"status"`
	Resolution *CaseResolution `json:"resolution"`
	HandledBy  string          `json:"handled_by"`
}

// CaseRecord is the storage row wrapping a case document. Version increases
// monotonically on every write so concurrent edits can be detected.
type CaseRecord struct {
	CaseID        string    `gorm:"primarykey;column:case_id" json:"case_id"`
	CaseData      string    `gorm:"type:text;not null;column:case_data" json:"-"`
	SchemaVersion int       `gorm:"not null;default:1" json:"schema_version"`
	Version       int64     `gorm:"not null;default:1" json:"version"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for CaseRecord
func (CaseRecord) TableName() string {
	return "cases"
}

// IsOpen reports whether the case counts as open. Legacy Escalated rows
// count as open everywhere they are read.
func (c *Case) IsOpen() bool {
	return c.Status == CaseStatusOpen || c.Status == CaseStatusEscalated
}

// IsClosed reports whether the case is closed
func (c *Case) IsClosed() bool {
	return c.Status == CaseStatusClosed
}

// IsValidChannel checks channel enum membership
func IsValidChannel(channel string) bool {
	return containsString(Channels, channel)
}

// IsValidReporterRole checks reporter role enum membership
func IsValidReporterRole(role string) bool {
	return containsString(ReporterRoles, role)
}

// IsValidRegion checks region enum membership
func IsValidRegion(region string) bool {
	return containsString(Regions, region)
}

// IsValidIssueType checks issue type enum membership
func IsValidIssueType(issueType string) bool {
	return containsString(IssueTypes, issueType)
}

func containsString(list []string, value string) bool {
	for _, s := range list {
		if s == value {
			return true
		}
	}
	return false
}
