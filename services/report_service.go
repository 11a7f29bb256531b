package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"vitalite_portal_go/models"

	"github.com/xuri/excelize/v2"
)

// Status filter values accepted by FilterCasesByStatus
const (
	StatusFilterAll    = "All"
	StatusFilterOpen   = "Open"
	StatusFilterClosed = "Closed"
)

// Metrics holds the aggregate KPIs derived from a case collection
type Metrics struct {
	TotalCases     int            `json:"total_cases"`
	OpenCases      int            `json:"open_cases"`
	ClosedCases    int            `json:"closed_cases"`
	ResolutionRate float64        `json:"resolution_rate"`
	ByIssueType    map[string]int `json:"by_issue_type"`
	ByStatus       map[string]int `json:"by_status"`
	ByChannel      map[string]int `json:"by_channel"`
}

// FilterCasesByStatus filters a case collection by the dashboard status
// filter. "Open" also matches the legacy Escalated status still present in
// older databases; any unrecognized filter matches exactly.
func FilterCasesByStatus(cases []models.Case, filter string) []models.Case {
	if filter == StatusFilterAll || filter == "" {
		return cases
	}

	filtered := make([]models.Case, 0, len(cases))
	for _, c := range cases {
		if filter == StatusFilterOpen {
			if c.IsOpen() {
				filtered = append(filtered, c)
			}
			continue
		}
		if c.Status == filter {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// ComputeMetrics derives the dashboard KPIs from a case collection.
// Escalated counts as Open in both the open count and the status histogram.
// Missing field values are bucketed under "Unknown".
func ComputeMetrics(cases []models.Case) Metrics {
	m := Metrics{
		TotalCases:  len(cases),
		ByIssueType: make(map[string]int),
		ByStatus:    make(map[string]int),
		ByChannel:   make(map[string]int),
	}

	for _, c := range cases {
		if c.IsOpen() {
			m.OpenCases++
		}
		if c.IsClosed() {
			m.ClosedCases++
		}

		m.ByIssueType[orUnknown(c.Issue.Type)]++
		m.ByChannel[orUnknown(c.Channel)]++

		status := orUnknown(c.Status)
		if status == models.CaseStatusEscalated {
			status = models.CaseStatusOpen
		}
		m.ByStatus[status]++
	}

	if m.TotalCases > 0 {
		rate := float64(m.ClosedCases) / float64(m.TotalCases) * 100
		m.ResolutionRate = math.Round(rate*10) / 10
	}

	return m
}

// WhatsAppResponseMinutes returns the minutes between a WhatsApp message
// being received and the case being logged. The second return value is
// false when the metric is undefined: non-WhatsApp channel, missing
// received time, or an unparseable timestamp.
func WhatsAppResponseMinutes(c *models.Case) (float64, bool) {
	if c.Channel != models.ChannelWhatsApp || c.Timestamps.Received == "" {
		return 0, false
	}

	received, err := time.Parse(models.TimestampLayout, c.Timestamps.Received)
	if err != nil {
		return 0, false
	}
	logged, err := time.Parse(models.TimestampLayout, c.Timestamps.Logged)
	if err != nil {
		return 0, false
	}

	return logged.Sub(received).Minutes(), true
}

// caseExportHeader is the column layout shared by the CSV and XLSX exports
var caseExportHeader = []string{
	"Case ID", "Channel", "Received", "Logged",
	"Reporter Name", "Reporter Role", "Agent Number", "Contact",
	"Region", "Issue Type", "Description", "Attachments",
	"Status", "Resolution Notes", "Action Taken", "Resolved At",
	"Handled By",
}

func caseExportRow(c *models.Case) []string {
	notes, action, resolvedAt := "", "", ""
	if c.Resolution != nil {
		notes = c.Resolution.Notes
		action = c.Resolution.ActionTaken
		resolvedAt = c.Resolution.Timestamp
	}

	return []string{
		c.CaseID,
		c.Channel,
		c.Timestamps.Received,
		c.Timestamps.Logged,
		c.Reporter.Name,
		c.Reporter.Role,
		c.Reporter.AgentNumber,
		c.Reporter.Contact,
		c.Region,
		c.Issue.Type,
		c.Issue.Description,
		strings.Join(c.Issue.Attachments, "; "),
		c.Status,
		notes,
		action,
		resolvedAt,
		c.HandledBy,
	}
}

// WriteCasesCSV writes the full case collection as CSV
func WriteCasesCSV(w io.Writer, cases []models.Case) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(caseExportHeader); err != nil {
		return err
	}
	for i := range cases {
		if err := writer.Write(caseExportRow(&cases[i])); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportCasesXLSX builds an Excel workbook with the same table as the CSV
// export. The caller is responsible for closing the returned file.
func ExportCasesXLSX(cases []models.Case) (*excelize.File, error) {
	f := excelize.NewFile()

	const sheet = "Cases"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	header := make([]interface{}, len(caseExportHeader))
	for i, h := range caseExportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i := range cases {
		values := caseExportRow(&cases[i])
		row := make([]interface{}, len(values))
		for j, v := range values {
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	return f, nil
}

// BuildKPIReport renders the plain-text KPI summary report
func BuildKPIReport(m Metrics, generatedAt time.Time) string {
	var b strings.Builder
	b.WriteString("VITALITE Agent Management Query Portal - KPI Report\n")
	b.WriteString("===================================================\n\n")
	b.WriteString("Summary Metrics:\n")
	fmt.Fprintf(&b, "- Total Cases: %d\n", m.TotalCases)
	fmt.Fprintf(&b, "- Open Cases: %d\n", m.OpenCases)
	fmt.Fprintf(&b, "- Closed Cases: %d\n", m.ClosedCases)
	fmt.Fprintf(&b, "- Resolution Rate: %.1f%%\n\n", m.ResolutionRate)
	fmt.Fprintf(&b, "Report generated on: %s\n", generatedAt.Format(models.TimestampLayout))
	return b.String()
}

func orUnknown(value string) string {
	if value == "" {
		return "Unknown"
	}
	return value
}
