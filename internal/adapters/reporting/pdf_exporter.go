package reporting

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
)

// maxRankingRows caps the risk table so large inventories still fit a readable document.
const maxRankingRows = 50

// PDFExporter exports reports to PDF format
type PDFExporter struct {
	generatedBy string
	now         func() time.Time
}

// NewPDFExporter creates a new PDF exporter instance
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{generatedBy: "reconrisk", now: time.Now}
}

// ExportComplianceReport renders a compliance report with its findings and remediation plan.
func (e *PDFExporter) ExportComplianceReport(report *domain.ComplianceReport) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("failed to generate PDF: nil report")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	e.addHeader(pdf, fmt.Sprintf("%s Compliance Report", report.Framework), report.Organization)
	e.addReportStatus(pdf, report)
	e.addSummary(pdf, report.Findings)
	e.addFindings(pdf, "Failed Checks", report.Findings.Failed)
	e.addFindings(pdf, "Warnings", report.Findings.Warnings)
	e.addFindings(pdf, "Passed Checks", report.Findings.Passed)
	e.addRemediationPlan(pdf, report.RemediationPlan)
	e.addFooter(pdf, report.ID)

	return output(pdf)
}

// ExportRiskRanking renders the prioritized vulnerability list of an organization.
func (e *PDFExporter) ExportRiskRanking(organization string, ranking []domain.RiskPrioritization) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	e.addHeader(pdf, "Vulnerability Risk Ranking", organization)
	e.addRanking(pdf, ranking)
	e.addFooter(pdf, "")

	return output(pdf)
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// addHeader adds the report header
func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, title, organization string) {
	pdf.SetFont("Arial", "B", 22)
	pdf.SetTextColor(0, 51, 102) // Dark blue
	pdf.CellFormat(0, 15, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if organization != "" {
		pdf.SetFont("Arial", "", 14)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 8, organization, "", 1, "L", false, 0, "")
		pdf.Ln(2)
	}

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", e.now().Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(6)
}

func (e *PDFExporter) addReportStatus(pdf *gofpdf.Fpdf, report *domain.ComplianceReport) {
	r, g, b := statusColor(report.Status)
	pdf.SetFillColor(r, g, b)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(35, 8, string(report.Status), "", 0, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(60, 60, 60)
	validity := fmt.Sprintf("  Valid until %s", report.ValidUntil.Format("2006-01-02"))
	if report.ApprovedAt != nil {
		validity += fmt.Sprintf(" | Approved by %s on %s", report.ApprovedBy, report.ApprovedAt.Format("2006-01-02"))
	}
	pdf.CellFormat(0, 8, validity, "", 1, "L", false, 0, "")
	pdf.Ln(6)
}

// addSummary shows the bucket counts in one row
func (e *PDFExporter) addSummary(pdf *gofpdf.Fpdf, findings domain.Findings) {
	passed, warnings, failed := findings.Counts()

	stats := []struct {
		label string
		value int
		color []int
	}{
		{"Passed", passed, []int{52, 199, 89}},
		{"Warnings", warnings, []int{255, 149, 0}},
		{"Failed", failed, []int{220, 53, 69}},
	}

	for _, stat := range stats {
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(30, 7, stat.label+":", "", 0, "L", false, 0, "")

		pdf.SetFont("Arial", "B", 11)
		pdf.SetTextColor(stat.color[0], stat.color[1], stat.color[2])
		pdf.CellFormat(25, 7, fmt.Sprintf("%d", stat.value), "", 0, "L", false, 0, "")
	}
	pdf.Ln(12)
}

func (e *PDFExporter) addFindings(pdf *gofpdf.Fpdf, title string, findings []domain.Finding) {
	if len(findings) == 0 {
		return
	}

	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	for _, f := range findings {
		if pdf.GetY() > 250 {
			pdf.AddPage()
		}

		r, g, b := findingColor(f.Severity)
		pdf.SetFillColor(r, g, b)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(25, 6, string(f.Severity), "", 0, "C", true, 0, "")

		pdf.SetFont("Arial", "B", 11)
		pdf.SetTextColor(0, 51, 102)
		pdf.CellFormat(0, 6, "  "+f.Check, "", 1, "L", false, 0, "")
		pdf.Ln(1)

		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(60, 60, 60)
		pdf.MultiCell(0, 5, f.Description, "", "L", false)

		if f.Remediation != "" {
			pdf.SetFont("Arial", "I", 9)
			pdf.SetTextColor(100, 100, 100)
			pdf.MultiCell(0, 5, "Remediation: "+f.Remediation, "", "L", false)
		}
		pdf.Ln(4)
	}
}

func (e *PDFExporter) addRemediationPlan(pdf *gofpdf.Fpdf, plan string) {
	if plan == "" {
		return
	}
	if pdf.GetY() > 240 {
		pdf.AddPage()
	}

	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Remediation Plan", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.MultiCell(0, 5, plan, "", "L", false)
	pdf.Ln(4)
}

// addRanking adds the prioritized vulnerability table
func (e *PDFExporter) addRanking(pdf *gofpdf.Fpdf, ranking []domain.RiskPrioritization) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Prioritized Vulnerabilities", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if len(ranking) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 7, "No vulnerabilities to prioritize", "", 1, "L", false, 0, "")
		return
	}

	header := func() {
		pdf.SetFillColor(240, 240, 240)
		pdf.SetFont("Arial", "B", 10)
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(12, 8, "#", "1", 0, "C", true, 0, "")
		pdf.CellFormat(55, 8, "Vulnerability", "1", 0, "L", true, 0, "")
		pdf.CellFormat(45, 8, "Asset", "1", 0, "L", true, 0, "")
		pdf.CellFormat(20, 8, "Score", "1", 0, "C", true, 0, "")
		pdf.CellFormat(25, 8, "Priority", "1", 0, "C", true, 0, "")
		pdf.CellFormat(15, 8, "SLA", "1", 1, "C", true, 0, "")
	}
	header()

	pdf.SetFont("Arial", "", 9)
	for i, risk := range ranking {
		if i >= maxRankingRows {
			pdf.SetFont("Arial", "I", 9)
			pdf.SetTextColor(100, 100, 100)
			pdf.CellFormat(0, 7, fmt.Sprintf("... and %d more", len(ranking)-maxRankingRows), "", 1, "L", false, 0, "")
			break
		}
		if pdf.GetY() > 270 {
			pdf.AddPage()
			header()
			pdf.SetFont("Arial", "", 9)
		}

		name := risk.VulnerabilityName
		if name == "" {
			name = risk.VulnerabilityID
		}

		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(12, 7, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(55, 7, truncate(name, 32), "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 7, truncate(risk.AssetName, 26), "1", 0, "L", false, 0, "")

		r, g, b := riskColor(risk.OverallRiskScore)
		pdf.SetTextColor(r, g, b)
		pdf.CellFormat(20, 7, fmt.Sprintf("%.2f", risk.OverallRiskScore), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 7, string(risk.PriorityLevel), "1", 0, "C", false, 0, "")

		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(15, 7, fmt.Sprintf("%dd", risk.SLADays), "1", 1, "C", false, 0, "")
	}
}

// addFooter adds the report footer
func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf, reportID string) {
	pdf.SetY(-20)

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(3)

	text := fmt.Sprintf("Generated by %s", e.generatedBy)
	if reportID != "" {
		text += fmt.Sprintf(" | Report ID: %s", truncate(reportID, 8))
	}

	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 5, text, "", 1, "C", false, 0, "")
}

// riskColor returns RGB color based on the overall risk score
func riskColor(score float64) (r, g, b int) {
	switch {
	case score >= 8.0:
		return 220, 53, 69 // Red (Critical)
	case score >= 6.0:
		return 255, 149, 0 // Orange (High)
	case score >= 4.0:
		return 204, 153, 0 // Amber (Medium)
	default:
		return 52, 199, 89 // Green (Low)
	}
}

func findingColor(severity domain.FindingSeverity) (r, g, b int) {
	switch severity {
	case domain.FindingCritical:
		return 220, 53, 69
	case domain.FindingHigh:
		return 255, 149, 0
	case domain.FindingMedium:
		return 204, 153, 0
	default:
		return 52, 199, 89
	}
}

func statusColor(status domain.ReportStatus) (r, g, b int) {
	switch status {
	case domain.ReportApproved:
		return 52, 199, 89
	case domain.ReportExpired:
		return 150, 150, 150
	default:
		return 0, 102, 204
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
