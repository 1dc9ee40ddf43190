package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bloodbridge-http-service/internal/domain/models"
	"bloodbridge-http-service/internal/infrastructure/config"

	"github.com/360EntSecGroup-Skylar/excelize"
	"gorm.io/gorm"
)

// Report kinds accepted by the export endpoint.
const (
	ReportKindRequests  = "requests"
	ReportKindDonations = "donations"
	ReportKindStock     = "stock"
)

// reportsDir is where generated spreadsheets land before download.
const reportsDir = "reports"

// InterfaceReportService defines the report export service interface
type InterfaceReportService interface {
	Export(adminID uint, kind string, from, to *time.Time) (filePath string, rowCount int, err error)
}

// ReportService generates Excel exports of requests, donations and stock
type ReportService struct {
	DB     *gorm.DB
	Config *config.Config
	Audit  InterfaceAuditService
}

// NewReportService creates a new report service
func NewReportService(db *gorm.DB, cfg *config.Config, audit InterfaceAuditService) InterfaceReportService {
	return &ReportService{
		DB:     db,
		Config: cfg,
		Audit:  audit,
	}
}

// Export writes one report spreadsheet and records the export in the log.
// The returned path is relative to the working directory.
func (s *ReportService) Export(adminID uint, kind string, from, to *time.Time) (string, int, error) {
	if err := os.MkdirAll(reportsDir, 0o755); err != nil {
		return "", 0, err
	}

	file := excelize.NewFile()
	var rowCount int
	var err error

	switch kind {
	case ReportKindRequests:
		rowCount, err = s.fillRequests(file, from, to)
	case ReportKindDonations:
		rowCount, err = s.fillDonations(file, from, to)
	case ReportKindStock:
		rowCount, err = s.fillStock(file)
	default:
		return "", 0, errors.New("unknown report kind")
	}
	if err != nil {
		return "", 0, err
	}

	fileName := fmt.Sprintf("%s-%s.xlsx", kind, time.Now().Format("20060102-150405"))
	filePath := filepath.Join(reportsDir, fileName)
	if err := file.SaveAs(filePath); err != nil {
		return "", 0, err
	}

	if err := s.Audit.RecordExport(&models.ReportExportLog{
		AdminID:  adminID,
		Kind:     kind,
		FileName: fileName,
		RowCount: rowCount,
		FromDate: from,
		ToDate:   to,
	}); err != nil {
		return "", 0, err
	}

	return filePath, rowCount, nil
}

func (s *ReportService) fillRequests(file *excelize.File, from, to *time.Time) (int, error) {
	sheet := "Requests"
	file.NewSheet(sheet)
	file.DeleteSheet("Sheet1")

	headers := map[string]string{
		"A1": "ID",
		"B1": "Patient Name",
		"C1": "Blood Group",
		"D1": "Unit (ml)",
		"E1": "Status",
		"F1": "Channel",
		"G1": "Created At",
	}
	for cell, value := range headers {
		file.SetCellValue(sheet, cell, value)
	}

	var requests []models.BloodRequest
	query := s.DB.Model(&models.BloodRequest{}).Order("created_at")
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}
	if err := query.Find(&requests).Error; err != nil {
		return 0, err
	}

	for i, request := range requests {
		row := i + 2
		file.SetCellValue(sheet, fmt.Sprintf("A%v", row), request.ID)
		file.SetCellValue(sheet, fmt.Sprintf("B%v", row), request.PatientName)
		file.SetCellValue(sheet, fmt.Sprintf("C%v", row), request.BloodGroup)
		file.SetCellValue(sheet, fmt.Sprintf("D%v", row), request.Unit)
		file.SetCellValue(sheet, fmt.Sprintf("E%v", row), request.Status)
		file.SetCellValue(sheet, fmt.Sprintf("F%v", row), request.Channel)
		file.SetCellValue(sheet, fmt.Sprintf("G%v", row), request.CreatedAt.Format("2006-01-02 15:04"))
	}

	return len(requests), nil
}

func (s *ReportService) fillDonations(file *excelize.File, from, to *time.Time) (int, error) {
	sheet := "Donations"
	file.NewSheet(sheet)
	file.DeleteSheet("Sheet1")

	headers := map[string]string{
		"A1": "ID",
		"B1": "Donor ID",
		"C1": "Blood Group",
		"D1": "Unit (ml)",
		"E1": "Status",
		"F1": "Created At",
	}
	for cell, value := range headers {
		file.SetCellValue(sheet, cell, value)
	}

	var donations []models.BloodDonate
	query := s.DB.Model(&models.BloodDonate{}).Order("created_at")
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}
	if err := query.Find(&donations).Error; err != nil {
		return 0, err
	}

	for i, donation := range donations {
		row := i + 2
		file.SetCellValue(sheet, fmt.Sprintf("A%v", row), donation.ID)
		file.SetCellValue(sheet, fmt.Sprintf("B%v", row), donation.DonorID)
		file.SetCellValue(sheet, fmt.Sprintf("C%v", row), donation.BloodGroup)
		file.SetCellValue(sheet, fmt.Sprintf("D%v", row), donation.Unit)
		file.SetCellValue(sheet, fmt.Sprintf("E%v", row), donation.Status)
		file.SetCellValue(sheet, fmt.Sprintf("F%v", row), donation.CreatedAt.Format("2006-01-02 15:04"))
	}

	return len(donations), nil
}

func (s *ReportService) fillStock(file *excelize.File) (int, error) {
	sheet := "Stock"
	file.NewSheet(sheet)
	file.DeleteSheet("Sheet1")

	headers := map[string]string{
		"A1": "Blood Group",
		"B1": "Units (ml)",
		"C1": "Updated At",
	}
	for cell, value := range headers {
		file.SetCellValue(sheet, cell, value)
	}

	var stocks []models.Stock
	if err := s.DB.Order("blood_group").Find(&stocks).Error; err != nil {
		return 0, err
	}

	for i, stock := range stocks {
		row := i + 2
		file.SetCellValue(sheet, fmt.Sprintf("A%v", row), stock.BloodGroup)
		file.SetCellValue(sheet, fmt.Sprintf("B%v", row), stock.Unit)
		file.SetCellValue(sheet, fmt.Sprintf("C%v", row), stock.UpdatedAt.Format("2006-01-02 15:04"))
	}

	return len(stocks), nil
}
