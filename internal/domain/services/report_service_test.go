package services

import (
	"os"
	"testing"
	"time"

	"bloodbridge-http-service/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newReportTestService(t *testing.T, db *gorm.DB) InterfaceReportService {
	t.Helper()
	t.Cleanup(func() { os.RemoveAll(reportsDir) })
	cfg := newTestConfig()
	return NewReportService(db, cfg, NewAuditService(db, cfg))
}

func TestExportRejectsUnknownKind(t *testing.T) {
	db := newTestDB(t)
	svc := newReportTestService(t, db)

	_, _, err := svc.Export(1, "payroll", nil, nil)
	require.Error(t, err)
}

func TestExportFiltersByDateRangeAndLogsIt(t *testing.T) {
	db := newTestDB(t)
	svc := newReportTestService(t, db)

	old := &models.BloodRequest{
		PatientName: "Old Case", PatientAge: 50,
		Reason: "historical record", BloodGroup: "O+", Unit: 200,
		Status: models.StatusApproved, Channel: models.RequestChannelQuick,
	}
	require.NoError(t, db.Create(old).Error)
	require.NoError(t, db.Model(old).Update("created_at", time.Now().AddDate(0, -2, 0)).Error)

	recent := &models.BloodRequest{
		PatientName: "Recent Case", PatientAge: 30,
		Reason: "scheduled surgery", BloodGroup: "A+", Unit: 300,
		Status: models.StatusPending, Channel: models.RequestChannelQuick,
	}
	require.NoError(t, db.Create(recent).Error)

	from := time.Now().AddDate(0, -1, 0)
	to := time.Now().Add(time.Hour)
	filePath, rows, err := svc.Export(3, ReportKindRequests, &from, &to)
	require.NoError(t, err)
	assert.Equal(t, 1, rows)
	assert.FileExists(t, filePath)

	// The export log keeps the filter the report was run with
	var log models.ReportExportLog
	require.NoError(t, db.First(&log).Error)
	assert.Equal(t, uint(3), log.AdminID)
	assert.Equal(t, ReportKindRequests, log.Kind)
	assert.Equal(t, 1, log.RowCount)
	require.NotNil(t, log.FromDate)
	require.NotNil(t, log.ToDate)
	assert.WithinDuration(t, from, *log.FromDate, time.Second)
	assert.WithinDuration(t, to, *log.ToDate, time.Second)

	// An unfiltered export leaves the range columns empty
	_, rows, err = svc.Export(3, ReportKindRequests, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)

	var unfiltered models.ReportExportLog
	require.NoError(t, db.Order("id DESC").First(&unfiltered).Error)
	assert.Nil(t, unfiltered.FromDate)
	assert.Nil(t, unfiltered.ToDate)
}
