package services

import (
	"testing"

	"bloodbridge-http-service/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSeedStocksIdempotent(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	stock := NewStockService(db, cfg, NewAuditService(db, cfg), nil)

	require.NoError(t, stock.SeedStocks())
	require.NoError(t, stock.SeedStocks())

	var count int64
	require.NoError(t, db.Model(&models.Stock{}).Count(&count).Error)
	assert.Equal(t, int64(len(models.BloodGroups)), count)

	stocks, err := stock.GetAllStocks()
	require.NoError(t, err)
	for _, row := range stocks {
		assert.Equal(t, uint(0), row.Unit)
	}
}

func TestGetStockByGroupRejectsUnknownGroup(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	stock := NewStockService(db, cfg, NewAuditService(db, cfg), nil)
	require.NoError(t, stock.SeedStocks())

	_, err := stock.GetStockByGroup("X+")
	require.Error(t, err)
	assert.Equal(t, "invalid blood group", err.Error())

	row, err := stock.GetStockByGroup("AB-")
	require.NoError(t, err)
	assert.Equal(t, "AB-", row.BloodGroup)
}

func TestAdjustStockDepositAndWithdraw(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	stock := seedStocksForTest(t, db, cfg, "A+", 0)

	row, err := stock.AdjustStock(1, "A+", 200, "shipment received")
	require.NoError(t, err)
	assert.Equal(t, uint(200), row.Unit)

	row, err = stock.AdjustStock(1, "A+", -50, "expired units discarded")
	require.NoError(t, err)
	assert.Equal(t, uint(150), row.Unit)

	var logs []models.ActionAuditLog
	require.NoError(t, db.Where("action = ?", models.AuditActionStockAdjusted).
		Order("id").Find(&logs).Error)
	require.Len(t, logs, 2)
	assert.Equal(t, 200, logs[0].UnitsDelta)
	require.NotNil(t, logs[1].StockUnitsBefore)
	require.NotNil(t, logs[1].StockUnitsAfter)
	assert.Equal(t, uint(200), *logs[1].StockUnitsBefore)
	assert.Equal(t, uint(150), *logs[1].StockUnitsAfter)
}

func TestAdjustStockRejectsOverdraw(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	stock := seedStocksForTest(t, db, cfg, "O-", 100)

	_, err := stock.AdjustStock(1, "O-", -150, "bad correction")
	require.ErrorIs(t, err, ErrInsufficientStock)

	// The transaction must roll back without touching the row
	row, err := stock.GetStockByGroup("O-")
	require.NoError(t, err)
	assert.Equal(t, uint(100), row.Unit)
}

func TestAdjustStockRejectsZeroDelta(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	stock := seedStocksForTest(t, db, cfg, "B+", 0)

	_, err := stock.AdjustStock(1, "B+", 0, "")
	require.Error(t, err)
}

func TestWithdrawAndDepositTxReportBeforeAfter(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	stockService := seedStocksForTest(t, db, cfg, "AB+", 300).(*StockService)

	err := db.Transaction(func(tx *gorm.DB) error {
		before, after, err := stockService.WithdrawTx(tx, "AB+", 120)
		require.NoError(t, err)
		assert.Equal(t, uint(300), before)
		assert.Equal(t, uint(180), after)

		before, after, err = stockService.DepositTx(tx, "AB+", 20)
		require.NoError(t, err)
		assert.Equal(t, uint(180), before)
		assert.Equal(t, uint(200), after)
		return nil
	})
	require.NoError(t, err)

	row, err := stockService.GetStockByGroup("AB+")
	require.NoError(t, err)
	assert.Equal(t, uint(200), row.Unit)
}
