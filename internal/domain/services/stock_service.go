package services

import (
	"errors"
	"fmt"

	"bloodbridge-http-service/internal/domain/models"
	"bloodbridge-http-service/internal/infrastructure/config"
	"bloodbridge-http-service/pkg/logger"

	"gorm.io/gorm"
)

// ErrInsufficientStock is returned when a withdrawal would drive a blood
// group's units negative.
var ErrInsufficientStock = errors.New("insufficient stock for blood group")

// InterfaceStockService defines the stock service interface
type InterfaceStockService interface {
	SeedStocks() error
	GetAllStocks() ([]models.Stock, error)
	GetStockByGroup(bloodGroup string) (*models.Stock, error)
	AdjustStock(adminID uint, bloodGroup string, delta int, detail string) (*models.Stock, error)
	WithdrawTx(tx *gorm.DB, bloodGroup string, units uint) (before, after uint, err error)
	DepositTx(tx *gorm.DB, bloodGroup string, units uint) (before, after uint, err error)
}

// StockService manages the per-blood-group inventory
type StockService struct {
	DB     *gorm.DB
	Config *config.Config
	Audit  InterfaceAuditService
	Redis  InterfaceRedisService
}

// NewStockService creates a new stock service
func NewStockService(db *gorm.DB, cfg *config.Config, audit InterfaceAuditService, redis InterfaceRedisService) InterfaceStockService {
	return &StockService{
		DB:     db,
		Config: cfg,
		Audit:  audit,
		Redis:  redis,
	}
}

// SeedStocks creates a zero-unit row for every blood group that is missing
// one. Safe to run at every startup.
func (s *StockService) SeedStocks() error {
	for _, group := range models.BloodGroups {
		var count int64
		if err := s.DB.Model(&models.Stock{}).Where("blood_group = ?", group).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := s.DB.Create(&models.Stock{BloodGroup: group, Unit: 0}).Error; err != nil {
				return err
			}
			logger.Info("seeded stock row for blood group %s", group)
		}
	}
	return nil
}

// GetAllStocks returns all stock rows ordered by blood group
func (s *StockService) GetAllStocks() ([]models.Stock, error) {
	var stocks []models.Stock
	if err := s.DB.Order("blood_group").Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// GetStockByGroup returns the stock row for one blood group
func (s *StockService) GetStockByGroup(bloodGroup string) (*models.Stock, error) {
	if !models.IsValidBloodGroup(bloodGroup) {
		return nil, errors.New("invalid blood group")
	}
	var stock models.Stock
	if err := s.DB.Where("blood_group = ?", bloodGroup).First(&stock).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("stock row not found")
		}
		return nil, err
	}
	return &stock, nil
}

// AdjustStock applies a manual admin correction, recording an audit entry
func (s *StockService) AdjustStock(adminID uint, bloodGroup string, delta int, detail string) (*models.Stock, error) {
	if delta == 0 {
		return nil, errors.New("delta must be non-zero")
	}

	var adjusted *models.Stock
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var before, after uint
		var err error
		if delta > 0 {
			before, after, err = s.DepositTx(tx, bloodGroup, uint(delta))
		} else {
			before, after, err = s.WithdrawTx(tx, bloodGroup, uint(-delta))
		}
		if err != nil {
			return err
		}

		if err := s.Audit.RecordTx(tx, &models.ActionAuditLog{
			AdminID:          adminID,
			Action:           models.AuditActionStockAdjusted,
			TargetType:       "stock",
			BloodGroup:       bloodGroup,
			UnitsDelta:       delta,
			StockUnitsBefore: &before,
			StockUnitsAfter:  &after,
			Detail:           detail,
		}); err != nil {
			return err
		}

		var stock models.Stock
		if err := tx.Where("blood_group = ?", bloodGroup).First(&stock).Error; err != nil {
			return err
		}
		adjusted = &stock
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if err := s.Redis.InvalidateStockSnapshot(); err != nil {
			logger.Warning("failed to invalidate stock cache: %v", err)
		}
	}

	return adjusted, nil
}

// WithdrawTx deducts units inside an existing transaction. The row is locked
// for update so concurrent approvals cannot both pass the balance check.
func (s *StockService) WithdrawTx(tx *gorm.DB, bloodGroup string, units uint) (uint, uint, error) {
	var stock models.Stock
	if err := tx.Clauses(rowLock(tx)...).Where("blood_group = ?", bloodGroup).First(&stock).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, 0, errors.New("stock row not found")
		}
		return 0, 0, err
	}

	if stock.Unit < units {
		return stock.Unit, stock.Unit, fmt.Errorf("%w: have %dml, need %dml", ErrInsufficientStock, stock.Unit, units)
	}

	before := stock.Unit
	after := before - units
	if err := tx.Model(&stock).Update("unit", after).Error; err != nil {
		return 0, 0, err
	}
	return before, after, nil
}

// DepositTx adds units inside an existing transaction
func (s *StockService) DepositTx(tx *gorm.DB, bloodGroup string, units uint) (uint, uint, error) {
	var stock models.Stock
	if err := tx.Clauses(rowLock(tx)...).Where("blood_group = ?", bloodGroup).First(&stock).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, 0, errors.New("stock row not found")
		}
		return 0, 0, err
	}

	before := stock.Unit
	after := before + units
	if err := tx.Model(&stock).Update("unit", after).Error; err != nil {
		return 0, 0, err
	}
	return before, after, nil
}
