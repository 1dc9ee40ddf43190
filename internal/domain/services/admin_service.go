package services

import (
	"errors"

	"bloodbridge-http-service/internal/domain/models"
	"bloodbridge-http-service/internal/infrastructure/config"
	"bloodbridge-http-service/pkg/logger"

	"gorm.io/gorm"
)

// DashboardStats aggregates the counters shown on the admin dashboard.
type DashboardStats struct {
	TotalDonors      int64           `json:"total_donors"`
	TotalPatients    int64           `json:"total_patients"`
	TotalRequests    int64           `json:"total_requests"`
	PendingRequests  int64           `json:"pending_requests"`
	ApprovedRequests int64           `json:"approved_requests"`
	RejectedRequests int64           `json:"rejected_requests"`
	TotalDonations   int64           `json:"total_donations"`
	PendingDonations int64           `json:"pending_donations"`
	TotalStockUnits  int64           `json:"total_stock_units"`
	StockByGroup     map[string]uint `json:"stock_by_group"`
}

// InterfaceAdminService defines the admin service interface
type InterfaceAdminService interface {
	GetAllAdmins(page, pageSize int) ([]models.Admin, int64, error)
	GetAdminByID(id uint) (*models.Admin, error)
	CreateAdmin(admin *models.Admin) error
	UpdateAdmin(id uint, updates map[string]interface{}) (*models.Admin, error)
	DeleteAdmin(id uint) error
	EnsureDefaultAdmin() error
	GetDashboardStats() (*DashboardStats, error)
}

// AdminService provides admin account management
type AdminService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewAdminService creates a new admin service
func NewAdminService(db *gorm.DB, cfg *config.Config) InterfaceAdminService {
	return &AdminService{
		DB:     db,
		Config: cfg,
	}
}

// GetAllAdmins lists admins with pagination
func (s *AdminService) GetAllAdmins(page, pageSize int) ([]models.Admin, int64, error) {
	var admins []models.Admin
	var total int64

	if err := s.DB.Model(&models.Admin{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := s.DB.Limit(pageSize).Offset(offset).Find(&admins).Error; err != nil {
		return nil, 0, err
	}

	return admins, total, nil
}

// GetAdminByID fetches one admin
func (s *AdminService) GetAdminByID(id uint) (*models.Admin, error) {
	var admin models.Admin
	if err := s.DB.First(&admin, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("admin not found")
		}
		return nil, err
	}
	return &admin, nil
}

// CreateAdmin creates a new admin account
func (s *AdminService) CreateAdmin(admin *models.Admin) error {
	var count int64
	if err := s.DB.Model(&models.Admin{}).Where("username = ?", admin.Username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New("username already exists")
	}
	return s.DB.Create(admin).Error
}

// UpdateAdmin applies partial updates to an admin account
func (s *AdminService) UpdateAdmin(id uint, updates map[string]interface{}) (*models.Admin, error) {
	admin, err := s.GetAdminByID(id)
	if err != nil {
		return nil, err
	}

	if username, ok := updates["username"].(string); ok && username != admin.Username {
		var count int64
		if err := s.DB.Model(&models.Admin{}).Where("username = ? AND id != ?", username, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, errors.New("username already taken by another admin")
		}
	}

	if err := s.DB.Model(admin).Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.GetAdminByID(id)
}

// DeleteAdmin removes an admin account, keeping at least one in place
func (s *AdminService) DeleteAdmin(id uint) error {
	var count int64
	if err := s.DB.Model(&models.Admin{}).Count(&count).Error; err != nil {
		return err
	}
	if count <= 1 {
		return errors.New("cannot delete the last admin account")
	}

	admin, err := s.GetAdminByID(id)
	if err != nil {
		return err
	}
	return s.DB.Delete(admin).Error
}

// EnsureDefaultAdmin creates the bootstrap admin account when none exists
func (s *AdminService) EnsureDefaultAdmin() error {
	var count int64
	if err := s.DB.Model(&models.Admin{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	admin := &models.Admin{
		Username: "admin",
		Password: s.Config.DefaultAdminPassword,
	}
	if err := s.DB.Create(admin).Error; err != nil {
		return err
	}
	logger.Info("created default admin account")
	return nil
}

// GetDashboardStats aggregates the admin dashboard counters
func (s *AdminService) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{StockByGroup: make(map[string]uint)}

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalDonors, s.DB.Model(&models.Donor{})},
		{&stats.TotalPatients, s.DB.Model(&models.Patient{})},
		{&stats.TotalRequests, s.DB.Model(&models.BloodRequest{})},
		{&stats.PendingRequests, s.DB.Model(&models.BloodRequest{}).Where("status = ?", models.StatusPending)},
		{&stats.ApprovedRequests, s.DB.Model(&models.BloodRequest{}).Where("status = ?", models.StatusApproved)},
		{&stats.RejectedRequests, s.DB.Model(&models.BloodRequest{}).Where("status = ?", models.StatusRejected)},
		{&stats.TotalDonations, s.DB.Model(&models.BloodDonate{})},
		{&stats.PendingDonations, s.DB.Model(&models.BloodDonate{}).Where("status = ?", models.StatusPending)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	var stocks []models.Stock
	if err := s.DB.Find(&stocks).Error; err != nil {
		return nil, err
	}
	for _, stock := range stocks {
		stats.StockByGroup[stock.BloodGroup] = stock.Unit
		stats.TotalStockUnits += int64(stock.Unit)
	}

	return stats, nil
}
