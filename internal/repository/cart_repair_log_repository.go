package repository

import (
	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// CartRepairLogRepository 价格修复审计记录数据访问接口
type CartRepairLogRepository interface {
	Create(log *models.CartRepairLog) error
	ListByCart(cartID uint) ([]models.CartRepairLog, error)
}

// GormCartRepairLogRepository GORM 实现
type GormCartRepairLogRepository struct {
	db *gorm.DB
}

// NewCartRepairLogRepository 创建审计记录仓库
func NewCartRepairLogRepository(db *gorm.DB) *GormCartRepairLogRepository {
	return &GormCartRepairLogRepository{db: db}
}

// Create 写入审计记录
func (r *GormCartRepairLogRepository) Create(log *models.CartRepairLog) error {
	return r.db.Create(log).Error
}

// ListByCart 按购物车查询审计记录
func (r *GormCartRepairLogRepository) ListByCart(cartID uint) ([]models.CartRepairLog, error) {
	var logs []models.CartRepairLog
	if err := r.db.Where("cart_id = ?", cartID).Order("id asc").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
