package queue

import (
	"encoding/json"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"github.com/hibiken/asynq"
)

const (
	// TaskCartPriceRepaired 购物车价格自修复审计任务
	TaskCartPriceRepaired = constants.TaskCartPriceRepaired
)

// CartPriceRepairedPayload 价格自修复任务载荷
type CartPriceRepairedPayload struct {
	CartID       uint         `json:"cart_id"`
	CartItemID   uint         `json:"cart_item_id"`
	ProductID    uint         `json:"product_id"`
	SKUID        uint         `json:"sku_id"`
	OldUnitPrice models.Money `json:"old_unit_price"`
	NewUnitPrice models.Money `json:"new_unit_price"`
	OldTaxRate   models.Money `json:"old_tax_rate"`
	NewTaxRate   models.Money `json:"new_tax_rate"`
	Source       string       `json:"source"`
}

// NewCartPriceRepairedTask 创建价格自修复任务
func NewCartPriceRepairedTask(payload CartPriceRepairedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCartPriceRepaired, body), nil
}

// ParseCartPriceRepairedPayload 解析价格自修复任务载荷
func ParseCartPriceRepairedPayload(body []byte) (CartPriceRepairedPayload, error) {
	var payload CartPriceRepairedPayload
	err := json.Unmarshal(body, &payload)
	return payload, err
}
