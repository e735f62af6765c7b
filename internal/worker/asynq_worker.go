package worker

import (
	"context"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCartPriceRepaired, c.handleCartPriceRepaired)
}

func (c *Consumer) handleCartPriceRepaired(_ context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_cart_price_repaired_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseCartPriceRepairedPayload(task.Payload())
	if err != nil {
		logger.Warnw("worker_cart_price_repaired_unmarshal_failed", "error", err)
		return err
	}
	if payload.CartID == 0 || payload.CartItemID == 0 {
		logger.Debugw("worker_cart_price_repaired_skip_invalid_payload",
			"cart_id", payload.CartID,
			"cart_item_id", payload.CartItemID,
		)
		return nil
	}
	if c.CartRepairLogRepo == nil {
		logger.Warnw("worker_cart_price_repaired_skip_repo_nil", "cart_id", payload.CartID)
		return nil
	}
	entry := &models.CartRepairLog{
		CartID:       payload.CartID,
		CartItemID:   payload.CartItemID,
		ProductID:    payload.ProductID,
		SKUID:        payload.SKUID,
		OldUnitPrice: payload.OldUnitPrice,
		NewUnitPrice: payload.NewUnitPrice,
		OldTaxRate:   payload.OldTaxRate,
		NewTaxRate:   payload.NewTaxRate,
		Source:       payload.Source,
	}
	if err := c.CartRepairLogRepo.Create(entry); err != nil {
		logger.Warnw("worker_cart_price_repaired_persist_failed",
			"cart_id", payload.CartID,
			"cart_item_id", payload.CartItemID,
			"error", err,
		)
		return err
	}
	return nil
}
