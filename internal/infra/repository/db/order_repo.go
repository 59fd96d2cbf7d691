package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm"
)

// ErrOrderNotFound 訂單不存在
var ErrOrderNotFound = errors.New("order not found")

type OrderRepo struct {
	db *DbDao
}

func NewOrderRepo(db *DbDao) *OrderRepo {
	return &OrderRepo{db: db}
}

// Create - 創建訂單 連同商品快照一起寫入
func (s *OrderRepo) CreateOrder(ctx context.Context, order *model.Order) error {
	return s.db.WithContext(ctx).Create(order).Error
}

// Read - 根據ID查詢訂單
func (s *OrderRepo) GetOrderByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).Preload("OrderItems").First(&order, "order_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
		}
		return nil, err
	}
	return &order, nil
}

// Read - 根據用戶ID查詢訂單
func (s *OrderRepo) GetOrdersByUserID(ctx context.Context, userID int) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).Preload("OrderItems").
		Where("user_id = ?", userID).
		Order("order_date DESC").
		Find(&orders).Error
	return orders, err
}

// Read - 查詢所有訂單
func (s *OrderRepo) GetAllOrders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).Preload("OrderItems").
		Order("order_date DESC").
		Find(&orders).Error
	return orders, err
}

// UpdateOrderStatusIf 條件式更新訂單狀態 (compare-and-set)
// 只有當前狀態等於 from 時才會更新，確保同一筆轉移只會成功一次
// delivered / cancelled 會一併蓋上時間戳，且只蓋一次
/*
	返回值:
		- true: 更新成功
		- false: 當前狀態已不是 from (併發下被別人先轉走)
		- ErrOrderNotFound: 訂單不存在
*/
func (s *OrderRepo) UpdateOrderStatusIf(ctx context.Context, id string, from, to model.OrderStatus, now time.Time) (bool, error) {
	updates := map[string]interface{}{"order_status": to}
	switch to {
	case model.OrderStatusDelivered:
		updates["delivered_at"] = now
	case model.OrderStatusCancelled:
		updates["cancelled_at"] = now
	}

	res := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ? AND order_status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(&model.Order{}).
			Where("order_id = ?", id).Count(&count).Error; err != nil {
			return false, err
		}
		if count == 0 {
			return false, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
		}
		return false, nil
	}
	return true, nil
}

// Update - 更新訂單備註
func (s *OrderRepo) UpdateOrderNotes(ctx context.Context, id string, notes string) error {
	res := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ?", id).
		Update("notes", notes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	return nil
}

// MarkSyncedToSheet 設置外部報表同步標記 (冪等性標記)
// 條件式更新，已標記過的訂單不會再標第二次
/*
	返回值:
		- true: 本次成功標記
		- false: 先前已標記過
*/
func (s *OrderRepo) MarkSyncedToSheet(ctx context.Context, id string, syncedAt time.Time) (bool, error) {
	res := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ? AND synced_to_sheet = false", id).
		Updates(map[string]interface{}{
			"synced_to_sheet": true,
			"synced_at":       syncedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Read - 查詢尚未同步到外部報表的訂單
func (s *OrderRepo) ListUnsyncedOrders(ctx context.Context, limit int) ([]model.Order, error) {
	var orders []model.Order
	query := s.db.WithContext(ctx).Preload("OrderItems").
		Where("synced_to_sheet = false").
		Order("order_date ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&orders).Error
	return orders, err
}

func (s *OrderRepo) CountUnsyncedOrders(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("synced_to_sheet = false").
		Count(&count).Error
	return count, err
}

// Delete - 硬刪除訂單 (管理端明確操作才使用)
func (s *OrderRepo) HardDeleteOrder(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Unscoped().Where("order_id = ?", id).Delete(&model.Order{}).Error
}
