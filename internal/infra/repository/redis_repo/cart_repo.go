package redis_repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/redis/go-redis/v9"
)

type CartRepoError error

var (
	// ErrCartItemNotFound 購物車內沒有這個條目
	ErrCartItemNotFound CartRepoError = errors.New("cart item not found")
)

// ICartRepository 購物車儲存介面
// 購物車只存在 redis，line 的識別鍵為 product|size|color
type ICartRepository interface {
	Get(ctx context.Context, userID int) (*model.Cart, error)
	AddItem(ctx context.Context, userID int, item model.CartItem) error
	SetQuantity(ctx context.Context, userID int, lineID string, quantity int) error
	Remove(ctx context.Context, userID int, lineID string) error
	Clear(ctx context.Context, userID int) error
}

/*
	redis 結構:
	cart:{userID}:items (hash) {
		"productID|size|color": {"product_id":..., "quantity":..., "size":..., "color":..., "price":...},
	}
*/
type CartRepo struct {
	CartCache *redis.Client
}

func NewCartRepo(cartCache *redis.Client) *CartRepo {
	return &CartRepo{CartCache: cartCache}
}

func generateCartItemKey(userID int) string {
	return fmt.Sprintf("cart:%d:items", userID)
}

// Get 取購物車所有條目
// 購物車不存在時回傳空購物車，由上層決定是否建立
func (r *CartRepo) Get(ctx context.Context, userID int) (*model.Cart, error) {
	itemsKey := generateCartItemKey(userID)

	fields, err := r.CartCache.HGetAll(ctx, itemsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}

	cart := &model.Cart{
		UserID: userID,
		Items:  make([]model.CartItem, 0, len(fields)),
	}
	for lineID, raw := range fields {
		var item model.CartItem
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return nil, fmt.Errorf("invalid cart line %s: %w", lineID, err)
		}
		if item.Quantity > 0 {
			cart.Items = append(cart.Items, item)
		}
	}

	return cart, nil
}

// AddItem 加入購物車條目
// 使用 Lua 腳本確保原子性: 同一 (product,size,color) 已存在時累加數量而不是新增一條
func (r *CartRepo) AddItem(ctx context.Context, userID int, item model.CartItem) error {
	itemsKey := generateCartItemKey(userID)

	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal cart item: %w", err)
	}

	luaScript := `
		local key = KEYS[1]
		local field = ARGV[1]
		local incoming = cjson.decode(ARGV[2])

		local current = redis.call('HGET', key, field)
		if current then
			local line = cjson.decode(current)
			line['quantity'] = line['quantity'] + incoming['quantity']
			redis.call('HSET', key, field, cjson.encode(line))
			return line['quantity']
		end

		redis.call('HSET', key, field, ARGV[2])
		return incoming['quantity']
	`

	_, err = r.CartCache.Eval(ctx, luaScript, []string{itemsKey}, item.LineID(), string(raw)).Result()
	if err != nil {
		return fmt.Errorf("failed to add item to cart: %w", err)
	}
	return nil
}

// SetQuantity 修改購物車條目數量
func (r *CartRepo) SetQuantity(ctx context.Context, userID int, lineID string, quantity int) error {
	itemsKey := generateCartItemKey(userID)

	luaScript := `
		local key = KEYS[1]
		local field = ARGV[1]
		local quantity = tonumber(ARGV[2])

		local current = redis.call('HGET', key, field)
		if not current then
			return -1  -- 條目不存在
		end

		local line = cjson.decode(current)
		line['quantity'] = quantity
		redis.call('HSET', key, field, cjson.encode(line))
		return quantity
	`

	result, err := r.CartCache.Eval(ctx, luaScript, []string{itemsKey}, lineID, quantity).Result()
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}

	switch v := result.(type) {
	case int64:
		if v == -1 {
			return fmt.Errorf("%w: %s", ErrCartItemNotFound, lineID)
		}
		return nil
	default:
		return fmt.Errorf("unexpected result type: %T", result)
	}
}

// Remove 從購物車中刪除指定條目，條目不存在視為成功 (冪等)
func (r *CartRepo) Remove(ctx context.Context, userID int, lineID string) error {
	itemsKey := generateCartItemKey(userID)

	if err := r.CartCache.HDel(ctx, itemsKey, lineID).Err(); err != nil {
		return fmt.Errorf("failed to delete item from cart: %w", err)
	}
	return nil
}

// Clear 清空購物車 (冪等)
func (r *CartRepo) Clear(ctx context.Context, userID int) error {
	itemsKey := generateCartItemKey(userID)

	if err := r.CartCache.Del(ctx, itemsKey).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

var _ ICartRepository = (*CartRepo)(nil)
