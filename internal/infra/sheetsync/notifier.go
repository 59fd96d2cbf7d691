package sheetsync

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	notifyTimeout  = 30 * time.Second
	reconcileBatch = 200
	reconcileConc  = 4
)

// Notifier 把訂單鏡射到外部報表
// 完全 best-effort: 任何失敗只記log，絕不往下單調用方傳播
// 冪等性由訂單上的 synced_to_sheet 標記保證
type Notifier struct {
	appender  RowAppender
	orderRepo db.IOrderRepository
	logger    zerolog.Logger
}

func NewNotifier(appender RowAppender, orderRepo db.IOrderRepository, logger zerolog.Logger) *Notifier {
	return &Notifier{appender: appender, orderRepo: orderRepo, logger: logger}
}

// Notify 同步單一訂單
// 已標記過的訂單直接略過，成功後蓋上標記 (set-once)
/*
	返回值:
		- (true, nil): 本次完成同步並蓋上標記
		- (false, nil): 略過 (已同步過、別的worker搶先標記、或未設定報表後端)
		- (false, err): 同步失敗，由調用方決定是否記log (NotifyAsync 會吞掉)
*/
func (n *Notifier) Notify(ctx context.Context, order *model.Order) (bool, error) {
	if n.appender == nil {
		// 未設定報表後端
		return false, nil
	}
	if order.SyncedToSheet {
		return false, nil
	}

	if err := n.appender.AppendRows(ctx, FormatOrderRows(order)); err != nil {
		return false, fmt.Errorf("sync order %s: %w", order.OrderID, err)
	}

	marked, err := n.orderRepo.MarkSyncedToSheet(ctx, order.OrderID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("mark order %s synced: %w", order.OrderID, err)
	}
	if !marked {
		n.logger.Info().Str("order_id", order.OrderID).Msg("order already marked as synced")
	}
	return marked, nil
}

// NotifyAsync 在下單關鍵路徑之外異步同步
// 所有失敗含 panic 一律吞掉，這個元件永遠不能影響下單結果
func (n *Notifier) NotifyAsync(order *model.Order) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				n.logger.Error().Interface("panic", r).
					Str("order_id", order.OrderID).
					Msg("sheet sync panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if _, err := n.Notify(ctx, order); err != nil {
			n.logger.Warn().Err(err).Str("order_id", order.OrderID).
				Msg("sheet sync failed")
		}
	}()
}

// SyncStats 批次同步結果
type SyncStats struct {
	Total   int `json:"total"`
	Synced  int `json:"synced"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// SyncPending 批次補同步所有還沒標記的訂單
// 營運補償操作，不在下單正確性契約之內
func (n *Notifier) SyncPending(ctx context.Context) (SyncStats, error) {
	var stats SyncStats
	if n.appender == nil {
		return stats, fmt.Errorf("sheet sync is not configured")
	}

	orders, err := n.orderRepo.ListUnsyncedOrders(ctx, reconcileBatch)
	if err != nil {
		return stats, err
	}
	stats.Total = len(orders)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reconcileConc)

	for i := range orders {
		order := orders[i]
		g.Go(func() error {
			synced, err := n.Notify(gctx, &order)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				stats.Failed++
				n.logger.Warn().Err(err).Str("order_id", order.OrderID).
					Msg("bulk sheet sync failed for order")
				// 單筆失敗不中斷整批
			case !synced:
				// 列出之後被別的worker搶先標記
				stats.Skipped++
			default:
				stats.Synced++
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return stats, err
	}
	return stats, nil
}

// CountPending 尚未同步的訂單數
func (n *Notifier) CountPending(ctx context.Context) (int64, error) {
	return n.orderRepo.CountUnsyncedOrders(ctx)
}

// FormatOrderRows 訂單展開成報表列，一條商品一列
func FormatOrderRows(order *model.Order) [][]string {
	customerName := strings.TrimSpace(order.ShippingAddress.FirstName + " " + order.ShippingAddress.LastName)

	addressParts := make([]string, 0, 4)
	for _, part := range []string{
		order.ShippingAddress.StreetAddress,
		order.ShippingAddress.TownCity,
		order.ShippingAddress.State,
		order.ShippingAddress.ZipCode,
	} {
		if part != "" {
			addressParts = append(addressParts, part)
		}
	}
	address := strings.Join(addressParts, ", ")

	phone := order.ShippingAddress.Phone
	if phone == "" && order.IsGuestOrder {
		phone = order.GuestInfo.Phone
	}

	syncedAt := time.Now().UTC().Format(time.RFC3339)
	rows := make([][]string, 0, len(order.OrderItems))
	for _, item := range order.OrderItems {
		rows = append(rows, []string{
			order.OrderID,
			customerName,
			phone,
			address,
			item.Name,
			fmt.Sprintf("%d", item.Quantity),
			item.Color,
			item.Size,
			order.Total.StringFixed(2),
			order.OrderDate.Format("Jan 2, 2006 15:04"),
			string(order.OrderStatus),
			string(order.PaymentMethod),
			order.Notes,
			syncedAt,
		})
	}
	return rows
}
