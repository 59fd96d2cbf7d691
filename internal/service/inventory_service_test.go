package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInventory(products ...*model.Product) (*InventoryService, *fakeProductRepo) {
	repo := newFakeProductRepo(products...)
	return NewInventoryService(repo, zerolog.Nop()), repo
}

func TestReserveSuccess(t *testing.T) {
	inv, repo := newTestInventory(
		&model.Product{ProductID: "p1", Stock: 10},
		&model.Product{ProductID: "p2", Stock: 5},
	)

	err := inv.Reserve(context.Background(), []StockDemand{
		{ProductID: "p1", Quantity: 3},
		{ProductID: "p2", Quantity: 5},
	})

	require.NoError(t, err)
	assert.Equal(t, 7, repo.stock("p1"))
	assert.Equal(t, 0, repo.stock("p2"))
}

func TestReserveAllOrNothing(t *testing.T) {
	inv, repo := newTestInventory(
		&model.Product{ProductID: "p1", Stock: 10},
		&model.Product{ProductID: "p2", Stock: 1},
		&model.Product{ProductID: "p3", Stock: 10},
	)

	// p2 不夠，整張訂單回絕，p1 已扣的要補回來
	err := inv.Reserve(context.Background(), []StockDemand{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 5},
		{ProductID: "p3", Quantity: 1},
	})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "p2", stockErr.ProductID)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available)

	assert.Equal(t, 10, repo.stock("p1"))
	assert.Equal(t, 1, repo.stock("p2"))
	assert.Equal(t, 10, repo.stock("p3"))
}

func TestReserveProductNotFound(t *testing.T) {
	inv, repo := newTestInventory(&model.Product{ProductID: "p1", Stock: 10})

	err := inv.Reserve(context.Background(), []StockDemand{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "ghost", Quantity: 1},
	})

	require.ErrorIs(t, err, ErrProductNotFound)
	assert.Equal(t, 10, repo.stock("p1"))
}

func TestReserveConsolidatesDuplicates(t *testing.T) {
	inv, repo := newTestInventory(&model.Product{ProductID: "p1", Stock: 10})

	// 同商品不同變體合併成單一扣減
	err := inv.Reserve(context.Background(), []StockDemand{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p1", Quantity: 3},
	})

	require.NoError(t, err)
	assert.Equal(t, 5, repo.stock("p1"))
}

func TestReserveDuplicatesExceedingStock(t *testing.T) {
	inv, repo := newTestInventory(&model.Product{ProductID: "p1", Stock: 4})

	// 合併後 5 > 4，必須整單回絕而不是部分成功
	err := inv.Reserve(context.Background(), []StockDemand{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p1", Quantity: 3},
	})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 4, repo.stock("p1"))
}

// flakyProductRepo 在指定商品上模擬儲存層故障
// 扣減回報錯誤時一定沒有生效，與正式實作的單一 UPDATE 契約一致
type flakyProductRepo struct {
	*fakeProductRepo
	failOn string
}

func (f *flakyProductRepo) DeductProductStock(ctx context.Context, productID string, quantity uint) (int, error) {
	if productID == f.failOn {
		return 0, errors.New("connection reset by peer")
	}
	return f.fakeProductRepo.DeductProductStock(ctx, productID, quantity)
}

func TestReserveRepoFailureMidway(t *testing.T) {
	base := newFakeProductRepo(
		&model.Product{ProductID: "p1", Stock: 10},
		&model.Product{ProductID: "p2", Stock: 10},
	)
	inv := NewInventoryService(&flakyProductRepo{fakeProductRepo: base, failOn: "p2"}, zerolog.Nop())

	// 儲存層在 p2 故障，p1 已扣的要補回，p2 不能被動到
	err := inv.Reserve(context.Background(), []StockDemand{
		{ProductID: "p1", Quantity: 3},
		{ProductID: "p2", Quantity: 4},
	})

	require.Error(t, err)
	assert.Equal(t, 10, base.stock("p1"))
	assert.Equal(t, 10, base.stock("p2"))
}

func TestConcurrentReserveNoOversell(t *testing.T) {
	inv, repo := newTestInventory(&model.Product{ProductID: "p1", Stock: 5})

	const attempts = 20
	var wg sync.WaitGroup
	results := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = inv.Reserve(context.Background(), []StockDemand{
				{ProductID: "p1", Quantity: 1},
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			var stockErr *InsufficientStockError
			assert.True(t, errors.As(err, &stockErr))
		}
	}

	// 恰好賣掉 5 個，庫存歸零不為負
	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 0, repo.stock("p1"))
}

func TestRelease(t *testing.T) {
	inv, repo := newTestInventory(&model.Product{ProductID: "p1", Stock: 3})

	err := inv.Release(context.Background(), []StockDemand{
		{ProductID: "p1", Quantity: 2},
	})

	require.NoError(t, err)
	assert.Equal(t, 5, repo.stock("p1"))
}

func TestReleaseMissingProduct(t *testing.T) {
	inv, repo := newTestInventory(&model.Product{ProductID: "p1", Stock: 3})

	// 一個商品回補失敗不影響其他商品的回補
	err := inv.Release(context.Background(), []StockDemand{
		{ProductID: "ghost", Quantity: 1},
		{ProductID: "p1", Quantity: 2},
	})

	require.Error(t, err)
	assert.Equal(t, 5, repo.stock("p1"))
}
