package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phoneman1224/ebay-resell-ui/internal/db"
	"github.com/phoneman1224/ebay-resell-ui/internal/model"
)

func mustCreateItem(t *testing.T, database *sql.DB, sku string) *model.InventoryItem {
	t.Helper()
	item, err := CreateInventory(context.Background(), database, model.InventoryItem{
		SKU: sku, Title: "Item " + sku, Category: "misc", Quantity: 1,
	})
	require.NoError(t, err)
	return item
}

func TestSalesListAndSum(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	item := mustCreateItem(t, database, "S1")

	_, err := CreateSale(ctx, database, model.Sale{
		Date: "2024-03-01", InventoryID: &item.ID, SKU: "S1", Qty: 1, OrderRef: "o-1",
		SoldPriceCents: 10000, BuyerShippingCents: 500, PlatformFeesCents: 300,
	})
	require.NoError(t, err)
	_, err = CreateSale(ctx, database, model.Sale{
		Date: "2024-05-01", SKU: "GONE", Qty: 2, OrderRef: "o-2",
		SoldPriceCents: 2000, ShippingLabelCostCents: 450,
	})
	require.NoError(t, err)

	all, err := ListSales(ctx, database, "", "", ListLimit)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2024-05-01", all[0].Date)
	assert.Nil(t, all[0].InventoryID)
	require.NotNil(t, all[1].InventoryID)
	assert.Equal(t, item.ID, *all[1].InventoryID)

	march, err := ListSales(ctx, database, "2024-03-01", "2024-03-31", -1)
	require.NoError(t, err)
	assert.Len(t, march, 1)

	totals, err := SumSales(ctx, database, model.ReportFromDefault, model.ReportToDefault)
	require.NoError(t, err)
	assert.Equal(t, model.SalesTotals{GrossCents: 12000, BuyerShippingCents: 500, CostsCents: 750, Units: 3}, totals)

	none, err := SumSales(ctx, database, "2030-01-01", "2030-12-31")
	require.NoError(t, err)
	assert.Equal(t, model.SalesTotals{}, none)
}

func TestExpensesListAndSum(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	miles, rate := int64(10), int64(67)
	calc, err := model.MileageAmount(model.ExpenseTypeMileage, &miles, &rate)
	require.NoError(t, err)
	_, err = CreateExpense(ctx, database, model.Expense{
		Date: "2024-02-01", Category: "travel", Type: model.ExpenseTypeMileage,
		Miles: &miles, RateCentsPerMile: &rate,
		CalcAmountCents: calc,
		Deductible:      1,
	})
	require.NoError(t, err)
	_, err = CreateExpense(ctx, database, model.Expense{
		Date: "2024-02-02", Category: "supplies", AmountCents: 1999, Vendor: "Uline",
	})
	require.NoError(t, err)

	list, err := ListExpenses(ctx, database, "", "", ListLimit)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, model.ExpenseTypeStandard, list[0].Type)
	assert.Nil(t, list[0].Miles)
	assert.Nil(t, list[0].CalcAmountCents)
	require.NotNil(t, list[1].CalcAmountCents)
	assert.Equal(t, int64(670), *list[1].CalcAmountCents)

	totals, err := SumExpenses(ctx, database, model.ReportFromDefault, model.ReportToDefault)
	require.NoError(t, err)
	assert.Equal(t, model.ExpenseTotals{AmountCents: 1999, MileageCents: 670}, totals)
}

func TestSummary(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	mustCreateItem(t, database, "X1")

	_, err := CreateSale(ctx, database, model.Sale{
		Date: "2024-01-15", SKU: "X1", Qty: 1, OrderRef: "o",
		SoldPriceCents: 10000, BuyerShippingCents: 500, PlatformFeesCents: 300,
	})
	require.NoError(t, err)
	_, err = CreateExpense(ctx, database, model.Expense{Date: "2024-01-20", Category: "c", AmountCents: 200, Deductible: 1})
	require.NoError(t, err)

	s, err := Summary(ctx, database, "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(10500), s.RevenueCents)
	assert.Equal(t, int64(500), s.TotalExpensesCents)
	assert.Equal(t, int64(10000), s.NetCents)
	assert.Equal(t, map[string]int64{model.InventoryStatusStaged: 1}, s.InventoryByStatus)
	assert.Equal(t, model.ReportFromDefault, s.From)
	assert.Equal(t, model.ReportToDefault, s.To)

	// Inventory counts ignore the date range; money does not.
	empty, err := Summary(ctx, database, "2025-01-01", "2025-12-31")
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.NetCents)
	assert.Equal(t, int64(1), empty.InventoryByStatus[model.InventoryStatusStaged])
}

func TestLotsAndLinks(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	item := mustCreateItem(t, database, "L1")

	lot, err := CreateLot(ctx, database, model.Lot{Title: "Estate sale"})
	require.NoError(t, err)
	assert.Equal(t, model.LotStatusOpen, lot.Status)

	require.NoError(t, AddLotItem(ctx, database, lot.ID, item.ID))
	require.NoError(t, AddLotItem(ctx, database, lot.ID, item.ID), "relinking is a no-op")

	items, err := ListLotItems(ctx, database, lot.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "L1", items[0].SKU)

	require.NoError(t, RemoveLotItem(ctx, database, lot.ID, item.ID))
	assert.ErrorIs(t, RemoveLotItem(ctx, database, lot.ID, item.ID), ErrNotFound)

	closed := model.LotStatusClosed
	note := "done"
	updated, err := UpdateLot(ctx, database, lot.ID, model.LotPatch{Status: &closed, Note: &note})
	require.NoError(t, err)
	assert.Equal(t, model.LotStatusClosed, updated.Status)
	assert.Equal(t, "done", updated.Note)
	assert.Equal(t, "Estate sale", updated.Title)

	_, err = UpdateLot(ctx, database, "missing", model.LotPatch{Status: &closed})
	assert.ErrorIs(t, err, ErrNotFound)

	lots, err := ListLots(ctx, database)
	require.NoError(t, err)
	assert.Len(t, lots, 1)
}

func TestPhotos(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	item := mustCreateItem(t, database, "P1")

	p, err := CreatePhoto(ctx, database, model.Photo{
		ID: "photo-1", InventoryID: item.ID, BlobKey: "inventory/x/photo-1_a.jpg",
		ContentType: "image/jpeg", SizeBytes: 42,
	})
	require.NoError(t, err)
	assert.Equal(t, "photo-1", p.ID)

	got, err := GetPhoto(ctx, database, "photo-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(42), got.SizeBytes)

	list, err := ListPhotos(ctx, database, item.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = CreatePhoto(ctx, database, model.Photo{InventoryID: "missing", BlobKey: "k", ContentType: "x"})
	assert.Error(t, err, "foreign key rejects unknown inventory")
}
