package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"espetaria/internal/caching"
	"espetaria/internal/common"
	"espetaria/internal/models"
	"espetaria/internal/repositories"
)

type OrderServiceTestSuite struct {
	suite.Suite
	mock      pgxmock.PgxPoolIface
	service   OrderService
	orderID   uuid.UUID
	productID uuid.UUID
	itemID    uuid.UUID
	ctx       context.Context
}

func (suite *OrderServiceTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	orderRepo := repositories.NewOrderRepo(mock)
	productRepo := repositories.NewProductRepo(mock)
	cashRepo := repositories.NewCashRepo(mock)
	inventoryRepo := repositories.NewInventoryRepo(mock)
	stockService := NewStockService(inventoryRepo)

	suite.service = NewOrderService(mock, orderRepo, productRepo, cashRepo, stockService, caching.NoopCacheService{})
	suite.orderID = uuid.New()
	suite.productID = uuid.New()
	suite.itemID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *OrderServiceTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestOrderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}

func (suite *OrderServiceTestSuite) expectStatusLock(status string) {
	suite.mock.ExpectQuery(`SELECT status FROM orders WHERE id = \$1 FOR UPDATE`).
		WithArgs(suite.orderID).
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(status))
}

func (suite *OrderServiceTestSuite) expectReload(total string) {
	suite.mock.ExpectQuery(`SELECT id, table_number, customer_name, status, created_at, closed_at`).
		WithArgs(suite.orderID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "table_number", "customer_name", "status", "created_at", "closed_at"}).
			AddRow(suite.orderID, 4, nil, "closed", time.Now(), ptrTime(time.Now())))
	suite.mock.ExpectQuery(`FROM order_items oi`).
		WithArgs(suite.orderID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "order_id", "product_id", "quantity", "paid_quantity", "created_at", "name", "price"}).
			AddRow(suite.itemID, suite.orderID, suite.productID, "5", "0", time.Now(), "Espetinho de carne", total))
}

func ptrTime(t time.Time) *time.Time { return &t }

func (suite *OrderServiceTestSuite) TestClose_Success() {
	suite.mock.ExpectBegin()
	suite.expectStatusLock("open")
	suite.mock.ExpectExec(`UPDATE orders SET status = 'closed', closed_at = \$1 WHERE id = \$2`).
		WithArgs(pgxmock.AnyArg(), suite.orderID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectQuery(`SELECT COALESCE\(SUM\(oi.quantity \* p.price\), 0\)`).
		WithArgs(suite.orderID).
		WillReturnRows(pgxmock.NewRows([]string{"total"}).AddRow("25.00"))
	suite.mock.ExpectExec(`INSERT INTO cash_transactions`).
		WithArgs(pgxmock.AnyArg(), models.CashIn, pgxmock.AnyArg(), models.CashCategorySale, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectQuery(`SELECT product_id, SUM\(quantity\)`).
		WithArgs(suite.orderID).
		WillReturnRows(pgxmock.NewRows([]string{"product_id", "quantity"}).AddRow(suite.productID, "5"))

	itemID := uuid.New()
	suite.mock.ExpectQuery(`WHERE ii.product_id = \$1 FOR UPDATE OF ii`).
		WithArgs(suite.productID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "product_id", "manual_name", "quantity", "unit", "min_quantity", "alert_disabled", "display_name"}).
			AddRow(itemID, &suite.productID, nil, "10", "un", "2", false, "Espetinho de carne"))
	suite.mock.ExpectExec(`UPDATE inventory_items SET quantity = \$1 WHERE id = \$2`).
		WithArgs(pgxmock.AnyArg(), itemID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`INSERT INTO inventory_transactions`).
		WithArgs(pgxmock.AnyArg(), itemID, pgxmock.AnyArg(), models.MovementOut, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	suite.expectReload("5.00")

	order, err := suite.service.Close(suite.ctx, suite.orderID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.OrderClosed, order.Status)
	assert.True(suite.T(), order.Total.Equal(decimal.RequireFromString("25.00")))
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *OrderServiceTestSuite) TestClose_AlreadyClosed() {
	suite.mock.ExpectBegin()
	suite.expectStatusLock("closed")
	suite.mock.ExpectRollback()

	_, err := suite.service.Close(suite.ctx, suite.orderID)
	assert.True(suite.T(), common.IsInvalidState(err))
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *OrderServiceTestSuite) TestClose_NotFound() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT status FROM orders WHERE id = \$1 FOR UPDATE`).
		WithArgs(suite.orderID).
		WillReturnRows(pgxmock.NewRows([]string{"status"}))
	suite.mock.ExpectRollback()

	_, err := suite.service.Close(suite.ctx, suite.orderID)
	assert.True(suite.T(), common.IsNotFound(err))
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

// A failure anywhere inside settlement rolls everything back: no status
// flip, no cash entry, no stock movement survives.
func (suite *OrderServiceTestSuite) TestClose_RollsBackOnCashFailure() {
	suite.mock.ExpectBegin()
	suite.expectStatusLock("open")
	suite.mock.ExpectExec(`UPDATE orders SET status = 'closed'`).
		WithArgs(pgxmock.AnyArg(), suite.orderID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectQuery(`SELECT COALESCE\(SUM\(oi.quantity \* p.price\), 0\)`).
		WithArgs(suite.orderID).
		WillReturnRows(pgxmock.NewRows([]string{"total"}).AddRow("25.00"))
	suite.mock.ExpectExec(`INSERT INTO cash_transactions`).
		WithArgs(pgxmock.AnyArg(), models.CashIn, pgxmock.AnyArg(), models.CashCategorySale, pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))
	suite.mock.ExpectRollback()

	_, err := suite.service.Close(suite.ctx, suite.orderID)
	assert.Error(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

// Ordering 5 with only 2 on hand deducts 2 and leaves zero, never a
// negative quantity.
func (suite *OrderServiceTestSuite) TestClose_ClampsDeductionToStock() {
	itemID := uuid.New()

	suite.mock.ExpectBegin()
	suite.expectStatusLock("open")
	suite.mock.ExpectExec(`UPDATE orders SET status = 'closed'`).
		WithArgs(pgxmock.AnyArg(), suite.orderID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectQuery(`SELECT COALESCE\(SUM\(oi.quantity \* p.price\), 0\)`).
		WithArgs(suite.orderID).
		WillReturnRows(pgxmock.NewRows([]string{"total"}).AddRow("25.00"))
	suite.mock.ExpectExec(`INSERT INTO cash_transactions`).
		WithArgs(pgxmock.AnyArg(), models.CashIn, pgxmock.AnyArg(), models.CashCategorySale, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectQuery(`SELECT product_id, SUM\(quantity\)`).
		WithArgs(suite.orderID).
		WillReturnRows(pgxmock.NewRows([]string{"product_id", "quantity"}).AddRow(suite.productID, "5"))
	suite.mock.ExpectQuery(`WHERE ii.product_id = \$1 FOR UPDATE OF ii`).
		WithArgs(suite.productID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "product_id", "manual_name", "quantity", "unit", "min_quantity", "alert_disabled", "display_name"}).
			AddRow(itemID, &suite.productID, nil, "2", "un", "1", false, "Espetinho de carne"))
	suite.mock.ExpectExec(`UPDATE inventory_items SET quantity = \$1 WHERE id = \$2`).
		WithArgs(decimalArg("0"), itemID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`INSERT INTO inventory_transactions`).
		WithArgs(pgxmock.AnyArg(), itemID, decimalArg("2"), models.MovementOut, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	suite.expectReload("5.00")

	_, err := suite.service.Close(suite.ctx, suite.orderID)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

// Closing a two-line order writes exactly one cash entry for the grand
// total and one movement per sold product.
func (suite *OrderServiceTestSuite) TestClose_RevenueConservation() {
	productB := uuid.New()
	itemA := uuid.New()
	itemB := uuid.New()

	suite.mock.ExpectBegin()
	suite.expectStatusLock("open")
	suite.mock.ExpectExec(`UPDATE orders SET status = 'closed'`).
		WithArgs(pgxmock.AnyArg(), suite.orderID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectQuery(`SELECT COALESCE\(SUM\(oi.quantity \* p.price\), 0\)`).
		WithArgs(suite.orderID).
		WillReturnRows(pgxmock.NewRows([]string{"total"}).AddRow("25.00"))
	suite.mock.ExpectExec(`INSERT INTO cash_transactions`).
		WithArgs(pgxmock.AnyArg(), models.CashIn, decimalArg("25.00"), models.CashCategorySale, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectQuery(`SELECT product_id, SUM\(quantity\)`).
		WithArgs(suite.orderID).
		WillReturnRows(pgxmock.NewRows([]string{"product_id", "quantity"}).
			AddRow(suite.productID, "2").
			AddRow(productB, "1"))

	suite.mock.ExpectQuery(`WHERE ii.product_id = \$1 FOR UPDATE OF ii`).
		WithArgs(suite.productID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "product_id", "manual_name", "quantity", "unit", "min_quantity", "alert_disabled", "display_name"}).
			AddRow(itemA, &suite.productID, nil, "10", "un", "2", false, "Espetinho de carne"))
	suite.mock.ExpectExec(`UPDATE inventory_items SET quantity = \$1 WHERE id = \$2`).
		WithArgs(decimalArg("8"), itemA).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`INSERT INTO inventory_transactions`).
		WithArgs(pgxmock.AnyArg(), itemA, decimalArg("2"), models.MovementOut, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	suite.mock.ExpectQuery(`WHERE ii.product_id = \$1 FOR UPDATE OF ii`).
		WithArgs(productB).
		WillReturnRows(pgxmock.NewRows([]string{"id", "product_id", "manual_name", "quantity", "unit", "min_quantity", "alert_disabled", "display_name"}).
			AddRow(itemB, &productB, nil, "6", "un", "2", false, "Refrigerante lata"))
	suite.mock.ExpectExec(`UPDATE inventory_items SET quantity = \$1 WHERE id = \$2`).
		WithArgs(decimalArg("5"), itemB).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`INSERT INTO inventory_transactions`).
		WithArgs(pgxmock.AnyArg(), itemB, decimalArg("1"), models.MovementOut, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	suite.expectReload("5.00")

	_, err := suite.service.Close(suite.ctx, suite.orderID)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

// A product without a stock record is silently skipped: the order still
// closes and the cash entry still lands.
func (suite *OrderServiceTestSuite) TestClose_SkipsUntrackedProduct() {
	suite.mock.ExpectBegin()
	suite.expectStatusLock("open")
	suite.mock.ExpectExec(`UPDATE orders SET status = 'closed'`).
		WithArgs(pgxmock.AnyArg(), suite.orderID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectQuery(`SELECT COALESCE\(SUM\(oi.quantity \* p.price\), 0\)`).
		WithArgs(suite.orderID).
		WillReturnRows(pgxmock.NewRows([]string{"total"}).AddRow("12.50"))
	suite.mock.ExpectExec(`INSERT INTO cash_transactions`).
		WithArgs(pgxmock.AnyArg(), models.CashIn, pgxmock.AnyArg(), models.CashCategorySale, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectQuery(`SELECT product_id, SUM\(quantity\)`).
		WithArgs(suite.orderID).
		WillReturnRows(pgxmock.NewRows([]string{"product_id", "quantity"}).AddRow(suite.productID, "5"))
	suite.mock.ExpectQuery(`WHERE ii.product_id = \$1 FOR UPDATE OF ii`).
		WithArgs(suite.productID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "product_id", "manual_name", "quantity", "unit", "min_quantity", "alert_disabled", "display_name"}))
	suite.mock.ExpectCommit()

	suite.expectReload("2.50")

	_, err := suite.service.Close(suite.ctx, suite.orderID)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *OrderServiceTestSuite) TestAddItem_MergesExistingLine() {
	suite.mock.ExpectBegin()
	suite.expectStatusLock("open")
	suite.mock.ExpectQuery(`WHERE id = \$1 AND deleted = FALSE`).
		WithArgs(suite.productID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "price", "category", "barcode", "deleted", "created_at", "updated_at"}).
			AddRow(suite.productID, "Espetinho de carne", "5.00", "espetinho", nil, false, time.Now(), time.Now()))
	suite.mock.ExpectQuery(`WHERE order_id = \$1 AND product_id = \$2`).
		WithArgs(suite.orderID, suite.productID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "order_id", "product_id", "quantity", "paid_quantity", "created_at"}).
			AddRow(suite.itemID, suite.orderID, suite.productID, "2", "0", time.Now()))
	suite.mock.ExpectExec(`UPDATE order_items SET quantity = quantity \+ \$1`).
		WithArgs(pgxmock.AnyArg(), suite.itemID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	err := suite.service.AddItem(suite.ctx, suite.orderID, suite.productID, decimal.NewFromInt(3))
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *OrderServiceTestSuite) TestAddItem_RejectsClosedOrder() {
	suite.mock.ExpectBegin()
	suite.expectStatusLock("closed")
	suite.mock.ExpectRollback()

	err := suite.service.AddItem(suite.ctx, suite.orderID, suite.productID, decimal.NewFromInt(1))
	assert.True(suite.T(), common.IsInvalidState(err))
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *OrderServiceTestSuite) TestAddItem_RejectsNonPositiveQuantity() {
	err := suite.service.AddItem(suite.ctx, suite.orderID, suite.productID, decimal.Zero)
	assert.True(suite.T(), common.IsValidation(err))
}

func (suite *OrderServiceTestSuite) TestPayPartial_ClampsToOrderedQuantity() {
	suite.mock.ExpectBegin()
	suite.expectStatusLock("open")
	suite.mock.ExpectExec(`SET paid_quantity = LEAST\(quantity, paid_quantity \+ \$1\)`).
		WithArgs(pgxmock.AnyArg(), suite.itemID, suite.orderID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	err := suite.service.PayPartial(suite.ctx, suite.orderID, []models.PartialPayment{
		{OrderItemID: suite.itemID, Quantity: decimal.NewFromInt(99)},
	})
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *OrderServiceTestSuite) TestCreate_RejectsBadTableNumber() {
	_, err := suite.service.Create(suite.ctx, 0, nil)
	assert.True(suite.T(), common.IsValidation(err))
}

// decimalArg matches a decimal argument by numeric value rather than
// internal representation.
type decimalMatcher struct {
	want decimal.Decimal
}

func decimalArg(value string) decimalMatcher {
	return decimalMatcher{want: decimal.RequireFromString(value)}
}

func (m decimalMatcher) Match(v any) bool {
	d, ok := v.(decimal.Decimal)
	if !ok {
		return false
	}
	return d.Equal(m.want)
}
