package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"espetaria/internal/common"
	"espetaria/internal/models"
	"espetaria/internal/repositories"
)

type InventoryServiceTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	service InventoryService
	itemID  uuid.UUID
	ctx     context.Context
}

func (suite *InventoryServiceTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.service = NewInventoryService(mock, repositories.NewInventoryRepo(mock))
	suite.itemID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *InventoryServiceTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestInventoryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InventoryServiceTestSuite))
}

func (suite *InventoryServiceTestSuite) expectQuantityLock(quantity string) {
	suite.mock.ExpectQuery(`SELECT quantity FROM inventory_items WHERE id = \$1 FOR UPDATE`).
		WithArgs(suite.itemID).
		WillReturnRows(pgxmock.NewRows([]string{"quantity"}).AddRow(quantity))
}

func (suite *InventoryServiceTestSuite) TestAdjust_Inbound() {
	suite.mock.ExpectBegin()
	suite.expectQuantityLock("3")
	suite.mock.ExpectExec(`UPDATE inventory_items SET quantity = \$1 WHERE id = \$2`).
		WithArgs(decimalArg("8"), suite.itemID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`INSERT INTO inventory_transactions`).
		WithArgs(pgxmock.AnyArg(), suite.itemID, decimalArg("5"), models.MovementIn, "compra semanal").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	err := suite.service.Adjust(suite.ctx, suite.itemID, models.MovementIn, decimal.NewFromInt(5), "compra semanal")
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *InventoryServiceTestSuite) TestAdjust_Outbound() {
	suite.mock.ExpectBegin()
	suite.expectQuantityLock("10")
	suite.mock.ExpectExec(`UPDATE inventory_items SET quantity = \$1 WHERE id = \$2`).
		WithArgs(decimalArg("6"), suite.itemID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`INSERT INTO inventory_transactions`).
		WithArgs(pgxmock.AnyArg(), suite.itemID, decimalArg("4"), models.MovementOut, "perda").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	err := suite.service.Adjust(suite.ctx, suite.itemID, models.MovementOut, decimal.NewFromInt(4), "perda")
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

// Manual adjustments never clamp: taking out more than is on hand is an
// input error, unlike the automatic settlement deduction.
func (suite *InventoryServiceTestSuite) TestAdjust_InsufficientStock() {
	suite.mock.ExpectBegin()
	suite.expectQuantityLock("2")
	suite.mock.ExpectRollback()

	err := suite.service.Adjust(suite.ctx, suite.itemID, models.MovementOut, decimal.NewFromInt(5), "")
	assert.True(suite.T(), common.IsValidation(err))
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *InventoryServiceTestSuite) TestAdjust_RejectsNonPositiveQuantity() {
	err := suite.service.Adjust(suite.ctx, suite.itemID, models.MovementIn, decimal.Zero, "")
	assert.True(suite.T(), common.IsValidation(err))
}

func (suite *InventoryServiceTestSuite) TestDelete_RejectsProductLinkedItem() {
	productID := uuid.New()
	suite.mock.ExpectQuery(`WHERE ii.id = \$1`).
		WithArgs(suite.itemID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "product_id", "manual_name", "quantity", "unit", "min_quantity", "alert_disabled", "display_name"}).
			AddRow(suite.itemID, &productID, nil, "10", "un", "2", false, "Espetinho de carne"))

	err := suite.service.Delete(suite.ctx, suite.itemID)
	assert.True(suite.T(), common.IsInvalidState(err))
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *InventoryServiceTestSuite) TestDelete_ManualItem() {
	name := "Carvão"
	suite.mock.ExpectQuery(`WHERE ii.id = \$1`).
		WithArgs(suite.itemID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "product_id", "manual_name", "quantity", "unit", "min_quantity", "alert_disabled", "display_name"}).
			AddRow(suite.itemID, nil, &name, "4", "kg", "1", false, name))
	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`DELETE FROM inventory_transactions WHERE inventory_item_id = \$1`).
		WithArgs(suite.itemID).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	suite.mock.ExpectExec(`DELETE FROM inventory_items WHERE id = \$1`).
		WithArgs(suite.itemID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	suite.mock.ExpectCommit()

	err := suite.service.Delete(suite.ctx, suite.itemID)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *InventoryServiceTestSuite) TestAddManual_RequiresName() {
	_, err := suite.service.AddManual(suite.ctx, "", "kg", decimal.NewFromInt(1), decimal.Zero)
	assert.True(suite.T(), common.IsValidation(err))
}

func (suite *InventoryServiceTestSuite) TestAddManual_DefaultsUnit() {
	suite.mock.ExpectExec(`INSERT INTO inventory_items`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), decimalArg("4"), "un", decimalArg("1"), false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	item, err := suite.service.AddManual(suite.ctx, "Gelo", "", decimal.NewFromInt(4), decimal.NewFromInt(1))
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "un", item.Unit)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}
