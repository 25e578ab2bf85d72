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

type ProductServiceTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	service ProductService
	ctx     context.Context
}

func (suite *ProductServiceTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.service = NewProductService(mock, repositories.NewProductRepo(mock), repositories.NewInventoryRepo(mock))
	suite.ctx = context.Background()
}

func (suite *ProductServiceTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestProductServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProductServiceTestSuite))
}

// Creating a product also creates its zero-quantity stock record in the
// same transaction.
func (suite *ProductServiceTestSuite) TestCreate_AlsoCreatesStockRecord() {
	product := &models.Product{
		Name:     "Espetinho de carne",
		Price:    decimal.RequireFromString("5.00"),
		Category: "espetinho",
	}

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`INSERT INTO products`).
		WithArgs(pgxmock.AnyArg(), product.Name, product.Price, product.Category, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO inventory_items`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "un", pgxmock.AnyArg(), false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	err := suite.service.Create(suite.ctx, product)
	assert.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), uuid.Nil, product.ID)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *ProductServiceTestSuite) TestCreate_RequiresName() {
	err := suite.service.Create(suite.ctx, &models.Product{Price: decimal.NewFromInt(5)})
	assert.True(suite.T(), common.IsValidation(err))
}

func (suite *ProductServiceTestSuite) TestCreate_RejectsNegativePrice() {
	err := suite.service.Create(suite.ctx, &models.Product{Name: "Cerveja", Price: decimal.NewFromInt(-1)})
	assert.True(suite.T(), common.IsValidation(err))
}

// Deleting a product flags it rather than removing the row, so closed
// orders keep resolving their line items; the stock record and its
// movement log go away for good.
func (suite *ProductServiceTestSuite) TestDelete_SoftDeletesAndDropsStock() {
	id := uuid.New()

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`UPDATE products SET deleted = TRUE`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`DELETE FROM inventory_transactions`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	suite.mock.ExpectExec(`DELETE FROM inventory_items WHERE product_id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	suite.mock.ExpectCommit()

	err := suite.service.Delete(suite.ctx, id)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *ProductServiceTestSuite) TestDelete_UnknownProduct() {
	id := uuid.New()

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`UPDATE products SET deleted = TRUE`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	suite.mock.ExpectRollback()

	err := suite.service.Delete(suite.ctx, id)
	assert.True(suite.T(), common.IsNotFound(err))
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}
