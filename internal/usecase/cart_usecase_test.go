package usecase_test

import (
	"context"
	"testing"

	"eventmart/internal/domain/model"
	repo "eventmart/internal/repository"
	"eventmart/internal/usecase"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// Repository mocks（カート向け）
// =====================

type CartRepoMock struct {
	mock.Mock
	// Clear などカート操作で使わないもの
	repo.CartRepository
}

func (m *CartRepoMock) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) ListLines(ctx context.Context, cartID int64) ([]model.CartLine, error) {
	args := m.Called(ctx, cartID)
	ls, _ := args.Get(0).([]model.CartLine)
	return ls, args.Error(1)
}

func (m *CartRepoMock) FindLine(ctx context.Context, lineID int64) (model.CartLine, error) {
	args := m.Called(ctx, lineID)
	l, _ := args.Get(0).(model.CartLine)
	return l, args.Error(1)
}

func (m *CartRepoMock) AddVariantLine(ctx context.Context, cartID int64, variantID int64, addQty int64) error {
	args := m.Called(ctx, cartID, variantID, addQty)
	return args.Error(0)
}

func (m *CartRepoMock) AddTicketLine(ctx context.Context, cartID int64, ticketTypeID int64, eventID int64) error {
	args := m.Called(ctx, cartID, ticketTypeID, eventID)
	return args.Error(0)
}

func (m *CartRepoMock) UpdateLineQuantity(ctx context.Context, lineID int64, qty int64) error {
	args := m.Called(ctx, lineID, qty)
	return args.Error(0)
}

func (m *CartRepoMock) DeleteLine(ctx context.Context, lineID int64) error {
	args := m.Called(ctx, lineID)
	return args.Error(0)
}

type CatalogRepoMock struct {
	mock.Mock
	repo.CatalogRepository
}

func (m *CatalogRepoMock) FindVariant(ctx context.Context, variantID int64) (model.ProductVariant, error) {
	args := m.Called(ctx, variantID)
	v, _ := args.Get(0).(model.ProductVariant)
	return v, args.Error(1)
}

func (m *CatalogRepoMock) FindTicketType(ctx context.Context, ticketTypeID int64) (model.TicketType, error) {
	args := m.Called(ctx, ticketTypeID)
	t, _ := args.Get(0).(model.TicketType)
	return t, args.Error(1)
}

func (m *CatalogRepoMock) FindVariants(ctx context.Context, ids []int64) (map[int64]model.ProductVariant, error) {
	args := m.Called(ctx, ids)
	vs, _ := args.Get(0).(map[int64]model.ProductVariant)
	return vs, args.Error(1)
}

func (m *CatalogRepoMock) FindTicketTypes(ctx context.Context, ids []int64) (map[int64]model.TicketType, error) {
	args := m.Called(ctx, ids)
	ts, _ := args.Get(0).(map[int64]model.TicketType)
	return ts, args.Error(1)
}

// =====================
// helper
// =====================

const cartID int64 = 3

func newCartMocks(userID int64) (*CartRepoMock, *CatalogRepoMock, *usecase.CartUsecase) {
	carts := new(CartRepoMock)
	catalog := new(CatalogRepoMock)
	carts.On("GetOrCreateByUserID", mock.Anything, userID).Return(model.Cart{ID: cartID, UserID: userID}, nil)
	return carts, catalog, usecase.NewCartUsecase(carts, catalog, newFakeClock(), zerolog.Nop())
}

func teeVariant(stock int64) model.ProductVariant {
	return model.ProductVariant{
		ID:            10,
		ProductID:     1,
		Name:          "L",
		StockQuantity: stock,
		PriceOffset:   dec("50"),
		Product:       model.Product{ID: 1, Name: "Tour Tee", BasePrice: dec("300"), IsActive: true},
	}
}

func variantLine(id int64, variantID int64, qty int64) model.CartLine {
	return model.CartLine{ID: id, CartID: cartID, ItemType: model.ItemTypeProductVariant, ProductVariantID: &variantID, Quantity: qty}
}

// =====================
// tests
// =====================

// 同一バリエーションの追加は既存数量と合わせて在庫チェック
func TestCart_AddProduct_ExceedsStockWithExistingLine(t *testing.T) {
	carts, catalog, uc := newCartMocks(1)
	ctx := context.Background()

	catalog.On("FindVariant", mock.Anything, int64(10)).Return(teeVariant(4), nil)
	carts.On("ListLines", mock.Anything, cartID).Return([]model.CartLine{variantLine(100, 10, 2)}, nil)

	_, err := uc.AddProduct(ctx, buyer(1), usecase.AddProductInput{VariantID: 10, Quantity: 3})
	he := requireKind(t, err, usecase.KindStockConflict)
	assert.Equal(t, "Tour Tee (L)", he.Details["item"])
	assert.Equal(t, int64(4), he.Details["remaining"])

	carts.AssertNotCalled(t, "AddVariantLine", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCart_AddProduct_Success(t *testing.T) {
	carts, catalog, uc := newCartMocks(1)
	ctx := context.Background()
	v := teeVariant(4)

	catalog.On("FindVariant", mock.Anything, int64(10)).Return(v, nil)
	carts.On("ListLines", mock.Anything, cartID).Return([]model.CartLine{}, nil).Once()
	carts.On("AddVariantLine", mock.Anything, cartID, int64(10), int64(2)).Return(nil)
	carts.On("ListLines", mock.Anything, cartID).Return([]model.CartLine{variantLine(100, 10, 2)}, nil)
	catalog.On("FindVariants", mock.Anything, []int64{10}).Return(map[int64]model.ProductVariant{10: v}, nil)
	catalog.On("FindTicketTypes", mock.Anything, mock.Anything).Return(map[int64]model.TicketType{}, nil)

	res, err := uc.AddProduct(ctx, buyer(1), usecase.AddProductInput{VariantID: 10, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, "Tour Tee", res.Lines[0].ItemName)
	assert.True(t, res.Lines[0].UnitPrice.Equal(dec("350")))
	assert.True(t, res.Subtotal.Equal(dec("700")))
	assert.True(t, res.Lines[0].Purchasable)

	carts.AssertExpectations(t)
}

func TestCart_AddProduct_InactiveProduct(t *testing.T) {
	carts, catalog, uc := newCartMocks(1)
	v := teeVariant(4)
	v.Product.IsActive = false
	catalog.On("FindVariant", mock.Anything, int64(10)).Return(v, nil)

	_, err := uc.AddProduct(context.Background(), buyer(1), usecase.AddProductInput{VariantID: 10, Quantity: 1})
	requireKind(t, err, usecase.KindInvalidState)
	carts.AssertNotCalled(t, "AddVariantLine", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCart_AddProduct_Validation(t *testing.T) {
	_, _, uc := newCartMocks(1)

	_, err := uc.AddProduct(context.Background(), buyer(1), usecase.AddProductInput{VariantID: 10, Quantity: 0})
	requireKind(t, err, usecase.KindValidation)
	_, err = uc.AddProduct(context.Background(), buyer(1), usecase.AddProductInput{VariantID: 0, Quantity: 1})
	requireKind(t, err, usecase.KindValidation)
}

// 同じイベントのチケットは1行まで
func TestCart_AddTicket_SecondTicketForSameEvent(t *testing.T) {
	carts, catalog, uc := newCartMocks(1)
	tt := model.TicketType{ID: 20, EventID: 5, Name: "GA", Price: dec("800"), TotalQuantity: 50, Event: model.Event{ID: 5, Name: "Rock Night"}}

	catalog.On("FindTicketType", mock.Anything, int64(20)).Return(tt, nil)
	carts.On("AddTicketLine", mock.Anything, cartID, int64(20), int64(5)).Return(repo.ErrConflict)

	_, err := uc.AddTicket(context.Background(), buyer(1), usecase.AddTicketInput{TicketTypeID: 20})
	requireKind(t, err, usecase.KindInvalidState)
	carts.AssertExpectations(t)
}

func TestCart_AddTicket_SoldOut(t *testing.T) {
	carts, catalog, uc := newCartMocks(1)
	tt := model.TicketType{ID: 20, EventID: 5, Name: "GA", Price: dec("800"), TotalQuantity: 0, Event: model.Event{ID: 5, Name: "Rock Night"}}
	catalog.On("FindTicketType", mock.Anything, int64(20)).Return(tt, nil)

	_, err := uc.AddTicket(context.Background(), buyer(1), usecase.AddTicketInput{TicketTypeID: 20})
	he := requireKind(t, err, usecase.KindStockConflict)
	assert.Equal(t, "Rock Night GA", he.Details["item"])
	carts.AssertNotCalled(t, "AddTicketLine", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCart_UpdateLine_TicketLineIsFixed(t *testing.T) {
	carts, _, uc := newCartMocks(1)
	ttID, evID := int64(20), int64(5)
	carts.On("FindLine", mock.Anything, int64(200)).Return(model.CartLine{
		ID: 200, CartID: cartID, ItemType: model.ItemTypeTicketType, TicketTypeID: &ttID, EventID: &evID, Quantity: 1,
	}, nil)

	_, err := uc.UpdateLine(context.Background(), buyer(1), 200, 2)
	requireKind(t, err, usecase.KindValidation)
	carts.AssertNotCalled(t, "UpdateLineQuantity", mock.Anything, mock.Anything, mock.Anything)
}

// 他人のカートの明細は 404
func TestCart_RemoveLine_OtherUsersLine(t *testing.T) {
	carts, _, uc := newCartMocks(1)
	other := variantLine(300, 10, 1)
	other.CartID = 99
	carts.On("FindLine", mock.Anything, int64(300)).Return(other, nil)

	_, err := uc.RemoveLine(context.Background(), buyer(1), 300)
	requireKind(t, err, usecase.KindNotFound)
	carts.AssertNotCalled(t, "DeleteLine", mock.Anything, mock.Anything)
}

// 在庫が減った明細は表示するが購入不可
func TestCart_GetCart_MarksShortLines(t *testing.T) {
	carts, catalog, uc := newCartMocks(1)
	v := teeVariant(1)

	carts.On("ListLines", mock.Anything, cartID).Return([]model.CartLine{variantLine(100, 10, 3)}, nil)
	catalog.On("FindVariants", mock.Anything, []int64{10}).Return(map[int64]model.ProductVariant{10: v}, nil)
	catalog.On("FindTicketTypes", mock.Anything, mock.Anything).Return(map[int64]model.TicketType{}, nil)

	res, err := uc.GetCart(context.Background(), buyer(1))
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.False(t, res.Lines[0].Purchasable)
	assert.Equal(t, int64(1), res.Lines[0].Available)
	assert.True(t, res.Subtotal.Equal(dec("1050")))
}

func TestCart_Unauthorized(t *testing.T) {
	_, _, uc := newCartMocks(1)
	_, err := uc.GetCart(context.Background(), model.Principal{})
	requireKind(t, err, usecase.KindUnauthorized)
}
