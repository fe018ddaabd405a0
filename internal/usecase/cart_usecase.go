package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"eventmart/internal/domain/model"
	repo "eventmart/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジック。
// 在庫はここでは引き当てない（確定は注文作成のTx内で再チェックする）
type CartUsecase struct {
	carts   repo.CartRepository
	catalog repo.CatalogRepository
	clock   Clock
	log     zerolog.Logger
}

func NewCartUsecase(carts repo.CartRepository, catalog repo.CatalogRepository, clock Clock, log zerolog.Logger) *CartUsecase {
	return &CartUsecase{
		carts:   carts,
		catalog: catalog,
		clock:   clock,
		log:     log,
	}
}

type CartLineResponse struct {
	ID                 int64           `json:"id"`
	ItemType           model.ItemType  `json:"item_type"`
	ProductVariantID   *int64          `json:"product_variant_id,omitempty"`
	TicketTypeID       *int64          `json:"ticket_type_id,omitempty"`
	EventID            *int64          `json:"event_id,omitempty"`
	ItemName           string          `json:"item_name"`
	VariantDescription string          `json:"variant_description"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	Quantity           int64           `json:"quantity"`
	Available          int64           `json:"available"`
	LineTotal          decimal.Decimal `json:"line_total"`
	// 今このまま注文できるか
	Purchasable bool `json:"purchasable"`
}

type CartResponse struct {
	Lines    []CartLineResponse `json:"lines"`
	Subtotal decimal.Decimal    `json:"subtotal"`
}

type AddProductInput struct {
	VariantID int64
	Quantity  int64
}

type AddTicketInput struct {
	TicketTypeID int64
}

// カート取得（無ければ作って空を返す）
func (u *CartUsecase) GetCart(ctx context.Context, p model.Principal) (CartResponse, error) {
	cart, err := u.cartOf(ctx, p)
	if err != nil {
		return CartResponse{}, err
	}
	return u.buildCartResponse(ctx, cart.ID)
}

// 商品を追加（同一バリエーションは数量加算）
func (u *CartUsecase) AddProduct(ctx context.Context, p model.Principal, in AddProductInput) (CartResponse, error) {
	if in.VariantID <= 0 {
		return CartResponse{}, errValidation("invalid variant_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, errValidation("invalid quantity")
	}

	cart, err := u.cartOf(ctx, p)
	if err != nil {
		return CartResponse{}, err
	}

	v, err := u.catalog.FindVariant(ctx, in.VariantID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, errNotFound("variant not found")
	}
	if err != nil {
		return CartResponse{}, u.fault(err, p, "find variant")
	}
	if v.Product.ID == 0 || !v.Product.IsActive {
		return CartResponse{}, errInvalidState(fmt.Sprintf("%s is not available", v.DisplayName()))
	}

	lines, err := u.carts.ListLines(ctx, cart.ID)
	if err != nil {
		return CartResponse{}, u.fault(err, p, "list cart lines")
	}
	var existing int64
	for _, l := range lines {
		if l.ProductVariantID != nil && *l.ProductVariantID == v.ID {
			existing = l.Quantity
			break
		}
	}
	if existing+in.Quantity > v.StockQuantity {
		return CartResponse{}, errStockConflict(v.DisplayName(), v.StockQuantity)
	}

	if err := u.carts.AddVariantLine(ctx, cart.ID, v.ID, in.Quantity); err != nil {
		return CartResponse{}, u.fault(err, p, "add variant line")
	}
	return u.buildCartResponse(ctx, cart.ID)
}

// チケットを1枚追加。同じイベントのチケットは1カートに1行まで
func (u *CartUsecase) AddTicket(ctx context.Context, p model.Principal, in AddTicketInput) (CartResponse, error) {
	if in.TicketTypeID <= 0 {
		return CartResponse{}, errValidation("invalid ticket_type_id")
	}

	cart, err := u.cartOf(ctx, p)
	if err != nil {
		return CartResponse{}, err
	}

	t, err := u.catalog.FindTicketType(ctx, in.TicketTypeID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, errNotFound("ticket type not found")
	}
	if err != nil {
		return CartResponse{}, u.fault(err, p, "find ticket type")
	}
	label := t.Event.Name + " " + t.Name
	if !t.OnSale(u.clock.Now()) {
		return CartResponse{}, errInvalidState(fmt.Sprintf("%s is not on sale", label))
	}
	if t.TotalQuantity < 1 {
		return CartResponse{}, errStockConflict(label, t.TotalQuantity)
	}

	err = u.carts.AddTicketLine(ctx, cart.ID, t.ID, t.EventID)
	if errors.Is(err, repo.ErrConflict) {
		return CartResponse{}, errInvalidState("cart already has a ticket for this event")
	}
	if err != nil {
		return CartResponse{}, u.fault(err, p, "add ticket line")
	}
	return u.buildCartResponse(ctx, cart.ID)
}

// 商品明細の数量変更。チケット明細は1のまま
func (u *CartUsecase) UpdateLine(ctx context.Context, p model.Principal, lineID int64, qty int64) (CartResponse, error) {
	if lineID <= 0 {
		return CartResponse{}, errValidation("invalid id")
	}
	if qty < 1 {
		return CartResponse{}, errValidation("invalid quantity")
	}

	cart, line, err := u.ownedLine(ctx, p, lineID)
	if err != nil {
		return CartResponse{}, err
	}
	if line.ItemType != model.ItemTypeProductVariant || line.ProductVariantID == nil {
		return CartResponse{}, errValidation("ticket lines are fixed at quantity 1")
	}

	v, err := u.catalog.FindVariant(ctx, *line.ProductVariantID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, errInvalidState("item is no longer available")
	}
	if err != nil {
		return CartResponse{}, u.fault(err, p, "find variant")
	}
	if qty > v.StockQuantity {
		return CartResponse{}, errStockConflict(v.DisplayName(), v.StockQuantity)
	}

	if err := u.carts.UpdateLineQuantity(ctx, line.ID, qty); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, errNotFound("not found")
		}
		return CartResponse{}, u.fault(err, p, "update cart line")
	}
	return u.buildCartResponse(ctx, cart.ID)
}

// 明細削除
func (u *CartUsecase) RemoveLine(ctx context.Context, p model.Principal, lineID int64) (CartResponse, error) {
	if lineID <= 0 {
		return CartResponse{}, errValidation("invalid id")
	}

	cart, line, err := u.ownedLine(ctx, p, lineID)
	if err != nil {
		return CartResponse{}, err
	}
	if err := u.carts.DeleteLine(ctx, line.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, errNotFound("not found")
		}
		return CartResponse{}, u.fault(err, p, "delete cart line")
	}
	return u.buildCartResponse(ctx, cart.ID)
}

func (u *CartUsecase) cartOf(ctx context.Context, p model.Principal) (model.Cart, error) {
	if p.UserID <= 0 {
		return model.Cart{}, errUnauthorized()
	}
	cart, err := u.carts.GetOrCreateByUserID(ctx, p.UserID)
	if err != nil {
		return model.Cart{}, u.fault(err, p, "get or create cart")
	}
	return cart, nil
}

// 他人のカートの明細は存在しない扱い
func (u *CartUsecase) ownedLine(ctx context.Context, p model.Principal, lineID int64) (model.Cart, model.CartLine, error) {
	cart, err := u.cartOf(ctx, p)
	if err != nil {
		return model.Cart{}, model.CartLine{}, err
	}
	line, err := u.carts.FindLine(ctx, lineID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Cart{}, model.CartLine{}, errNotFound("not found")
	}
	if err != nil {
		return model.Cart{}, model.CartLine{}, u.fault(err, p, "find cart line")
	}
	if line.CartID != cart.ID {
		return model.Cart{}, model.CartLine{}, errNotFound("not found")
	}
	return cart, line, nil
}

func (u *CartUsecase) buildCartResponse(ctx context.Context, cartID int64) (CartResponse, error) {
	now := u.clock.Now()
	snap, err := resolveCart(ctx, u.carts, u.catalog, cartID, now, false)
	if err != nil {
		u.log.Error().Err(err).Int64("cart_id", cartID).Msg("resolve cart")
		return CartResponse{}, errInternal()
	}

	out := CartResponse{Lines: make([]CartLineResponse, 0, len(snap.Lines)), Subtotal: snap.Subtotal}
	for _, l := range snap.Lines {
		out.Lines = append(out.Lines, CartLineResponse{
			ID:                 l.CartLineID,
			ItemType:           l.ItemType,
			ProductVariantID:   l.ProductVariantID,
			TicketTypeID:       l.TicketTypeID,
			EventID:            l.EventID,
			ItemName:           l.ItemName,
			VariantDescription: l.VariantDescription,
			UnitPrice:          l.UnitPrice,
			Quantity:           l.Quantity,
			Available:          l.Available,
			LineTotal:          l.LineTotal(),
			Purchasable:        l.Active && l.OnSale && l.Available >= l.Quantity,
		})
	}
	return out, nil
}

func (u *CartUsecase) fault(err error, p model.Principal, op string) error {
	u.log.Error().Err(err).Int64("user_id", p.UserID).Msg(op)
	return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
}
