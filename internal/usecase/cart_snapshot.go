package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"eventmart/internal/domain/model"
	repo "eventmart/internal/repository"

	"github.com/shopspring/decimal"
)

// カート明細を現在のカタログで解決したもの
type SnapshotLine struct {
	CartLineID         int64
	ItemType           model.ItemType
	ProductVariantID   *int64
	TicketTypeID       *int64
	EventID            *int64
	ItemName           string
	VariantDescription string
	UnitPrice          decimal.Decimal
	Quantity           int64
	// 残り在庫 / 残り販売枠
	Available int64
	// 商品が公開中か（チケットは常に true）
	Active bool
	// チケットの販売期間内か（商品は常に true）
	OnSale bool
}

func (l SnapshotLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// エラーメッセージに出す名前
func (l SnapshotLine) Label() string {
	if l.ItemType == model.ItemTypeTicketType && l.VariantDescription != "" {
		return l.ItemName + " " + l.VariantDescription
	}
	if l.VariantDescription != "" {
		return l.ItemName + " (" + l.VariantDescription + ")"
	}
	return l.ItemName
}

type CartSnapshot struct {
	CartID   int64
	Lines    []SnapshotLine
	Subtotal decimal.Decimal
}

// チケット明細の合計枚数（= 必要な参加者数）
func (s CartSnapshot) TicketQuantity() int64 {
	var n int64
	for _, l := range s.Lines {
		if l.ItemType == model.ItemTypeTicketType {
			n += l.Quantity
		}
	}
	return n
}

// カートを読み、明細ごとに価格・名前・在庫を解決する。
// lock=true のときは在庫行を FOR UPDATE で取る（注文確定用。Tx内で呼ぶこと）
func resolveCart(ctx context.Context, carts repo.CartRepository, catalog repo.CatalogRepository, cartID int64, now time.Time, lock bool) (CartSnapshot, error) {
	lines, err := carts.ListLines(ctx, cartID)
	if err != nil {
		return CartSnapshot{}, err
	}

	var variantIDs, ticketTypeIDs []int64
	for _, l := range lines {
		switch l.ItemType {
		case model.ItemTypeProductVariant:
			if l.ProductVariantID != nil {
				variantIDs = append(variantIDs, *l.ProductVariantID)
			}
		case model.ItemTypeTicketType:
			if l.TicketTypeID != nil {
				ticketTypeIDs = append(ticketTypeIDs, *l.TicketTypeID)
			}
		}
	}
	variantIDs = uniqueSorted(variantIDs)
	ticketTypeIDs = uniqueSorted(ticketTypeIDs)

	var (
		variants    map[int64]model.ProductVariant
		ticketTypes map[int64]model.TicketType
	)
	// ロック順は 商品バリエーション → チケット種別、それぞれ id 昇順
	if lock {
		if variants, err = catalog.LockVariants(ctx, variantIDs); err != nil {
			return CartSnapshot{}, err
		}
		if ticketTypes, err = catalog.LockTicketTypes(ctx, ticketTypeIDs); err != nil {
			return CartSnapshot{}, err
		}
	} else {
		if variants, err = catalog.FindVariants(ctx, variantIDs); err != nil {
			return CartSnapshot{}, err
		}
		if ticketTypes, err = catalog.FindTicketTypes(ctx, ticketTypeIDs); err != nil {
			return CartSnapshot{}, err
		}
	}

	snap := CartSnapshot{CartID: cartID, Subtotal: decimal.Zero}
	for _, l := range lines {
		sl := SnapshotLine{
			CartLineID:       l.ID,
			ItemType:         l.ItemType,
			ProductVariantID: l.ProductVariantID,
			TicketTypeID:     l.TicketTypeID,
			EventID:          l.EventID,
			Quantity:         l.Quantity,
			UnitPrice:        decimal.Zero,
			Active:           true,
			OnSale:           true,
		}

		switch l.ItemType {
		case model.ItemTypeProductVariant:
			v, ok := lookup(variants, l.ProductVariantID)
			if !ok || v.Product.ID == 0 || v.Product.DeletedAt.Valid {
				// カタログから消えた商品
				sl.ItemName = fmt.Sprintf("item #%d", l.ID)
				sl.Active = false
				break
			}
			sl.ItemName = v.Product.Name
			sl.VariantDescription = v.Name
			sl.UnitPrice = v.UnitPrice()
			sl.Available = v.StockQuantity
			sl.Active = v.Product.IsActive
		case model.ItemTypeTicketType:
			t, ok := lookup(ticketTypes, l.TicketTypeID)
			if !ok {
				sl.ItemName = fmt.Sprintf("ticket #%d", l.ID)
				sl.Active = false
				break
			}
			sl.ItemName = t.Event.Name
			sl.VariantDescription = t.Name
			sl.UnitPrice = t.Price
			sl.Available = t.TotalQuantity
			sl.OnSale = t.OnSale(now)
		default:
			sl.ItemName = fmt.Sprintf("item #%d", l.ID)
			sl.Active = false
		}

		snap.Subtotal = snap.Subtotal.Add(sl.LineTotal())
		snap.Lines = append(snap.Lines, sl)
	}
	return snap, nil
}

func lookup[T any](m map[int64]T, id *int64) (T, bool) {
	var zero T
	if id == nil {
		return zero, false
	}
	v, ok := m[*id]
	return v, ok
}

func uniqueSorted(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
