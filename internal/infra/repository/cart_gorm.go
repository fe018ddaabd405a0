package repository

import (
	"context"
	"errors"

	"eventmart/internal/domain/model"
	repo "eventmart/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// ユーザーのカートを取得し、無ければ作成
// 同時作成は user_id のユニークで片方を捨てる
func (r *CartGormRepository) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	cart := model.Cart{UserID: userID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&cart).Error
	if err != nil {
		return model.Cart{}, translateError(err)
	}
	return r.FindByUserID(ctx, userID)
}

func (r *CartGormRepository) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return model.Cart{}, translateError(err)
	}
	return cart, nil
}

// カート明細を一覧取得（追加順）
func (r *CartGormRepository) ListLines(ctx context.Context, cartID int64) ([]model.CartLine, error) {
	lines := []model.CartLine{}
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("id asc").
		Find(&lines).Error; err != nil {
		return []model.CartLine{}, err
	}
	return lines, nil
}

func (r *CartGormRepository) FindLine(ctx context.Context, lineID int64) (model.CartLine, error) {
	var line model.CartLine
	if err := r.db.WithContext(ctx).Where("id = ?", lineID).First(&line).Error; err != nil {
		return model.CartLine{}, translateError(err)
	}
	return line, nil
}

// 同一バリエーションは数量加算
func (r *CartGormRepository) AddVariantLine(ctx context.Context, cartID int64, variantID int64, addQty int64) error {
	if addQty <= 0 {
		return errors.New("invalid quantity")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var line model.CartLine

		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("cart_id = ? AND item_type = ? AND product_variant_id = ?", cartID, model.ItemTypeProductVariant, variantID).
			First(&line).Error

		if err == nil {
			//既存ありなら数量を増やす
			res := tx.Model(&model.CartLine{}).
				Where("id = ?", line.ID).
				Update("quantity", gorm.Expr("quantity + ?", addQty))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return repo.ErrNotFound
			}
			return nil
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		//無い場合は新規作成
		vid := variantID
		newLine := model.CartLine{
			CartID:           cartID,
			ItemType:         model.ItemTypeProductVariant,
			ProductVariantID: &vid,
			Quantity:         addQty,
		}
		return translateError(tx.Create(&newLine).Error)
	})
}

// チケットは1イベント1行・数量1
func (r *CartGormRepository) AddTicketLine(ctx context.Context, cartID int64, ticketTypeID int64, eventID int64) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.CartLine{}).
		Where("cart_id = ? AND event_id = ?", cartID, eventID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return repo.ErrConflict
	}

	tid, eid := ticketTypeID, eventID
	line := model.CartLine{
		CartID:       cartID,
		ItemType:     model.ItemTypeTicketType,
		TicketTypeID: &tid,
		EventID:      &eid,
		Quantity:     1,
	}
	return translateError(r.db.WithContext(ctx).Create(&line).Error)
}

// 明細の数量を更新
func (r *CartGormRepository) UpdateLineQuantity(ctx context.Context, lineID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartLine{}).
		Where("id = ?", lineID).
		Update("quantity", qty)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 明細を削除
func (r *CartGormRepository) DeleteLine(ctx context.Context, lineID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.CartLine{}, lineID)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 指定カートの明細を全削除
func (r *CartGormRepository) Clear(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&model.CartLine{}).Error
}
