package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driven"
)

// CorpusStore reads and replaces the imported shop corpus.
type CorpusStore struct {
	store *Store
}

var (
	_ driven.CorpusStore  = (*CorpusStore)(nil)
	_ driven.CorpusWriter = (*CorpusStore)(nil)
)

// LoadCorpus returns the imported corpus.
// An empty database is reported as domain.ErrCorpusUnavailable.
func (c *CorpusStore) LoadCorpus(ctx context.Context) (domain.Corpus, error) {
	shops, err := c.loadShops(ctx)
	if err != nil {
		return domain.Corpus{}, err
	}
	if len(shops) == 0 {
		return domain.Corpus{}, fmt.Errorf("%w: no shops imported into %s", domain.ErrCorpusUnavailable, c.store.path)
	}
	if err := c.loadMenus(ctx, shops); err != nil {
		return domain.Corpus{}, err
	}

	corpus := domain.Corpus{Shops: shops}
	if corpus.Reviews, err = c.loadReviews(ctx); err != nil {
		return domain.Corpus{}, err
	}
	if corpus.Coupons, err = c.loadCoupons(ctx); err != nil {
		return domain.Corpus{}, err
	}
	return corpus, nil
}

func (c *CorpusStore) loadShops(ctx context.Context) (map[string]domain.Shop, error) {
	rows, err := c.store.db.QueryContext(ctx, `
		SELECT id, name, category, address, description, open_hour, close_hour,
		       owner_message, is_good_influence, is_food_card_shop, tags
		FROM shops
	`)
	if err != nil {
		return nil, fmt.Errorf("querying shops: %w", err)
	}
	defer rows.Close()

	shops := make(map[string]domain.Shop)
	for rows.Next() {
		var (
			shop                domain.Shop
			goodInfluence, card int
			tagsJSON            string
		)
		if err := rows.Scan(&shop.ID, &shop.Name, &shop.Category, &shop.Address, &shop.Description,
			&shop.OpenHour, &shop.CloseHour, &shop.OwnerMessage, &goodInfluence, &card, &tagsJSON); err != nil {
			return nil, fmt.Errorf("scanning shop: %w", err)
		}
		shop.IsGoodInfluence = goodInfluence != 0
		shop.IsFoodCardShop = card != 0
		if err := json.Unmarshal([]byte(tagsJSON), &shop.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags for shop %s: %w", shop.ID, err)
		}
		if len(shop.Tags) == 0 {
			shop.Tags = nil
		}
		shops[shop.ID] = shop
	}
	return shops, rows.Err()
}

func (c *CorpusStore) loadMenus(ctx context.Context, shops map[string]domain.Shop) error {
	rows, err := c.store.db.QueryContext(ctx, `
		SELECT shop_id, id, name, price, category, description, is_popular, unpriced
		FROM menus
		ORDER BY shop_id, position
	`)
	if err != nil {
		return fmt.Errorf("querying menus: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			menu     domain.Menu
			popular  int
			unpriced int
		)
		if err := rows.Scan(&menu.ShopID, &menu.ID, &menu.Name, &menu.Price,
			&menu.Category, &menu.Description, &popular, &unpriced); err != nil {
			return fmt.Errorf("scanning menu: %w", err)
		}
		menu.IsPopular = popular != 0
		menu.Unpriced = unpriced != 0
		shop := shops[menu.ShopID]
		shop.Menus = append(shop.Menus, menu)
		shops[menu.ShopID] = shop
	}
	return rows.Err()
}

func (c *CorpusStore) loadReviews(ctx context.Context) ([]domain.Review, error) {
	rows, err := c.store.db.QueryContext(ctx,
		"SELECT id, shop_id, rating, content, reviewer FROM reviews ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("querying reviews: %w", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var r domain.Review
		if err := rows.Scan(&r.ID, &r.ShopID, &r.Rating, &r.Content, &r.Reviewer); err != nil {
			return nil, fmt.Errorf("scanning review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

func (c *CorpusStore) loadCoupons(ctx context.Context) ([]domain.Coupon, error) {
	rows, err := c.store.db.QueryContext(ctx,
		"SELECT id, shop_id, name, description, discount_amount FROM coupons ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("querying coupons: %w", err)
	}
	defer rows.Close()

	var coupons []domain.Coupon
	for rows.Next() {
		var cp domain.Coupon
		if err := rows.Scan(&cp.ID, &cp.ShopID, &cp.Name, &cp.Description, &cp.DiscountAmount); err != nil {
			return nil, fmt.Errorf("scanning coupon: %w", err)
		}
		coupons = append(coupons, cp)
	}
	return coupons, rows.Err()
}

// SaveCorpus replaces the stored corpus in one transaction.
func (c *CorpusStore) SaveCorpus(ctx context.Context, corpus domain.Corpus) error {
	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, table := range []string{"menus", "shops", "reviews", "coupons"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for _, id := range corpus.ShopIDs() {
		if err := insertShop(ctx, tx, corpus.Shops[id]); err != nil {
			return err
		}
	}
	for i, r := range corpus.Reviews {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO reviews (position, id, shop_id, rating, content, reviewer) VALUES (?, ?, ?, ?, ?, ?)",
			i, r.ID, r.ShopID, r.Rating, r.Content, r.Reviewer); err != nil {
			return fmt.Errorf("inserting review %s: %w", r.ID, err)
		}
	}
	for i, cp := range corpus.Coupons {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO coupons (position, id, shop_id, name, description, discount_amount) VALUES (?, ?, ?, ?, ?, ?)",
			i, cp.ID, cp.ShopID, cp.Name, cp.Description, cp.DiscountAmount); err != nil {
			return fmt.Errorf("inserting coupon %s: %w", cp.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing corpus: %w", err)
	}
	return nil
}

func insertShop(ctx context.Context, tx *sql.Tx, shop domain.Shop) error {
	tags := shop.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encoding tags for shop %s: %w", shop.ID, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO shops (id, name, category, address, description, open_hour, close_hour,
		                   owner_message, is_good_influence, is_food_card_shop, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, shop.ID, shop.Name, shop.Category, shop.Address, shop.Description, shop.OpenHour, shop.CloseHour,
		shop.OwnerMessage, boolToInt(shop.IsGoodInfluence), boolToInt(shop.IsFoodCardShop), string(tagsJSON))
	if err != nil {
		return fmt.Errorf("inserting shop %s: %w", shop.ID, err)
	}

	for i, m := range shop.Menus {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO menus (shop_id, position, id, name, price, category, description, is_popular, unpriced)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, shop.ID, i, m.ID, m.Name, m.Price, m.Category, m.Description,
			boolToInt(m.IsPopular), boolToInt(m.Unpriced))
		if err != nil {
			return fmt.Errorf("inserting menu %s of shop %s: %w", m.ID, shop.ID, err)
		}
	}
	return nil
}
