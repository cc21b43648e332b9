package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// Menu is an item sold by a shop.
type Menu struct {
	ID          string `json:"id"`
	ShopID      string `json:"shop_id"`
	Name        string `json:"name"`
	Price       int    `json:"price"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	IsPopular   bool   `json:"is_popular,omitempty"`
	// Unpriced marks a menu listed without a price. It never fits a budget.
	Unpriced    bool   `json:"unpriced,omitempty"`
}

// Shop is a restaurant record from the knowledge corpus.
type Shop struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	Address         string   `json:"address,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Description     string   `json:"description,omitempty"`
	OpenHour        string   `json:"open_hour,omitempty"`
	CloseHour       string   `json:"close_hour,omitempty"`
	OwnerMessage    string   `json:"owner_message,omitempty"`
	IsGoodInfluence bool     `json:"is_good_influence_shop,omitempty"`
	IsFoodCardShop  bool     `json:"is_food_card_shop,omitempty"`
	Menus           []Menu   `json:"menus,omitempty"`
}

// Review is a user review of a shop.
type Review struct {
	ID       string  `json:"id"`
	ShopID   string  `json:"shop_id"`
	Rating   float64 `json:"rating"`
	Content  string  `json:"content"`
	Reviewer string  `json:"reviewer,omitempty"`
}

// Coupon is a discount offered by a shop.
type Coupon struct {
	ID             string `json:"id"`
	ShopID         string `json:"shop_id,omitempty"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	DiscountAmount int    `json:"discount_amount,omitempty"`
}

// Corpus is the read-mostly snapshot of the knowledge base.
type Corpus struct {
	Shops   map[string]Shop `json:"shops"`
	Reviews []Review        `json:"reviews,omitempty"`
	Coupons []Coupon        `json:"coupons,omitempty"`
}

// ShopIDs returns shop identifiers in sorted order.
func (c Corpus) ShopIDs() []string {
	ids := make([]string, 0, len(c.Shops))
	for id := range c.Shops {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ContentHash is a stable hash of the shop corpus.
// encoding/json writes map keys in sorted order, so equal corpora hash equally.
func (c Corpus) ContentHash() string {
	shops := c.Shops
	if shops == nil {
		shops = map[string]Shop{}
	}
	data, err := json.Marshal(shops)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Documents returns every shop, menu, review and coupon as a Document.
func (c Corpus) Documents() []Document {
	var docs []Document
	for _, id := range c.ShopIDs() {
		shop := c.Shops[id]
		docs = append(docs, ShopDocument{Shop: shop})
		for _, menu := range shop.Menus {
			docs = append(docs, MenuDocument{Menu: menu, Shop: &shop})
		}
	}
	for _, r := range c.Reviews {
		docs = append(docs, ReviewDocument{Review: r, Shop: c.shopRef(r.ShopID)})
	}
	for _, cp := range c.Coupons {
		docs = append(docs, CouponDocument{Coupon: cp, Shop: c.shopRef(cp.ShopID)})
	}
	return docs
}

func (c Corpus) shopRef(id string) *Shop {
	shop, ok := c.Shops[id]
	if !ok {
		return nil
	}
	return &shop
}

// SynonymDictionary maps category -> canonical term -> synonyms.
type SynonymDictionary map[string]map[string][]string
