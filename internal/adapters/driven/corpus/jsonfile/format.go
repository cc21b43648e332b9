package jsonfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
)

// flexID decodes an identifier written as a JSON number or string.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("identifier must be a string or number: %s", data)
	}
	*id = flexID(n.String())
	return nil
}

type rawMenu struct {
	ID          flexID   `json:"id"`
	ShopID      flexID   `json:"shop_id"`
	Name        string   `json:"name"`
	Price       *float64 `json:"price"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	IsPopular   bool     `json:"is_popular"`
	Unpriced    bool     `json:"unpriced"`
}

func (m rawMenu) toDomain(id, shopID string) domain.Menu {
	if m.ID != "" {
		id = string(m.ID)
	}
	menu := domain.Menu{
		ID:          id,
		ShopID:      shopID,
		Name:        m.Name,
		Category:    m.Category,
		Description: m.Description,
		IsPopular:   m.IsPopular,
		Unpriced:    m.Price == nil || m.Unpriced,
	}
	if !menu.Unpriced {
		menu.Price = int(*m.Price)
	}
	return menu
}

type rawShop struct {
	ID              flexID    `json:"id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	Address         string    `json:"address"`
	Tags            []string  `json:"tags"`
	Description     string    `json:"description"`
	OpenHour        string    `json:"open_hour"`
	CloseHour       string    `json:"close_hour"`
	OwnerMessage    string    `json:"owner_message"`
	IsGoodInfluence bool      `json:"is_good_influence_shop"`
	IsFoodCardShop  any       `json:"is_food_card_shop"`
	Menus           []rawMenu `json:"menus"`
}

func (s rawShop) toDomain(key string) domain.Shop {
	id := key
	if s.ID != "" {
		id = string(s.ID)
	}
	shop := domain.Shop{
		ID:              id,
		Name:            s.Name,
		Category:        s.Category,
		Address:         s.Address,
		Tags:            s.Tags,
		Description:     s.Description,
		OpenHour:        s.OpenHour,
		CloseHour:       s.CloseHour,
		OwnerMessage:    s.OwnerMessage,
		IsGoodInfluence: s.IsGoodInfluence,
		IsFoodCardShop:  truthy(s.IsFoodCardShop),
	}
	for i, m := range s.Menus {
		shop.Menus = append(shop.Menus, m.toDomain(fmt.Sprintf("%s-%d", id, i+1), id))
	}
	return shop
}

type rawReview struct {
	ID       flexID  `json:"id"`
	ShopID   flexID  `json:"shop_id"`
	Rating   float64 `json:"rating"`
	Content  string  `json:"content"`
	Reviewer string  `json:"reviewer"`
}

type rawCoupon struct {
	ID             flexID  `json:"id"`
	ShopID         flexID  `json:"shop_id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	DiscountAmount float64 `json:"amount"`
	Discount       float64 `json:"discount_amount"`
}

type rawCorpus struct {
	Shops   map[string]rawShop `json:"shops"`
	Menus   json.RawMessage    `json:"menus"`
	Reviews []rawReview        `json:"reviews"`
	Coupons json.RawMessage    `json:"coupons"`
}

// decodeCollection accepts either an object keyed by id or an array.
// Object entries come back in key order with the key as fallback id.
func decodeCollection[T any](data json.RawMessage) ([]string, []T, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil, nil
	}
	if data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, nil, err
		}
		return make([]string, len(items)), items, nil
	}
	var byID map[string]T
	if err := json.Unmarshal(data, &byID); err != nil {
		return nil, nil, err
	}
	keys := make([]string, 0, len(byID))
	for k := range byID {
		keys = append(keys, k)
	}
	sortIDs(keys)
	items := make([]T, len(keys))
	for i, k := range keys {
		items[i] = byID[k]
	}
	return keys, items, nil
}

// sortIDs orders numeric ids numerically and everything else lexically after them.
func sortIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return ids[i] < ids[j]
		}
	})
}

func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		// Food card codes: Y (accepted), P (partially), N (no), U (unknown).
		switch strings.ToUpper(strings.TrimSpace(b)) {
		case "Y", "P", "TRUE", "1":
			return true
		}
		return false
	case float64:
		return b != 0
	default:
		return false
	}
}
