package domain

import (
	"fmt"
	"strings"
)

// Document types used in metadata.
const (
	DocumentTypeShop   = "shop"
	DocumentTypeMenu   = "menu"
	DocumentTypeReview = "review"
	DocumentTypeCoupon = "coupon"
)

// Document is any corpus record that can be embedded and filtered.
type Document interface {
	// ID is unique across kinds; it carries the kind as a prefix.
	ID() string

	// Content assembles present fields into short declarative clauses.
	Content() string

	// Metadata is a flat map with a "type" discriminator.
	Metadata() map[string]any
}

// ShopDocument wraps a shop.
type ShopDocument struct {
	Shop Shop
}

// ID implements Document.
func (d ShopDocument) ID() string { return "shop_" + d.Shop.ID }

// Content implements Document.
func (d ShopDocument) Content() string {
	var parts []string
	if d.Shop.Name != "" {
		parts = append(parts, "가게 이름: "+d.Shop.Name)
	}
	if d.Shop.Category != "" {
		parts = append(parts, "카테고리: "+d.Shop.Category)
	}
	if d.Shop.Address != "" {
		parts = append(parts, "주소: "+d.Shop.Address)
	}
	if d.Shop.OpenHour != "" && d.Shop.CloseHour != "" {
		parts = append(parts, fmt.Sprintf("운영시간: %s - %s", d.Shop.OpenHour, d.Shop.CloseHour))
	}
	if d.Shop.OwnerMessage != "" {
		parts = append(parts, "사장님 한마디: "+d.Shop.OwnerMessage)
	}
	if d.Shop.IsGoodInfluence {
		parts = append(parts, "착한가게 인증")
	}
	return joinClauses(parts)
}

// Metadata implements Document.
func (d ShopDocument) Metadata() map[string]any {
	return map[string]any{
		"type":              DocumentTypeShop,
		"shop_id":           d.Shop.ID,
		"name":              d.Shop.Name,
		"category":          d.Shop.Category,
		"address":           d.Shop.Address,
		"is_good_influence": d.Shop.IsGoodInfluence,
		"is_food_card_shop": d.Shop.IsFoodCardShop,
	}
}

// MenuDocument wraps a menu; Shop supplies context outside a join.
type MenuDocument struct {
	Menu Menu
	Shop *Shop
}

// ID implements Document.
func (d MenuDocument) ID() string { return "menu_" + d.Menu.ID }

// Content implements Document.
func (d MenuDocument) Content() string {
	var parts []string
	if d.Shop != nil && d.Shop.Name != "" {
		parts = append(parts, d.Shop.Name+"의 메뉴")
	}
	parts = append(parts, "메뉴명: "+d.Menu.Name)
	if !d.Menu.Unpriced {
		parts = append(parts, fmt.Sprintf("가격: %d원", d.Menu.Price))
	}
	if d.Menu.Description != "" {
		parts = append(parts, "설명: "+d.Menu.Description)
	}
	if d.Menu.Category != "" {
		parts = append(parts, "카테고리: "+d.Menu.Category)
	}
	if d.Menu.IsPopular {
		parts = append(parts, "인기 메뉴")
	}
	return joinClauses(parts)
}

// Metadata implements Document.
func (d MenuDocument) Metadata() map[string]any {
	md := map[string]any{
		"type":       DocumentTypeMenu,
		"shop_id":    d.Menu.ShopID,
		"name":       d.Menu.Name,
		"is_popular": d.Menu.IsPopular,
	}
	if !d.Menu.Unpriced {
		md["price"] = d.Menu.Price
	}
	if d.Menu.Category != "" {
		md["category"] = d.Menu.Category
	}
	if d.Shop != nil {
		md["shop_name"] = d.Shop.Name
		md["shop_category"] = d.Shop.Category
		md["shop_address"] = d.Shop.Address
	}
	return md
}

// ReviewDocument wraps a review.
type ReviewDocument struct {
	Review Review
	Shop   *Shop
}

// ID implements Document.
func (d ReviewDocument) ID() string { return "review_" + d.Review.ID }

// Content implements Document.
func (d ReviewDocument) Content() string {
	var parts []string
	if d.Shop != nil && d.Shop.Name != "" {
		parts = append(parts, d.Shop.Name+" 리뷰")
	}
	parts = append(parts,
		fmt.Sprintf("평점: %g점", d.Review.Rating),
		"리뷰 내용: "+d.Review.Content,
	)
	if d.Review.Reviewer != "" {
		parts = append(parts, "작성자: "+d.Review.Reviewer)
	}
	return joinClauses(parts)
}

// Metadata implements Document.
func (d ReviewDocument) Metadata() map[string]any {
	md := map[string]any{
		"type":     DocumentTypeReview,
		"shop_id":  d.Review.ShopID,
		"rating":   d.Review.Rating,
		"reviewer": d.Review.Reviewer,
	}
	if d.Shop != nil {
		md["shop_name"] = d.Shop.Name
	}
	return md
}

// CouponDocument wraps a coupon.
type CouponDocument struct {
	Coupon Coupon
	Shop   *Shop
}

// ID implements Document.
func (d CouponDocument) ID() string { return "coupon_" + d.Coupon.ID }

// Content implements Document.
func (d CouponDocument) Content() string {
	var parts []string
	if d.Shop != nil && d.Shop.Name != "" {
		parts = append(parts, d.Shop.Name+" 쿠폰")
	}
	parts = append(parts, "쿠폰명: "+d.Coupon.Name)
	if d.Coupon.Description != "" {
		parts = append(parts, "할인 내용: "+d.Coupon.Description)
	}
	if d.Coupon.DiscountAmount > 0 {
		parts = append(parts, fmt.Sprintf("할인 금액: %d원", d.Coupon.DiscountAmount))
	}
	return joinClauses(parts)
}

// Metadata implements Document.
func (d CouponDocument) Metadata() map[string]any {
	md := map[string]any{
		"type":            DocumentTypeCoupon,
		"shop_id":         d.Coupon.ShopID,
		"name":            d.Coupon.Name,
		"discount_amount": d.Coupon.DiscountAmount,
	}
	if d.Shop != nil {
		md["shop_name"] = d.Shop.Name
	}
	return md
}

func joinClauses(parts []string) string {
	return strings.Join(parts, ". ") + "."
}
