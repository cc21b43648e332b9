package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driven"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/logger"
)

var (
	_ driven.CorpusStore   = (*CorpusFile)(nil)
	_ driven.CorpusWriter  = (*CorpusFile)(nil)
	_ driven.SynonymSource = (*SynonymFile)(nil)
)

// CorpusFile reads and writes a corpus JSON file.
type CorpusFile struct {
	path string
}

// NewCorpusFile returns a loader for path.
func NewCorpusFile(path string) *CorpusFile {
	return &CorpusFile{path: path}
}

// Path returns the corpus file path.
func (c *CorpusFile) Path() string {
	return c.path
}

// LoadCorpus parses the corpus file.
// Menus pointing at unknown shops are skipped.
func (c *CorpusFile) LoadCorpus(ctx context.Context) (domain.Corpus, error) {
	if err := ctx.Err(); err != nil {
		return domain.Corpus{}, err
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		return domain.Corpus{}, fmt.Errorf("%w: read %s: %v", domain.ErrCorpusUnavailable, c.path, err)
	}
	corpus, err := Parse(data)
	if err != nil {
		return domain.Corpus{}, fmt.Errorf("%w: %s: %v", domain.ErrCorpusUnavailable, c.path, err)
	}
	return corpus, nil
}

// Parse decodes corpus JSON.
func Parse(data []byte) (domain.Corpus, error) {
	var raw rawCorpus
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.Corpus{}, fmt.Errorf("decode corpus: %w", err)
	}

	corpus := domain.Corpus{Shops: make(map[string]domain.Shop, len(raw.Shops))}
	for key, rs := range raw.Shops {
		shop := rs.toDomain(key)
		if shop.ID == "" {
			return domain.Corpus{}, errors.New("decode corpus: shop without id")
		}
		corpus.Shops[shop.ID] = shop
	}

	menuKeys, menus, err := decodeCollection[rawMenu](raw.Menus)
	if err != nil {
		return domain.Corpus{}, fmt.Errorf("decode menus: %w", err)
	}
	skipped := 0
	for i, rm := range menus {
		shopID := string(rm.ShopID)
		shop, ok := corpus.Shops[shopID]
		if !ok {
			skipped++
			continue
		}
		fallback := menuKeys[i]
		if fallback == "" {
			fallback = fmt.Sprintf("%s-%d", shopID, len(shop.Menus)+1)
		}
		shop.Menus = append(shop.Menus, rm.toDomain(fallback, shopID))
		corpus.Shops[shopID] = shop
	}
	if skipped > 0 {
		logger.Debug("corpus: skipped %d menus with unknown shop", skipped)
	}

	for i, rr := range raw.Reviews {
		id := string(rr.ID)
		if id == "" {
			id = fmt.Sprintf("r%d", i+1)
		}
		corpus.Reviews = append(corpus.Reviews, domain.Review{
			ID:       id,
			ShopID:   string(rr.ShopID),
			Rating:   rr.Rating,
			Content:  rr.Content,
			Reviewer: rr.Reviewer,
		})
	}

	couponKeys, coupons, err := decodeCollection[rawCoupon](raw.Coupons)
	if err != nil {
		return domain.Corpus{}, fmt.Errorf("decode coupons: %w", err)
	}
	for i, rc := range coupons {
		id := string(rc.ID)
		if id == "" {
			id = couponKeys[i]
		}
		if id == "" {
			id = fmt.Sprintf("c%d", i+1)
		}
		amount := rc.Discount
		if amount == 0 {
			amount = rc.DiscountAmount
		}
		corpus.Coupons = append(corpus.Coupons, domain.Coupon{
			ID:             id,
			ShopID:         string(rc.ShopID),
			Name:           rc.Name,
			Description:    rc.Description,
			DiscountAmount: int(amount),
		})
	}

	return corpus, nil
}

// exportCorpus is the shape written by SaveCorpus: menus nested in shops.
type exportCorpus struct {
	Shops   map[string]domain.Shop `json:"shops"`
	Reviews []domain.Review        `json:"reviews,omitempty"`
	Coupons []domain.Coupon        `json:"coupons,omitempty"`
}

// SaveCorpus writes the corpus with menus nested under their shops.
func (c *CorpusFile) SaveCorpus(ctx context.Context, corpus domain.Corpus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(exportCorpus{
		Shops:   corpus.Shops,
		Reviews: corpus.Reviews,
		Coupons: corpus.Coupons,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode corpus: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return fmt.Errorf("create corpus directory: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0600); err != nil {
		return fmt.Errorf("write corpus: %w", err)
	}
	return nil
}

// SynonymFile reads the synonym dictionary:
// {"<category>": {"<term>": ["<synonym>", ...]}}.
type SynonymFile struct {
	path string
}

// NewSynonymFile returns a loader for path.
func NewSynonymFile(path string) *SynonymFile {
	return &SynonymFile{path: path}
}

// LoadSynonyms parses the dictionary. A missing file yields an empty dictionary.
func (s *SynonymFile) LoadSynonyms(ctx context.Context) (domain.SynonymDictionary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("synonyms: %s not found, query expansion disabled", s.path)
		return domain.SynonymDictionary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read synonyms: %w", err)
	}

	var dict domain.SynonymDictionary
	if err := json.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("decode synonyms %s: %w", s.path, err)
	}
	for category, terms := range dict {
		for term, syns := range terms {
			cleaned := syns[:0]
			for _, syn := range syns {
				if syn = strings.TrimSpace(syn); syn != "" {
					cleaned = append(cleaned, syn)
				}
			}
			dict[category][term] = cleaned
		}
	}
	return dict, nil
}
