package service

import (
	"strings"

	"grant-navi/internal/models"
)

// categorySynonyms expands specific purpose codes with keywords that show up
// in catalog category tags but not in the category display name itself.
// Curated by hand against the imported catalog.
var categorySynonyms = map[string][]string{
	"it_dx":           {"IT", "DX", "デジタル"},
	"hanro_kaitaku":   {"販路", "マーケティング", "広告"},
	"setsubi_toshi":   {"設備", "機械"},
	"sogyo":           {"創業", "起業", "開業"},
	"koyo_jinzai":     {"雇用", "人材", "採用"},
	"kenkyu_kaihatsu": {"研究開発", "新製品"},
	"shoene":          {"省エネ", "環境", "脱炭素"},
	"jigyo_shokei":    {"事業承継", "M&A"},
}

// CategoryIndex is a read-only purpose-code lookup built once at startup from
// the category master.
type CategoryIndex struct {
	byCode map[string]models.Category
}

func NewCategoryIndex(categories []models.Category) *CategoryIndex {
	byCode := make(map[string]models.Category, len(categories))
	for _, c := range categories {
		byCode[c.Code] = c
	}
	return &CategoryIndex{byCode: byCode}
}

// Name returns the display name for a purpose code, or "" if unknown.
func (idx *CategoryIndex) Name(code string) string {
	return idx.byCode[code].Name
}

// KeywordsFor derives the category keywords for the selected purpose codes:
// the lead segment of each display name before the "・" separator, plus the
// curated synonym expansions. Order is stable and duplicates are removed.
func (idx *CategoryIndex) KeywordsFor(codes []string) []string {
	var keywords []string
	seen := make(map[string]struct{})

	add := func(kw string) {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			return
		}
		if _, dup := seen[kw]; dup {
			return
		}
		seen[kw] = struct{}{}
		keywords = append(keywords, kw)
	}

	for _, code := range codes {
		if c, ok := idx.byCode[code]; ok {
			lead, _, _ := strings.Cut(c.Name, "・")
			add(lead)
		}
		for _, syn := range categorySynonyms[code] {
			add(syn)
		}
	}

	return keywords
}
