package models

import (
	"encoding/json"
	"strings"
	"time"
)

const GrantStatusPublished = "publish"

type Grant struct {
	ID           int64      `db:"id"`
	Title        string     `db:"title"`
	Organization string     `db:"organization"`
	Category     string     `db:"category"` // comma- or JSON-encoded tag list
	MaxAmount    *int64     `db:"max_amount"`
	AmountText   string     `db:"amount_text"`
	DeadlineText string     `db:"deadline_text"`
	Deadline     *time.Time `db:"deadline"`   // nil = no deadline
	Prefecture   *string    `db:"prefecture"` // nil/empty = nationwide
	Municipality *string    `db:"municipality"`
	TargetText   string     `db:"target_text"`
	Status       string     `db:"status"`
	CreatedAt    time.Time  `db:"created_at"`
}

// Nationwide reports whether the grant has no regional restriction.
func (g *Grant) Nationwide() bool {
	return g.Prefecture == nil || strings.TrimSpace(*g.Prefecture) == ""
}

// CategoryList splits the raw category field. The catalog stores tags either
// as a JSON array or as a comma-separated string, depending on the importer.
func (g *Grant) CategoryList() []string {
	raw := strings.TrimSpace(g.Category)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var tags []string
		if err := json.Unmarshal([]byte(raw), &tags); err == nil {
			return tags
		}
	}
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(part); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Category is one row of the category master (purpose codes shown to users).
type Category struct {
	ID        int64  `db:"id"`
	Code      string `db:"code"`
	Name      string `db:"name"`
	SortOrder int    `db:"sort_order"`
}
