package main

import (
	"context"
	"log"
	"time"

	"grant-navi/internal/models"
	"grant-navi/internal/repository"
	"grant-navi/pkg/config"
	"grant-navi/pkg/logger"
	"grant-navi/pkg/postgres"

	"go.uber.org/zap"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS grants (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		organization TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		max_amount BIGINT,
		amount_text TEXT NOT NULL DEFAULT '',
		deadline_text TEXT NOT NULL DEFAULT '',
		deadline DATE,
		prefecture TEXT,
		municipality TEXT,
		target_text TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'draft',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_grants_status_deadline ON grants (status, deadline)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id BIGSERIAL PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		sort_order INT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id UUID PRIMARY KEY,
		user_type TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS session_answers (
		id BIGSERIAL PRIMARY KEY,
		session_id UUID NOT NULL REFERENCES sessions (id),
		question_id TEXT NOT NULL,
		value JSONB,
		answer_text TEXT NOT NULL DEFAULT '',
		answered_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_session_answers_session ON session_answers (session_id, answered_at)`,
}

var seedCategories = []models.Category{
	{Code: "it_dx", Name: "IT導入・DX化支援", SortOrder: 10},
	{Code: "hanro_kaitaku", Name: "販路開拓・海外展開", SortOrder: 20},
	{Code: "setsubi_toshi", Name: "設備投資・生産性向上", SortOrder: 30},
	{Code: "sogyo", Name: "創業・スタートアップ支援", SortOrder: 40},
	{Code: "koyo_jinzai", Name: "雇用・人材育成", SortOrder: 50},
	{Code: "kenkyu_kaihatsu", Name: "研究開発・新製品開発", SortOrder: 60},
	{Code: "shoene", Name: "省エネ・環境対策", SortOrder: 70},
	{Code: "jigyo_shokei", Name: "事業承継・引継ぎ", SortOrder: 80},
}

func strPtr(s string) *string { return &s }
func amtPtr(n int64) *int64   { return &n }

func datePtr(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

func seedGrants(now time.Time) []models.Grant {
	return []models.Grant{
		{
			Title:        "IT導入補助金(通常枠)",
			Organization: "中小企業庁",
			Category:     "IT導入,DX,業務効率化",
			MaxAmount:    amtPtr(4_500_000),
			AmountText:   "最大450万円",
			DeadlineText: "2026年10月末締切",
			Deadline:     datePtr("2026-10-31"),
			TargetText:   "中小企業・小規模事業者",
			Status:       models.GrantStatusPublished,
			CreatedAt:    now.AddDate(0, 0, -10),
		},
		{
			Title:        "渋谷区中小企業IT化支援助成金",
			Organization: "渋谷区",
			Category:     "IT導入,デジタル化",
			MaxAmount:    amtPtr(2_000_000),
			AmountText:   "最大200万円",
			DeadlineText: "随時受付",
			Prefecture:   strPtr("東京都"),
			Municipality: strPtr("渋谷区"),
			TargetText:   "渋谷区内の中小企業",
			Status:       models.GrantStatusPublished,
			CreatedAt:    now.AddDate(0, 0, -5),
		},
		{
			Title:        "東京都創業助成事業",
			Organization: "東京都中小企業振興公社",
			Category:     "創業,起業",
			MaxAmount:    amtPtr(3_000_000),
			AmountText:   "最大300万円",
			DeadlineText: "2026年12月締切",
			Deadline:     datePtr("2026-12-15"),
			Prefecture:   strPtr("東京都"),
			TargetText:   "都内で創業予定または創業5年未満の者",
			Status:       models.GrantStatusPublished,
			CreatedAt:    now.AddDate(0, 0, -40),
		},
		{
			Title:        "小規模事業者持続化補助金",
			Organization: "日本商工会議所",
			Category:     "販路開拓,広告,マーケティング",
			MaxAmount:    amtPtr(500_000),
			AmountText:   "最大50万円",
			DeadlineText: "年4回締切",
			Deadline:     datePtr("2026-11-30"),
			TargetText:   "小規模事業者",
			Status:       models.GrantStatusPublished,
			CreatedAt:    now.AddDate(0, -2, 0),
		},
		{
			Title:        "ものづくり・商業・サービス生産性向上促進補助金",
			Organization: "全国中小企業団体中央会",
			Category:     "設備,生産性向上,研究開発",
			MaxAmount:    amtPtr(12_500_000),
			AmountText:   "最大1,250万円",
			DeadlineText: "2027年2月締切",
			Deadline:     datePtr("2027-02-28"),
			TargetText:   "中小企業・小規模事業者",
			Status:       models.GrantStatusPublished,
			CreatedAt:    now.AddDate(0, -1, 0),
		},
		{
			Title:        "大阪府省エネ設備導入補助金",
			Organization: "大阪府",
			Category:     "省エネ,環境,設備",
			MaxAmount:    amtPtr(1_000_000),
			AmountText:   "最大100万円",
			DeadlineText: "2026年9月締切",
			Deadline:     datePtr("2026-09-30"),
			Prefecture:   strPtr("大阪府"),
			TargetText:   "府内の中小企業",
			Status:       models.GrantStatusPublished,
			CreatedAt:    now.AddDate(0, 0, -20),
		},
		{
			Title:        "キャリアアップ助成金",
			Organization: "厚生労働省",
			Category:     "雇用,人材,正社員化",
			MaxAmount:    nil,
			AmountText:   "コースにより異なる",
			DeadlineText: "随時受付",
			TargetText:   "有期雇用労働者等を雇用する事業主",
			Status:       models.GrantStatusPublished,
			CreatedAt:    now.AddDate(0, -3, 0),
		},
		{
			Title:        "事業承継・引継ぎ補助金",
			Organization: "中小企業庁",
			Category:     "事業承継,M&A",
			MaxAmount:    amtPtr(6_000_000),
			AmountText:   "最大600万円",
			DeadlineText: "2026年11月締切",
			Deadline:     datePtr("2026-11-20"),
			TargetText:   "事業承継・M&Aを行う中小企業",
			Status:       models.GrantStatusPublished,
			CreatedAt:    now.AddDate(0, 0, -15),
		},
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	appLogger.Info("Applying schema")
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			appLogger.Fatal("Schema statement failed", zap.Error(err))
		}
	}

	categoryRepo := repository.NewCategoryRepository(db, appLogger)
	grantRepo := repository.NewGrantRepository(db, appLogger)

	existing, err := categoryRepo.ListAll(ctx)
	if err != nil {
		appLogger.Fatal("Failed to read category master", zap.Error(err))
	}
	if len(existing) == 0 {
		for i := range seedCategories {
			c := seedCategories[i]
			if err := categoryRepo.Insert(ctx, &c); err != nil {
				appLogger.Fatal("Failed to insert category", zap.String("code", c.Code), zap.Error(err))
			}
		}
		appLogger.Info("Category master seeded", zap.Int("count", len(seedCategories)))
	} else {
		appLogger.Info("Category master already present, skipping", zap.Int("count", len(existing)))
	}

	now := time.Now()
	grants := seedGrants(now)
	for i := range grants {
		g := grants[i]
		if err := grantRepo.Insert(ctx, &g); err != nil {
			appLogger.Fatal("Failed to insert grant", zap.String("title", g.Title), zap.Error(err))
		}
	}
	appLogger.Info("Sample catalog seeded", zap.Int("count", len(grants)))
}
