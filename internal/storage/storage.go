package storage

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/coinfeed/coinfeed/internal/news"
)

// Article is a normalized news item archived for the /news/recent listing.
// Broadcast updates are never persisted; only search and refresh results
// land here.
type Article struct {
	ID          string    `gorm:"primaryKey;size:40" json:"id"`
	Title       string    `gorm:"size:512" json:"title"`
	URL         string    `gorm:"size:1024;uniqueIndex" json:"url"`
	Source      string    `gorm:"size:128" json:"source"`
	Coin        string    `gorm:"size:32;index" json:"coin"`
	Summary     string    `gorm:"size:600" json:"summary"`
	Sentiment   float64   `json:"sentiment"`
	PublishedAt time.Time `gorm:"index" json:"publishedAt"`
	// Extra carries fetch metadata for audit (pipeline name, fetch time).
	Extra datatypes.JSONMap `gorm:"type:jsonb" json:"extra"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Store struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStore opens the archive database. The Redis client is shared with the
// cache layer and only used for short-TTL listing caches; it may be nil.
func NewStore(dsn string, rdb *redis.Client) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Article{}); err != nil {
		return nil, err
	}
	return &Store{DB: db, Redis: rdb}, nil
}

// toValidUTF8 normalizes strings to legal UTF-8 before they reach Postgres;
// some upstream feeds carry mixed encodings.
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "�")
}

// truncateRunesDB cuts by rune count so a value never exceeds its varchar
// column. Second line of defense behind the processor's own truncation.
func truncateRunesDB(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.TrimSpace(s)
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}

func hashURL(url string) string {
	h := sha1.New()
	h.Write([]byte(url))
	return hex.EncodeToString(h.Sum(nil))
}

// SaveBatch archives a batch of normalized items, idempotent by URL. An
// existing article is refreshed with the newer summary and sentiment.
func (s *Store) SaveBatch(coin, pipeline string, items []news.Item) error {
	coin = strings.ToLower(strings.TrimSpace(coin))
	fetchedAt := time.Now().UTC().Format(time.RFC3339)

	for _, it := range items {
		title := toValidUTF8(it.Title)
		summary := truncateRunesDB(toValidUTF8(it.Summary), 600)
		a := &Article{
			ID:          hashURL(it.URL),
			Title:       title,
			URL:         it.URL,
			Source:      it.Source,
			Coin:        coin,
			Summary:     summary,
			Sentiment:   it.Sentiment,
			PublishedAt: it.PublishedAt,
			Extra: datatypes.JSONMap{
				"pipeline":   pipeline,
				"fetched_at": fetchedAt,
			},
		}

		if err := s.DB.Where("url = ?", it.URL).FirstOrCreate(a).Error; err != nil {
			return fmt.Errorf("storage: save %s: %w", it.URL, err)
		}
		_ = s.DB.Model(a).Updates(map[string]any{
			"title":        title,
			"summary":      summary,
			"sentiment":    it.Sentiment,
			"coin":         coin,
			"published_at": it.PublishedAt,
		}).Error
	}
	return nil
}

// ListRecent returns the newest archived articles for a coin (or all coins
// when coin is empty), with a short Redis listing cache in front of the DB.
func (s *Store) ListRecent(coin string, limit int) ([]Article, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	coin = strings.ToLower(strings.TrimSpace(coin))

	ctx := context.Background()
	cacheKey := fmt.Sprintf("articles:recent:%s:%d", coin, limit)

	if s.Redis != nil {
		if bs, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []Article
			if err := json.Unmarshal(bs, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var list []Article
	db := s.DB.Model(&Article{})
	if coin != "" {
		db = db.Where("coin = ?", coin)
	}
	if err := db.Order("published_at DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}

	const listCacheTTL = 5 * time.Minute
	if s.Redis != nil && len(list) > 0 {
		if bs, err := json.Marshal(list); err == nil {
			_ = s.Redis.Set(ctx, cacheKey, bs, listCacheTTL).Err()
		}
	}
	return list, nil
}
