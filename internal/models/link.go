package models

import "time"

// MaxURLLength предел длины целевой ссылки, совпадает с size колонки url.
const MaxURLLength = 1000

// Link запись таблицы `links`: соответствие короткого ключа и целевой ссылки.
//
// Запись создается в два шага: сначала пустая заготовка (Key и URL пустые) ради получения ID,
// затем заготовка дополняется ключом и ссылкой. Пустой ключ зарезервирован за заготовками,
// поэтому уникальный индекс построен только по непустым значениям.
type Link struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Key       string    `gorm:"column:short_key;size:10;not null;uniqueIndex:idx_links_short_key,where:short_key <> ''" json:"key"` //nolint:lll
	URL       string    `gorm:"size:1000;not null" json:"url"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsFinalized запись получила ключ и ссылку.
func (l *Link) IsFinalized() bool {
	return l.Key != ""
}
