package models

import "time"

// CardStatus represents the lifecycle state of a card document
type CardStatus string

const (
	CardStatusDraft CardStatus = "draft" // card exists but was never explicitly saved
	CardStatusSaved CardStatus = "saved" // card was saved at least once
)

// AssetRecord represents a stored binary image asset.
// The blob is exclusively owned by the record: cards and collections
// reference assets only by id. Replacing a blob is a delete+add,
// records are never mutated in place.
type AssetRecord struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`      // Name original/display filename
	MimeType  string    `json:"mime_type"` // MimeType MIME-тип файла (например, "image/png")
	// ContentHash hex-encoded content digest, empty until computed.
	// Used only as an advisory dedup key, never as a uniqueness constraint:
	// two records may share a hash if the same bytes were imported twice.
	ContentHash string `json:"content_hash,omitempty"`
	Blob        []byte `json:"blob"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// CardRecord represents a card document.
type CardRecord struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// Fields содержит специфичные для шаблона поля карты (ключ-значение).
	// Их форма помечена SchemaVersion для будущих миграций.
	Fields     map[string]string `json:"fields,omitempty"`
	ID         string            `json:"id"`
	TemplateID string            `json:"template_id"` // TemplateID selects which document schema applies
	Status     CardStatus        `json:"status"`
	Name       string            `json:"name"`
	// NameLower is derived: always equals strings.ToLower(Name).
	// Recomputed by the store on every write, used for case-insensitive
	// sort and search.
	NameLower     string `json:"name_lower"`
	Title         string `json:"title,omitempty"` // Title optional user-facing display name
	SchemaVersion int    `json:"schema_version"`
}

// CollectionRecord represents a named ordered grouping of card ids.
// CardIDs may reference ids not present in the card store; referential
// integrity is not enforced at write time.
type CollectionRecord struct {
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	CardIDs       []string  `json:"card_ids"`
	SchemaVersion int       `json:"schema_version"`
}
