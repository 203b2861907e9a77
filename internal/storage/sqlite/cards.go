package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/cardvault/internal/models"
)

// SaveCard creates or updates a card document (INSERT OR REPLACE).
// UpdatedAt and NameLower are refreshed on every write.
func (s *Storage) SaveCard(ctx context.Context, card *models.CardRecord) error {
	if card == nil || card.ID == "" {
		return fmt.Errorf("card id cannot be empty")
	}

	now := s.now()
	if card.CreatedAt.IsZero() {
		card.CreatedAt = now
	}
	card.UpdatedAt = now
	card.NameLower = strings.ToLower(card.Name)
	if card.Status == "" {
		card.Status = models.CardStatusDraft
	}
	if card.SchemaVersion == 0 {
		card.SchemaVersion = 1
	}

	fields, err := marshalFields(card.Fields)
	if err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}

	db, err := s.handle(ctx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO cards (id, template_id, status, name, name_lower, title,
		                   fields, schema_version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			template_id = excluded.template_id,
			status = excluded.status,
			name = excluded.name,
			name_lower = excluded.name_lower,
			title = excluded.title,
			fields = excluded.fields,
			schema_version = excluded.schema_version,
			updated_at = excluded.updated_at
	`
	_, err = db.ExecContext(ctx, query,
		card.ID,
		card.TemplateID,
		string(card.Status),
		card.Name,
		card.NameLower,
		card.Title,
		fields,
		card.SchemaVersion,
		card.CreatedAt.Unix(),
		card.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save card: %w", tableErr("cards", err))
	}
	return nil
}

// GetCard retrieves a card by id, nil when absent.
func (s *Storage) GetCard(ctx context.Context, id string) (*models.CardRecord, error) {
	db, err := s.handle(ctx)
	if err != nil {
		return nil, err
	}

	card, err := scanCard(db.QueryRowContext(ctx, cardSelect+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load card: %w", tableErr("cards", err))
	}
	return card, nil
}

// ListCards returns all cards sorted case-insensitively by name.
// The ORDER BY rides the name_lower index.
func (s *Storage) ListCards(ctx context.Context) ([]*models.CardRecord, error) {
	return s.queryCards(ctx, cardSelect+` ORDER BY name_lower, id`)
}

// SearchCards returns cards whose name contains query, case-insensitively.
func (s *Storage) SearchCards(ctx context.Context, query string) ([]*models.CardRecord, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	return s.queryCards(ctx,
		cardSelect+` WHERE name_lower LIKE ? ESCAPE '\' ORDER BY name_lower, id`, pattern)
}

// DeleteCard removes a card by id.
func (s *Storage) DeleteCard(ctx context.Context, id string) error {
	db, err := s.handle(ctx)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete card: %w", tableErr("cards", err))
	}
	return nil
}

const cardSelect = `
	SELECT id, template_id, status, name, name_lower, title,
	       fields, schema_version, created_at, updated_at
	FROM cards`

func (s *Storage) queryCards(ctx context.Context, query string, args ...any) ([]*models.CardRecord, error) {
	db, err := s.handle(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load cards: %w", tableErr("cards", err))
	}
	defer rows.Close()

	var cards []*models.CardRecord
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to load cards: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load cards: %w", err)
	}
	return cards, nil
}

func scanCard(row rowScanner) (*models.CardRecord, error) {
	var (
		card                 models.CardRecord
		status, fields       string
		createdAt, updatedAt int64
	)
	err := row.Scan(
		&card.ID,
		&card.TemplateID,
		&status,
		&card.Name,
		&card.NameLower,
		&card.Title,
		&fields,
		&card.SchemaVersion,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	card.Status = models.CardStatus(status)
	card.CreatedAt = time.Unix(createdAt, 0)
	card.UpdatedAt = time.Unix(updatedAt, 0)
	if fields != "" && fields != "{}" {
		if err := json.Unmarshal([]byte(fields), &card.Fields); err != nil {
			return nil, fmt.Errorf("failed to unmarshal card fields: %w", err)
		}
	}
	return &card, nil
}

func marshalFields(fields map[string]string) (string, error) {
	if len(fields) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to marshal card fields: %w", err)
	}
	return string(data), nil
}

// escapeLike escapes LIKE metacharacters in user-supplied search text.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
