package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.etcd.io/bbolt"

	"github.com/iudanet/cardvault/internal/models"
)

// SaveCard creates or updates a card document.
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

	err := s.update(ctx, bucketCards, func(b *bbolt.Bucket) error {
		data, err := json.Marshal(card)
		if err != nil {
			return fmt.Errorf("failed to marshal card: %w", err)
		}
		return b.Put([]byte(card.ID), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}
	return nil
}

// GetCard retrieves a card by id, nil when absent.
func (s *Storage) GetCard(ctx context.Context, id string) (*models.CardRecord, error) {
	var card *models.CardRecord

	err := s.view(ctx, bucketCards, func(b *bbolt.Bucket) error {
		data := b.Get([]byte(id))
		if data == nil {
			return nil
		}
		card = &models.CardRecord{}
		if err := json.Unmarshal(data, card); err != nil {
			return fmt.Errorf("failed to unmarshal card: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load card: %w", err)
	}
	return card, nil
}

// ListCards returns all cards sorted case-insensitively by name.
func (s *Storage) ListCards(ctx context.Context) ([]*models.CardRecord, error) {
	return s.listCards(ctx, "")
}

// SearchCards returns cards whose name contains query, case-insensitively.
func (s *Storage) SearchCards(ctx context.Context, query string) ([]*models.CardRecord, error) {
	return s.listCards(ctx, strings.ToLower(query))
}

func (s *Storage) listCards(ctx context.Context, queryLower string) ([]*models.CardRecord, error) {
	var cards []*models.CardRecord

	err := s.view(ctx, bucketCards, func(b *bbolt.Bucket) error {
		return b.ForEach(func(k, v []byte) error {
			card := &models.CardRecord{}
			if err := json.Unmarshal(v, card); err != nil {
				return fmt.Errorf("failed to unmarshal card %s: %w", k, err)
			}
			// Фильтруем по денормализованному NameLower
			if queryLower == "" || strings.Contains(card.NameLower, queryLower) {
				cards = append(cards, card)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load cards: %w", err)
	}

	sort.Slice(cards, func(i, j int) bool {
		if cards[i].NameLower != cards[j].NameLower {
			return cards[i].NameLower < cards[j].NameLower
		}
		return cards[i].ID < cards[j].ID
	})
	return cards, nil
}

// DeleteCard removes a card by id.
func (s *Storage) DeleteCard(ctx context.Context, id string) error {
	err := s.update(ctx, bucketCards, func(b *bbolt.Bucket) error {
		return b.Delete([]byte(id))
	})
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return nil
}
