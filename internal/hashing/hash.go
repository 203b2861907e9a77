package hashing

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// ContentHash вычисляет стабильный дайджест бинарного payload.
// Используется как ключ дедупликации ассетов: одинаковые байты всегда
// дают одинаковый hex-дайджест (blake2b-256).
func ContentHash(blob []byte) (string, error) {
	if len(blob) == 0 {
		return "", fmt.Errorf("blob cannot be empty")
	}

	sum := blake2b.Sum256(blob)

	return hex.EncodeToString(sum[:]), nil
}
