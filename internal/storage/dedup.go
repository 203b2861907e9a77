package storage

import (
	"sync"

	"github.com/iudanet/cardvault/internal/models"
)

// DedupIndex is an advisory in-memory mapping from content hash to asset
// id. Importers use it to recognize "these exact bytes were already
// imported" and reuse the existing id instead of writing a duplicate
// record.
//
// The index is a process-local, rebuilt-on-demand cache: it carries no
// persistence guarantee and must never be treated as the source of truth
// for existence checks — the asset table is. On hash collision the index
// is conservative (equal digests are treated as the same payload), but
// records whose hash was never computed are never merged.
type DedupIndex struct {
	mu     sync.RWMutex
	byHash map[string]string
}

// NewDedupIndex creates an empty index.
func NewDedupIndex() *DedupIndex {
	return &DedupIndex{byHash: make(map[string]string)}
}

// Lookup returns the asset id recorded for hash. An empty hash never
// matches anything.
func (i *DedupIndex) Lookup(hash string) (string, bool) {
	if hash == "" {
		return "", false
	}
	i.mu.RLock()
	defer i.mu.RUnlock()
	id, ok := i.byHash[hash]
	return id, ok
}

// Record remembers hash → id. Empty hashes are ignored: an uncomputed
// hash must not alias unrelated records.
func (i *DedupIndex) Record(hash, id string) {
	if hash == "" || id == "" {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.byHash[hash] = id
}

// Forget drops every entry pointing at one of the given asset ids.
// Called after a batch delete so the index does not hand out dead ids.
func (i *DedupIndex) Forget(ids ...string) {
	if len(ids) == 0 {
		return
	}
	dead := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		dead[id] = struct{}{}
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	for h, id := range i.byHash {
		if _, ok := dead[id]; ok {
			delete(i.byHash, h)
		}
	}
}

// Len returns the number of indexed hashes.
func (i *DedupIndex) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.byHash)
}

// Rebuild replaces the index content from the given records, hashing
// every payload whose ContentHash is missing. Records with no payload
// and no hash are skipped. When two records share a digest the first
// one wins — duplicates legitimately share bytes, either id serves.
func (i *DedupIndex) Rebuild(records []*models.AssetRecord, hash func([]byte) (string, error)) error {
	byHash := make(map[string]string, len(records))
	for _, rec := range records {
		h := rec.ContentHash
		if h == "" {
			if len(rec.Blob) == 0 {
				continue
			}
			computed, err := hash(rec.Blob)
			if err != nil {
				return err
			}
			h = computed
		}
		if _, taken := byHash[h]; !taken {
			byHash[h] = rec.ID
		}
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.byHash = byHash
	return nil
}
