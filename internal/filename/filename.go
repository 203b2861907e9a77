// Package filename turns arbitrary display strings into safe, unique,
// extension-preserving file names for export batches.
package filename

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// suffixPattern распознает хвост вида " (<digits>)" строго в конце строки.
// Форма без пробела ("image(2)") суффиксом не считается.
var suffixPattern = regexp.MustCompile(`^(.*) \((\d+)\)$`)

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	slugUnsafe     = regexp.MustCompile(`[^a-z0-9-]+`)
	hyphenRuns     = regexp.MustCompile(`-{2,}`)
)

// FallbackBaseName is used when a display name slugs down to nothing.
const FallbackBaseName = "card"

// fallbackZipSlug names the archive when no collection name is available.
const fallbackZipSlug = "heroquest-cards"

// Split splits name into base and extension at the last dot. The
// extension keeps its dot. A name without a dot has an empty extension;
// a hidden-file style name (leading dot, no further dot) is all base;
// a name ending in a dot yields extension ".".
func Split(name string) (base, ext string) {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 {
		return name, ""
	}
	return name[:idx], name[idx:]
}

// ParseSuffix recognizes a trailing disambiguation suffix of the exact
// form " (<n>)" with n > 0. Leading zeros are accepted and parsed as the
// integer value. When no valid suffix is present, the whole string is
// returned as root with ok = false.
func ParseSuffix(base string) (root string, n int, ok bool) {
	m := suffixPattern.FindStringSubmatch(base)
	if m == nil {
		return base, 0, false
	}
	parsed, err := strconv.Atoi(m[2])
	if err != nil || parsed == 0 {
		// суффикс "(0)" (или переполнение) — не суффикс
		return base, 0, false
	}
	return m[1], parsed, true
}

// NextAvailable returns name unchanged when it is not in used; otherwise
// it strips any existing suffix to find the root and returns the
// smallest "<root> (<n>)<ext>" with n ≥ 2 that is free, filling gaps.
// Names with a different extension never collide.
func NextAvailable(used []string, name string) string {
	set := make(map[string]struct{}, len(used))
	for _, u := range used {
		set[u] = struct{}{}
	}
	return nextFrom(set, name)
}

func nextFrom(used map[string]struct{}, name string) string {
	if _, taken := used[name]; !taken {
		return name
	}

	base, ext := Split(name)
	root, _, _ := ParseSuffix(base)

	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", root, n, ext)
		if _, taken := used[candidate]; !taken {
			return candidate
		}
	}
}

// ExportBaseName normalizes an arbitrary display name into a lowercase,
// hyphenated, filesystem-safe slug. The extension goes through the same
// safe-set pass as the base and is dropped when nothing safe remains.
// Empty and all-whitespace names fall back to "card".
func ExportBaseName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return FallbackBaseName
	}

	base, ext := Split(trimmed)
	slug := slugify(base)
	if slug == "" {
		slug = FallbackBaseName
	}
	if extSlug := slugify(ext); extSlug != "" {
		return slug + "." + extSlug
	}
	return slug
}

// slugify lowercases, collapses whitespace to hyphens and strips
// everything outside [a-z0-9-].
func slugify(s string) string {
	s = strings.ToLower(s)
	s = whitespaceRuns.ReplaceAllString(s, "-")
	s = slugUnsafe.ReplaceAllString(s, "")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Ledger tracks the file names already assigned within one export batch.
// It is a process-local cache with no persistence guarantee; a fresh
// ledger is created per batch.
type Ledger struct {
	used map[string]struct{}
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{used: make(map[string]struct{})}
}

// Len returns the number of names assigned so far.
func (l *Ledger) Len() int {
	return len(l.used)
}

// ResolveExportFileName resolves name into a slugged ".png" file name
// that is unique within the ledger, and reserves it. Repeated calls with
// the same name keep producing distinct results.
func (l *Ledger) ResolveExportFileName(name string) string {
	base := ExportBaseName(name)
	root, _ := Split(base)

	final := nextFrom(l.used, root+".png")
	l.used[final] = struct{}{}
	return final
}

// ZipFileName produces "<slug>-<YYYYMMDD>-<HHMMSS>.zip" where slug is
// the resolved collection name, or "heroquest-cards" when getName is nil
// or yields nothing usable. The timestamp is taken from now (local time);
// a nil now falls back to time.Now.
func ZipFileName(getName func() string, now func() time.Time) string {
	if now == nil {
		now = time.Now
	}

	slug := fallbackZipSlug
	if getName != nil {
		if s := slugify(getName()); s != "" {
			slug = s
		}
	}

	return fmt.Sprintf("%s-%s.zip", slug, now().Format("20060102-150405"))
}
