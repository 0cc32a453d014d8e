package archive

import (
	"strings"
	"sync"
)

// Index is the derived content index over all archives the chain has
// accepted (spec §4.3): URL, content-type, date, and tag lookups, plus
// substring search. It is never persisted independently — the chain
// package rebuilds it from the transaction log on load (spec §4.8,
// design note §9) and is the only caller expected to invoke Add.
type Index struct {
	mu            sync.RWMutex
	archives      map[string]*ArchiveData // archive_id -> data
	byURL         map[string]string       // original_url -> archive_id
	byContentType map[string][]string
	byDate        map[string][]string
	byTag         map[string][]string
}

// NewIndex constructs an empty index.
func NewIndex() *Index {
	return &Index{
		archives:      make(map[string]*ArchiveData),
		byURL:         make(map[string]string),
		byContentType: make(map[string][]string),
		byDate:        make(map[string][]string),
		byTag:         make(map[string][]string),
	}
}

// Add inserts a into the index, failing with DuplicateArchive if
// original_url is already indexed. Archives are immutable once indexed.
func (idx *Index) Add(a *ArchiveData) error {
	if a == nil {
		return newErr(ErrInvalidArchive, "nil archive")
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, exists := idx.byURL[a.OriginalURL]; exists {
		return newErr(ErrDuplicateURL, a.OriginalURL)
	}
	date, err := a.CaptureDate()
	if err != nil {
		return newErr(ErrInvalidArchive, err.Error())
	}

	cp := *a
	idx.archives[a.ArchiveID] = &cp
	idx.byURL[a.OriginalURL] = a.ArchiveID
	idx.byContentType[a.ContentType] = append(idx.byContentType[a.ContentType], a.ArchiveID)
	idx.byDate[date] = append(idx.byDate[date], a.ArchiveID)
	for _, tag := range a.Metadata.Tags {
		idx.byTag[tag] = append(idx.byTag[tag], a.ArchiveID)
	}
	return nil
}

// Get returns the archive by content address.
func (idx *Index) Get(archiveID string) (*ArchiveData, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	a, ok := idx.archives[archiveID]
	return a, ok
}

// GetByURL returns the archive registered for a given original_url.
func (idx *Index) GetByURL(url string) (*ArchiveData, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	id, ok := idx.byURL[url]
	if !ok {
		return nil, false
	}
	return idx.archives[id], true
}

// ByContentType returns all archives of the given content type.
func (idx *Index) ByContentType(contentType string) []*ArchiveData {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.resolve(idx.byContentType[contentType])
}

// ByDate returns all archives captured on a given YYYY-MM-DD date.
func (idx *Index) ByDate(date string) []*ArchiveData {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.resolve(idx.byDate[date])
}

// ByTag returns all archives carrying a given tag.
func (idx *Index) ByTag(tag string) []*ArchiveData {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.resolve(idx.byTag[tag])
}

// Search returns the union of archives whose original_url or tags contain
// q as a case-insensitive substring (spec §4.3).
func (idx *Index) Search(q string) []*ArchiveData {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	needle := strings.ToLower(q)
	seen := make(map[string]struct{})
	var out []*ArchiveData
	for url, id := range idx.byURL {
		if strings.Contains(strings.ToLower(url), needle) {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				out = append(out, idx.archives[id])
			}
		}
	}
	for tag, ids := range idx.byTag {
		if !strings.Contains(strings.ToLower(tag), needle) {
			continue
		}
		for _, id := range ids {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				out = append(out, idx.archives[id])
			}
		}
	}
	return out
}

// Popularity is derived from replication_count (spec §4.3).
func (idx *Index) Popularity(archiveID string) int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	a, ok := idx.archives[archiveID]
	if !ok {
		return 0
	}
	return a.ReplicationCount
}

func (idx *Index) resolve(ids []string) []*ArchiveData {
	out := make([]*ArchiveData, 0, len(ids))
	for _, id := range ids {
		if a, ok := idx.archives[id]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Rebuild constructs a fresh index by replaying archives in order (spec
// §4.8 "rebuilt from chain on load"). Any archive that fails to index
// (e.g. a duplicate URL slipped past validation) aborts the rebuild.
func Rebuild(archives []*ArchiveData) (*Index, error) {
	idx := NewIndex()
	for _, a := range archives {
		if err := idx.Add(a); err != nil {
			return nil, err
		}
	}
	return idx, nil
}
