package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// StoredWorkbook is a converted spreadsheet kept for download.
type StoredWorkbook struct {
	Name string
	Data []byte
}

// WorkbookStore keeps converted workbooks in memory for a limited time.
type WorkbookStore struct {
	cache *cache.Cache
}

// NewWorkbookStore returns a store whose entries expire after ttl.
func NewWorkbookStore(ttl time.Duration) *WorkbookStore {
	return &WorkbookStore{cache: cache.New(ttl, 2*ttl)}
}

// Put stores a workbook and returns its id.
func (s *WorkbookStore) Put(name string, data []byte) string {
	id := uuid.NewString()
	s.cache.SetDefault(id, StoredWorkbook{Name: name, Data: data})
	return id
}

// Get returns the workbook stored under id, if it has not expired.
func (s *WorkbookStore) Get(id string) (StoredWorkbook, bool) {
	v, ok := s.cache.Get(id)
	if !ok {
		return StoredWorkbook{}, false
	}
	wb, ok := v.(StoredWorkbook)
	return wb, ok
}
