// Package iocache persists parsed reports and pipeline results in a SQL database.
package iocache

import (
	"sync"

	"github.com/huangsam/foilact/internal/contract"
)

// StoreManagerImpl holds the report cache and the result store.
type StoreManagerImpl struct {
	sync.RWMutex // Protects the store pointers during initialization
	reports      contract.CacheStore
	results      contract.ResultStore
}

var _ contract.StoreManager = &StoreManagerImpl{} // Compile-time check

// NewStoreManager wraps already opened stores. Either may be nil.
func NewStoreManager(reports contract.CacheStore, results contract.ResultStore) *StoreManagerImpl {
	return &StoreManagerImpl{reports: reports, results: results}
}

// GetReportCache returns the parsed-report cache.
func (mgr *StoreManagerImpl) GetReportCache() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.reports
}

// GetResultStore returns the run and activity store.
func (mgr *StoreManagerImpl) GetResultStore() contract.ResultStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.results
}
