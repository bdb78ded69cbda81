// Package iocache persists ingest results and report history.
package iocache

import (
	"sync"

	"github.com/huangsam/donorlens/internal/contract"
)

// StoreManagerImpl holds the ingest cache and report history stores.
type StoreManagerImpl struct {
	sync.RWMutex // Protects the store pointers during initialization
	ingest       contract.CacheStore
	history      contract.HistoryStore
}

var _ contract.StoreManager = &StoreManagerImpl{} // Compile-time check

// NewStoreManager wraps already opened stores. Either may be nil.
func NewStoreManager(ingest contract.CacheStore, history contract.HistoryStore) *StoreManagerImpl {
	return &StoreManagerImpl{ingest: ingest, history: history}
}

// GetIngestStore returns the ingest CacheStore.
func (mgr *StoreManagerImpl) GetIngestStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.ingest
}

// GetHistoryStore returns the report HistoryStore.
func (mgr *StoreManagerImpl) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
