package iocache

import (
	"time"

	"github.com/huangsam/donorlens/internal/contract"
	"github.com/huangsam/donorlens/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetIngestStore implements the StoreManager interface.
func (m *MockStoreManager) GetIngestStore() contract.CacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CacheStore)
	return store
}

// GetHistoryStore implements the StoreManager interface.
func (m *MockStoreManager) GetHistoryStore() contract.HistoryStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.HistoryStore)
	return store
}

// MockCacheStore is a mock implementation of CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ contract.CacheStore = &MockCacheStore{} // Compile-time check

// Get implements the CacheStore interface.
func (m *MockCacheStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the CacheStore interface.
func (m *MockCacheStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockHistoryStore{} // Compile-time check

// BeginRun implements the HistoryStore interface.
func (m *MockHistoryStore) BeginRun(startTime, asOf time.Time, configParams map[string]any) (int64, string, error) {
	args := m.Called(startTime, asOf, configParams)
	return args.Get(0).(int64), args.String(1), args.Error(2)
}

// EndRun implements the HistoryStore interface.
func (m *MockHistoryStore) EndRun(runID int64, endTime time.Time, totalDonors, totalGifts int, totalAmount float64) error {
	args := m.Called(runID, endTime, totalDonors, totalGifts, totalAmount)
	return args.Error(0)
}

// RecordDonorSnapshots implements the HistoryStore interface.
func (m *MockHistoryStore) RecordDonorSnapshots(runID int64, snapshots []schema.DonorSnapshotRecord) error {
	args := m.Called(runID, snapshots)
	return args.Error(0)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// GetAllRuns implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllRuns() ([]schema.ReportRunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.ReportRunRecord)
	return runs, args.Error(1)
}

// GetAllDonorSnapshots implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllDonorSnapshots() ([]schema.DonorSnapshotRecord, error) {
	args := m.Called()
	snaps, _ := args.Get(0).([]schema.DonorSnapshotRecord)
	return snaps, args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
