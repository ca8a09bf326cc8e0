package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Martius108/mc-connect-hub/internal/models"
)

// MockRepository is a mock implementation of the store.Repository interface.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FetchOnlineDeviceIDs() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRepository) FetchLatestByDevice(deviceID string) (map[string]models.TelemetryValue, error) {
	args := m.Called(deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]models.TelemetryValue), args.Error(1)
}

func (m *MockRepository) SaveValue(deviceID, keyword string, value models.TelemetryValue) error {
	args := m.Called(deviceID, keyword, value)
	return args.Error(0)
}

func (m *MockRepository) UpsertDeviceStatus(deviceID string, online bool, lastSeen time.Time) error {
	args := m.Called(deviceID, online, lastSeen)
	return args.Error(0)
}

func (m *MockRepository) DeleteDevice(deviceID string) error {
	args := m.Called(deviceID)
	return args.Error(0)
}
