package store

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Martius108/mc-connect-hub/internal/models"
	"github.com/Martius108/mc-connect-hub/pkg/file"
)

// deviceRecord is the on-disk shape of one device's persisted state.
type deviceRecord struct {
	Online   bool                             `json:"online"`
	LastSeen time.Time                        `json:"last_seen,omitempty"`
	Values   map[string]models.TelemetryValue `json:"values,omitempty"`
}

type storeFile struct {
	Devices map[string]*deviceRecord `json:"devices"`
}

// FileStore implements Repository on a single JSON file, written atomically
// through the file service on every mutation. Suited to the hub's scale of
// a handful of dashboard devices.
type FileStore struct {
	path       string
	fileClient file.FileOperations
	logger     zerolog.Logger

	mu   sync.Mutex
	data storeFile
}

// NewFileStore opens (or initializes) the store at path.
func NewFileStore(path string, fileClient file.FileOperations, logger zerolog.Logger) (*FileStore, error) {
	s := &FileStore{
		path:       path,
		fileClient: fileClient,
		logger:     logger,
		data:       storeFile{Devices: make(map[string]*deviceRecord)},
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	exists, err := fileClient.IsFileExists(path)
	if err != nil {
		return nil, err
	}
	if exists {
		if err := fileClient.ReadJsonFile(path, &s.data); err != nil {
			return nil, err
		}
		if s.data.Devices == nil {
			s.data.Devices = make(map[string]*deviceRecord)
		}
	}

	return s, nil
}

// FetchOnlineDeviceIDs returns the devices flagged online in the store.
func (s *FileStore) FetchOnlineDeviceIDs() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for id, rec := range s.data.Devices {
		if rec.Online {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// FetchLatestByDevice returns a copy of the persisted readings for one device.
func (s *FileStore) FetchLatestByDevice(deviceID string) (map[string]models.TelemetryValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.data.Devices[deviceID]
	if !ok {
		return map[string]models.TelemetryValue{}, nil
	}
	out := make(map[string]models.TelemetryValue, len(rec.Values))
	for k, v := range rec.Values {
		out[k] = v
	}
	return out, nil
}

// SaveValue mirrors a new reading and flushes the file.
func (s *FileStore) SaveValue(deviceID, keyword string, value models.TelemetryValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.record(deviceID)
	if rec.Values == nil {
		rec.Values = make(map[string]models.TelemetryValue)
	}
	rec.Values[keyword] = value
	return s.flush()
}

// UpsertDeviceStatus records the online flag and lastSeen and flushes.
func (s *FileStore) UpsertDeviceStatus(deviceID string, online bool, lastSeen time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.record(deviceID)
	rec.Online = online
	if !lastSeen.IsZero() {
		rec.LastSeen = lastSeen
	}
	return s.flush()
}

// DeleteDevice removes all persisted data for a device and flushes.
func (s *FileStore) DeleteDevice(deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Devices[deviceID]; !ok {
		return nil
	}
	delete(s.data.Devices, deviceID)
	return s.flush()
}

// record returns the device record, creating it if needed. Caller holds mu.
func (s *FileStore) record(deviceID string) *deviceRecord {
	rec, ok := s.data.Devices[deviceID]
	if !ok {
		rec = &deviceRecord{}
		s.data.Devices[deviceID] = rec
	}
	return rec
}

// flush writes the store file atomically. Caller holds mu.
func (s *FileStore) flush() error {
	if err := s.fileClient.WriteJsonFile(s.path, &s.data); err != nil {
		s.logger.Error().Err(err).Str("path", s.path).Msg("Failed to write store file")
		return err
	}
	return nil
}
