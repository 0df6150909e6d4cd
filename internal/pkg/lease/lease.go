// Package lease implements a file-backed port lease preventing two server
// instances from serving the same logical port on one host.
//
// A lease is a JSON marker file recording the holder's pid. A lease is live
// only while that pid is running, so a crashed holder never blocks the next
// start: the new process probes the recorded pid and reclaims the lease when
// the probe fails. The check-then-write has a small race window at creation,
// accepted because collisions are rare and a live holder is re-verified on
// conflict.
package lease

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"
)

var ErrLeaseNotHeld = errors.New("lease is not held")

// ConflictError reports that another running process already holds the lease.
type ConflictError struct {
	Port       int
	HolderPID  int
	HolderHost string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("port %d in use by pid %d on %s", e.Port, e.HolderPID, e.HolderHost)
}

// NewConflictError creates a ConflictError for the given holder.
func NewConflictError(port, holderPID int, holderHost string) *ConflictError {
	return &ConflictError{
		Port:       port,
		HolderPID:  holderPID,
		HolderHost: holderHost,
	}
}

// Record is the persisted lease document.
type Record struct {
	Port        int       `json:"port"`
	ServiceName string    `json:"serviceName"`
	PID         int       `json:"pid"`
	Host        string    `json:"host"`
	AcquiredAt  time.Time `json:"acquiredAt"`
}

// Manager acquires and releases the lease file for one port.
// Release is idempotent: it no-ops when the lease was never acquired or was
// already released, so it is safe to wire into both the signal path and a
// deferred cleanup.
type Manager struct {
	leaseDir    string
	port        int
	serviceName string
	host        string

	mu   sync.Mutex
	held bool

	// pidAlive is overridable in tests.
	pidAlive func(pid int) bool
}

// NewManager creates a lease manager writing lease files into leaseDir.
// The directory is created on first Acquire if it does not exist.
func NewManager(leaseDir string, port int, serviceName, host string) *Manager {
	return &Manager{
		leaseDir:    leaseDir,
		port:        port,
		serviceName: serviceName,
		host:        host,
		pidAlive:    pidAlive,
	}
}

// Acquire takes the lease for the manager's port.
//
// If no lease file exists, or the recorded holder process is no longer
// running, the lease is written and Acquire returns nil. If a different live
// process holds the lease, Acquire returns a ConflictError; startup must
// treat that as fatal. A lease already held by this process is re-acquired
// without error.
func (m *Manager) Acquire() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, err := m.read()
	if err != nil {
		return err
	}

	if existing != nil && existing.PID != os.Getpid() && m.pidAlive(existing.PID) {
		return NewConflictError(m.port, existing.PID, existing.Host)
	}

	record := Record{
		Port:        m.port,
		ServiceName: m.serviceName,
		PID:         os.Getpid(),
		Host:        m.host,
		AcquiredAt:  time.Now().UTC(),
	}

	if err = m.write(record); err != nil {
		return err
	}

	m.held = true
	return nil
}

// Release removes the lease file. Calling Release without a held lease, or
// a second time, is a no-op.
func (m *Manager) Release() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.held {
		return nil
	}

	m.held = false
	if err := os.Remove(m.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return nil
}

// Held reports whether this manager currently holds the lease.
func (m *Manager) Held() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held
}

// Current returns the persisted lease record, or ErrLeaseNotHeld when no
// lease file exists.
func (m *Manager) Current() (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, err := m.read()
	if err != nil {
		return Record{}, err
	}
	if record == nil {
		return Record{}, ErrLeaseNotHeld
	}
	return *record, nil
}

func (m *Manager) path() string {
	return filepath.Join(m.leaseDir, fmt.Sprintf("port-%d.lease", m.port))
}

// read loads the existing lease record. A missing or corrupt file reads as
// no lease: a corrupt record cannot name a live holder, so it is reclaimable.
func (m *Manager) read() (*Record, error) {
	data, err := os.ReadFile(m.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var record Record
	if err = json.Unmarshal(data, &record); err != nil {
		return nil, nil //nolint:nilerr //corrupt lease is treated as stale
	}

	return &record, nil
}

// write persists the record atomically: the file is written to a temp name
// and renamed into place so a concurrent reader never sees a partial record.
func (m *Manager) write(record Record) error {
	if err := os.MkdirAll(m.leaseDir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}

	tmp := m.path() + ".tmp"
	if err = os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, m.path())
}

// pidAlive probes a process with signal 0. On Unix the probe succeeds for
// any running process we are allowed to signal; EPERM still means the
// process exists.
func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}

	return errors.Is(err, syscall.EPERM)
}
