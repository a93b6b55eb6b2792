package access

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/reviosa/riverbank-bot/internal/models"
)

// Policy gates which identities may mutate the ledger. One owner
// (numeric id, fixed for the process lifetime) plus an ordered set of
// manager handles persisted to a local JSON file so promotions survive
// restarts.
type Policy struct {
	ownerID int64
	path    string

	mu       sync.Mutex
	managers []string
}

// LoadPolicy reads the manager set from path. A missing file seeds an
// empty set; an unreadable or unparseable file is a startup error.
func LoadPolicy(path string, ownerID int64) (*Policy, error) {
	p := &Policy{ownerID: ownerID, path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manager file: %w", err)
	}
	if err := json.Unmarshal(data, &p.managers); err != nil {
		return nil, fmt.Errorf("parse manager file %s: %w", path, err)
	}
	return p, nil
}

func (p *Policy) OwnerID() int64 { return p.ownerID }

// CanModify reports whether the identity may mutate balances: the
// owner always can, managers are matched by handle.
func (p *Policy) CanModify(userID int64, handle string) bool {
	if userID == p.ownerID {
		return true
	}
	return p.IsManager(handle)
}

func (p *Policy) IsManager(handle string) bool {
	handle = normalize(handle)
	if handle == "" {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range p.managers {
		if normalize(m) == handle {
			return true
		}
	}
	return false
}

// Managers returns a copy of the current manager handles in insertion
// order.
func (p *Policy) Managers() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.managers...)
}

// Promote adds a handle to the manager set and persists it. The owner
// identity itself cannot be promoted.
func (p *Policy) Promote(targetID int64, handle string) error {
	if targetID == p.ownerID {
		return models.ErrUnauthorized
	}
	if p.IsManager(handle) {
		return models.ErrAlreadyManager
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.managers = append(p.managers, strings.TrimPrefix(handle, "@"))
	return p.persistLocked()
}

// Demote removes a handle from the manager set and persists it.
func (p *Policy) Demote(targetID int64, handle string) error {
	if targetID == p.ownerID {
		return models.ErrUnauthorized
	}

	handle = normalize(handle)
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, m := range p.managers {
		if normalize(m) == handle {
			p.managers = append(p.managers[:i], p.managers[i+1:]...)
			return p.persistLocked()
		}
	}
	return models.ErrNotManager
}

func (p *Policy) persistLocked() error {
	data, err := json.Marshal(p.managers)
	if err != nil {
		return err
	}
	if err := os.WriteFile(p.path, data, 0o644); err != nil {
		return fmt.Errorf("persist manager file: %w", err)
	}
	return nil
}

func normalize(handle string) string {
	return strings.ToLower(strings.TrimPrefix(handle, "@"))
}
