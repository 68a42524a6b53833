// Package migrations holds the versioned schema history of the blog database
// and the machinery to apply, revert and generate it.
//
// Each migration lives in its own <version>_<name>.go file and registers
// itself from init. Versions are UTC timestamps (20060102150405) so lexical
// order is application order.
package migrations

import (
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
)

// VersionFormat is the time layout used for migration versions
const VersionFormat = "20060102150405"

// Migration represents a single schema change
type Migration struct {
	Version string
	Name    string
	Up      func(tx *gorm.DB) error
	Down    func(tx *gorm.DB) error
}

// Record represents an applied migration
type Record struct {
	Version   string    `gorm:"primaryKey;size:32"`
	Name      string    `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
}

func (Record) TableName() string {
	return "schema_migrations"
}

var (
	registry      []*Migration
	registryMutex sync.RWMutex
)

// Register adds a migration to the global registry
func Register(m *Migration) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	registry = append(registry, m)
}

// Registered returns every registered migration in version order
func Registered() []*Migration {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	out := make([]*Migration, len(registry))
	copy(out, registry)
	sortByVersion(out)
	return out
}

func sortByVersion(ms []*Migration) {
	sort.Slice(ms, func(i, j int) bool {
		return ms[i].Version < ms[j].Version
	})
}
