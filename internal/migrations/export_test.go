package migrations

// Register lets tests add migrations to one migrator without touching the
// package registry.
func (m *Migrator) Register(mg *Migration) {
	m.add(mg)
}
