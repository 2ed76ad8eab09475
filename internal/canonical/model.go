package canonical

// CanonicalModel is the shared in-memory store of normalized entities. It
// exclusively owns its lists; engines take snapshot copies and never mutate
// them. The model itself is not safe for concurrent mutation; callers must
// serialize writes and detection passes.
type CanonicalModel struct {
	mappings     CategoryMappings
	units        []Unit
	transactions []RecurringTransaction
	leases       []Lease
	findings     []AuditFinding
}

// NewModel builds an empty model with the given category mappings, falling
// back to the built-in defaults when none are supplied.
func NewModel(mappings CategoryMappings) *CanonicalModel {
	if mappings.IsZero() {
		mappings = DefaultCategoryMappings()
	}
	return &CanonicalModel{mappings: mappings}
}

// NormalizeCategory maps a charge description through the model's mapping
// table. See CategoryMappings.Normalize.
func (m *CanonicalModel) NormalizeCategory(description string) (Category, string) {
	return m.mappings.Normalize(description)
}

// AddUnit appends a unit, or merges it into an already-known unit with the
// same UnitID under first-non-null-wins semantics.
func (m *CanonicalModel) AddUnit(unit Unit) {
	for i, existing := range m.units {
		if existing.UnitID == unit.UnitID {
			m.units[i] = MergeUnits(existing, unit)
			return
		}
	}
	m.units = append(m.units, unit)
}

// AddTransaction appends a transaction. No dedup, no merge.
func (m *CanonicalModel) AddTransaction(txn RecurringTransaction) {
	m.transactions = append(m.transactions, txn)
}

// AddLease appends a lease.
func (m *CanonicalModel) AddLease(lease Lease) {
	m.leases = append(m.leases, lease)
}

// AddFinding appends an audit finding.
func (m *CanonicalModel) AddFinding(finding AuditFinding) {
	m.findings = append(m.findings, finding)
}

// SetFindings replaces the finding list wholesale. A detection pass discards
// and regenerates all findings.
func (m *CanonicalModel) SetFindings(findings []AuditFinding) {
	m.findings = append([]AuditFinding(nil), findings...)
}

// Units returns a snapshot copy of the unit list.
func (m *CanonicalModel) Units() []Unit {
	return append([]Unit(nil), m.units...)
}

// Transactions returns a snapshot copy of the transaction list.
func (m *CanonicalModel) Transactions() []RecurringTransaction {
	return append([]RecurringTransaction(nil), m.transactions...)
}

// Leases returns a snapshot copy of the lease list.
func (m *CanonicalModel) Leases() []Lease {
	return append([]Lease(nil), m.leases...)
}

// Findings returns a snapshot copy of the finding list.
func (m *CanonicalModel) Findings() []AuditFinding {
	return append([]AuditFinding(nil), m.findings...)
}

// Unit looks up a unit by id.
func (m *CanonicalModel) Unit(unitID string) (Unit, bool) {
	for _, u := range m.units {
		if u.UnitID == unitID {
			return u, true
		}
	}
	return Unit{}, false
}

// Clear empties all entity lists. Used when switching data sources.
func (m *CanonicalModel) Clear() {
	m.units = nil
	m.transactions = nil
	m.leases = nil
	m.findings = nil
}
