package override

// RevertOperation removes the overrides of a selection of files.
//
// The set of candidates is recomputed from the store on every call, so the
// operation always reflects the current overrides.
type RevertOperation struct {
	store *Store
}

// NewRevertOperation creates a [RevertOperation] acting on store.
func NewRevertOperation(store *Store) *RevertOperation {
	return &RevertOperation{store: store}
}

// Candidates returns the files of selection that currently have an override,
// in selection order and without duplicates.
func (op *RevertOperation) Candidates(selection []FileID) []FileID {
	seen := make(map[string]struct{}, len(selection))

	var out []FileID

	for _, f := range selection {
		if _, ok := seen[f.Key()]; ok {
			continue
		}

		seen[f.Key()] = struct{}{}

		if op.store.Has(f) {
			out = append(out, f)
		}
	}

	return out
}

// Applicable reports whether at least one file of selection has an override.
func (op *RevertOperation) Applicable(selection []FileID) bool {
	for _, f := range selection {
		if op.store.Has(f) {
			return true
		}
	}

	return false
}

// Execute removes the override of every candidate in selection.
// Files whose override disappeared since the selection was made are reported
// as missing.
func (op *RevertOperation) Execute(selection []FileID) *BulkResult {
	return op.store.RemoveAll(op.Candidates(selection))
}
