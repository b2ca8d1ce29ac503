package ir

// Lock is an ordering constraint exported by a PU (§3): LockedVar must not
// be transferred before LockBy is transferred. The bus network's deadlock
// detector looks for cycles among currently-offered Locks across sub-PUs.
type Lock struct {
	LockedVar Var
	LockBy    Var
}

// String renders the lock in the spec's own notation, "locked is lockBy by".
func (l Lock) String() string {
	return l.LockedVar.Name + " is lockBy " + l.LockBy.Name
}
