package chessclock

// SettingsConflictError reports a constructor argument combination that
// cannot produce a working clock, such as a count-down clock without a max
// time. Construction is the only fallible operation; every other method is
// total over its inputs.
type SettingsConflictError struct {
	Msg string
}

func (e *SettingsConflictError) Error() string {
	return "settings conflict: " + e.Msg
}
