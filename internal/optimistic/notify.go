package optimistic

// Notifier is the side channel mutation failures are surfaced through.
// The synchronizer never returns errors past its boundary; every
// mutation resolves to Committed or RolledBack and failures become
// notifications, so one failed mutation cannot crash unrelated state.
type Notifier interface {
	// Toast shows a transient user-visible error message.
	Toast(message string)
	// FieldError surfaces a form-validation message inline at the input.
	FieldError(message string)
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) Toast(string)      {}
func (NopNotifier) FieldError(string) {}
