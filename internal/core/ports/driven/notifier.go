package driven

// Notifier surfaces transient, dismissable notifications to the user.
// All operation outcomes go through here; no error is fatal to the
// dashboard.
type Notifier interface {
	// Success reports a completed operation
	Success(message string)

	// Error reports a failed operation
	Error(message string)

	// Info reports a neutral outcome (e.g. a canceled authorization)
	Info(message string)
}
