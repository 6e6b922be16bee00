package services

// ProgressNotifier is told whenever a session's position or user changes.
type ProgressNotifier interface {
	Notify()
}

type noopNotifier struct{}

func (noopNotifier) Notify() {}

func notifierOrNoop(n ProgressNotifier) ProgressNotifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
