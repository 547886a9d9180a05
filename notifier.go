package pozeclient

// LogNotifier routes mutation outcome messages to a Logger. Applications
// with a real toast/notification surface implement Notifier themselves.
type LogNotifier struct {
	L Logger
}

func (n LogNotifier) Success(msg string) {
	if n.L != nil {
		n.L.Info("mutation succeeded", "message", msg)
	}
}

func (n LogNotifier) Error(msg string) {
	if n.L != nil {
		n.L.Warn("mutation failed", "message", msg)
	}
}
