package pozeclient

import "context"

// messager lets mutation response types expose the server's human-readable
// message for the notifier side channel.
type messager interface {
	NotificationMessage() string
}

// Mutate runs spec.Fn exactly once: no deduplication, no automatic retry.
// On success the declared keys are invalidated, which refetches any entry
// with active subscribers; on failure no cache state changes. The returned
// value is whatever Fn produced.
//
// Invalidation is applied strictly after Fn returns, so a subscriber never
// observes a state between "write applied server-side" and "cache
// invalidated".
func (c *Coordinator) Mutate(ctx context.Context, spec MutationSpec) (any, error) {
	value, err := spec.Fn(ctx)
	if err != nil {
		if spec.Notifier != nil {
			spec.Notifier.Error(err.Error())
		}
		if c.logger != nil {
			c.logger.Warn("mutation failed", "error", err.Error())
		}
		return nil, err
	}

	c.Invalidate(spec.Invalidates...)

	if spec.Notifier != nil {
		msg := spec.SuccessMessage
		if msg == "" {
			if m, ok := value.(messager); ok {
				msg = m.NotificationMessage()
			}
		}
		if msg != "" {
			spec.Notifier.Success(msg)
		}
	}

	return value, nil
}
