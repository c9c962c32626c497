package feed

import "context"

// NopSource is a LiveSource with no live half: it blocks until ctx is
// cancelled. Used when no feed transport is configured, leaving only
// snapshot replay.
type NopSource struct{}

func (NopSource) Receive(ctx context.Context, deliver func(ctx context.Context, data []byte)) error {
	<-ctx.Done()
	return nil
}
