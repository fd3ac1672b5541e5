package collector

import "context"

// NewsSource fetches the raw upstream news payload for one coin. Decoding the
// payload is the processor's job; transport and HTTP failures come back as
// errors and the caller treats them as "no data available".
type NewsSource interface {
	Name() string
	Fetch(ctx context.Context, coin string) ([]byte, error)
}
