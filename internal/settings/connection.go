package settings

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

var ErrConnectionFailed = errors.New("connection failed")

// CheckConnection simulates a connection test against r. Nothing is sent over
// the network: the descriptor is only checked for completeness and a well
// formed endpoint. Failures wrap ErrConnectionFailed and are not retried.
func CheckConnection(ctx context.Context, r RemoteAPI) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if r.APIKey == "" {
		return fmt.Errorf("%w: API key is required", ErrConnectionFailed)
	}
	u, err := url.Parse(r.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: endpoint must be an absolute http(s) URL", ErrConnectionFailed)
	}
	if r.Model == "" {
		return fmt.Errorf("%w: no model selected", ErrConnectionFailed)
	}
	return nil
}
