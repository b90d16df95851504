package pipeline

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Check is one connectivity probe run before the pipeline starts. Mandatory
// checks abort the run; optional ones only warn, because the stage they
// cover fails soft anyway.
type Check struct {
	Name      string
	Mandatory bool
	Probe     func(ctx context.Context) error
}

// Preflight runs every check and reports the first mandatory failure. All
// checks execute regardless, so the log shows the full picture.
func Preflight(ctx context.Context, log *logrus.Logger, checks []Check) error {
	var failed error

	for _, c := range checks {
		err := c.Probe(ctx)
		entry := log.WithField("check", c.Name)
		switch {
		case err == nil:
			entry.Info("preflight check passed")
		case c.Mandatory:
			entry.Errorf("preflight check failed: %v", err)
			if failed == nil {
				failed = fmt.Errorf("preflight %s: %w", c.Name, err)
			}
		default:
			entry.Warnf("preflight check failed (non-fatal): %v", err)
		}
	}

	return failed
}
