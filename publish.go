package supernovacli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hellenic-development/supernova-cli/pkg/supernova"
)

// DefaultPollInterval is how often a queued documentation job is polled.
const DefaultPollInterval = 5 * time.Second

// PublishOptions configures PublishDocumentation.
type PublishOptions struct {
	Environment supernova.DocumentationEnvironment // empty = Live
	// Timeout bounds how long a queued job is awaited. Zero returns right after
	// the job is queued.
	Timeout      time.Duration
	PollInterval time.Duration // 0 = DefaultPollInterval
}

// PublishDocumentation starts a documentation build for the design system's
// version. A job that is already in progress is returned as is. A queued job is
// polled until it finishes or pub.Timeout elapses, in which case the returned job
// has status supernova.PublishTimeout.
func PublishDocumentation(ctx context.Context, opts Options, pub PublishOptions) (*supernova.PublishJob, error) {
	if pub.Environment == "" {
		pub.Environment = supernova.DocumentationLive
	}
	if pub.Environment != supernova.DocumentationLive && pub.Environment != supernova.DocumentationPreview {
		return nil, fmt.Errorf("unknown documentation environment %q (must be %q or %q)",
			pub.Environment, supernova.DocumentationLive, supernova.DocumentationPreview)
	}
	if pub.PollInterval <= 0 {
		pub.PollInterval = DefaultPollInterval
	}

	client, err := opts.Client()
	if err != nil {
		return nil, err
	}
	ds, version, err := opts.connect(ctx, client)
	if err != nil {
		return nil, err
	}

	ref := supernova.VersionRef{DesignSystemID: ds.ID, VersionID: version.ID}
	opts.logInfo("Publishing %s documentation of %s...", pub.Environment, ds.Name)
	job, err := client.PublishDocumentation(ctx, ref, pub.Environment)
	if err != nil {
		return nil, fmt.Errorf("publish documentation: %w", err)
	}

	if job.Status != supernova.PublishQueued || pub.Timeout <= 0 {
		return job, nil
	}
	return awaitJob(ctx, client, ref, job, pub, &opts)
}

func awaitJob(ctx context.Context, client *supernova.Client, ref supernova.VersionRef, job *supernova.PublishJob, pub PublishOptions, opts *Options) (*supernova.PublishJob, error) {
	waitCtx, cancel := context.WithTimeout(ctx, pub.Timeout)
	defer cancel()

	ticker := time.NewTicker(pub.PollInterval)
	defer ticker.Stop()

	timedOut := func() (*supernova.PublishJob, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		opts.logWarn("Documentation job %s did not finish within %s", job.ID, pub.Timeout)
		timeout := *job
		timeout.Status = supernova.PublishTimeout
		return &timeout, nil
	}

	for {
		select {
		case <-waitCtx.Done():
			return timedOut()
		case <-ticker.C:
			next, err := client.PublishJob(waitCtx, ref, job.ID)
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) && waitCtx.Err() != nil {
					return timedOut()
				}
				return nil, fmt.Errorf("poll documentation job %s: %w", job.ID, err)
			}
			job = next
			if job.Status.Finished() {
				return job, nil
			}
			opts.logInfo("Documentation job %s: %s", job.ID, job.Status)
		}
	}
}
