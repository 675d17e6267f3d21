package app

import (
	"context"
	"time"
)

// janitorInterval is how often idle sessions are swept.
const janitorInterval = time.Minute

// StartBackgroundJobs runs periodic maintenance until ctx is cancelled.
func (app *Application) StartBackgroundJobs(ctx context.Context) {
	app.Sessions.StartJanitor(ctx, janitorInterval)
}
