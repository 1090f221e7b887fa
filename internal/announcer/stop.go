package announcer

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/avelis/trackwire/internal/tracker"
)

// StopAnnouncer sends the stopped event to all trackers, best effort,
// within a deadline.
type StopAnnouncer struct {
	timeout  time.Duration
	trackers []tracker.Tracker
	torrent  tracker.Torrent
	resultC  chan struct{}
	closeC   chan struct{}
	doneC    chan struct{}
}

func NewStopAnnouncer(trackers []tracker.Tracker, torrent tracker.Torrent, timeout time.Duration, resultC chan struct{}) *StopAnnouncer {
	return &StopAnnouncer{
		timeout:  timeout,
		trackers: trackers,
		torrent:  torrent,
		resultC:  resultC,
		closeC:   make(chan struct{}),
		doneC:    make(chan struct{}),
	}
}

func (a *StopAnnouncer) Close() {
	close(a.closeC)
	<-a.doneC
}

func (a *StopAnnouncer) Run() {
	defer close(a.doneC)

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	go func() {
		select {
		case <-ctx.Done():
		case <-a.closeC:
			cancel()
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	for _, trk := range a.trackers {
		g.Go(func() error {
			req := tracker.AnnounceRequest{
				Torrent: a.torrent,
				Event:   tracker.EventStopped,
			}
			_, _ = trk.Announce(gctx, req)
			return nil
		})
	}
	_ = g.Wait()

	select {
	case a.resultC <- struct{}{}:
	case <-a.closeC:
	}
}
