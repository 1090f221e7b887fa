package announcer

import (
	"context"
	"math"
	"net"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/avelis/trackwire/internal/tracker"
)

type Status int

const (
	NotContactedYet Status = iota
	Contacting
	Working
	NotWorking
)

// PeriodicalAnnouncer announces the torrent to one tracker on the
// interval the tracker asks for, backing off after failures.
type PeriodicalAnnouncer struct {
	Tracker        tracker.Tracker
	numWant        int
	interval       time.Duration
	minInterval    time.Duration
	seeders        int
	leechers       int
	warningMsg     string
	completedC     chan struct{}
	newPeersC      chan []*net.TCPAddr
	backoff        backoff.BackOff
	getTorrent     func() tracker.Torrent
	lastAnnounce   time.Time
	nextAnnounce   time.Time
	HasAnnounced   bool
	responseC      chan *tracker.AnnounceResponse
	errC           chan error
	closeC         chan struct{}
	doneC          chan struct{}
	needMorePeers  bool
	mNeedMorePeers sync.RWMutex
	needMorePeersC chan struct{}
	lastError      *AnnounceError

	status        Status
	statsCommandC chan statsRequest
}

func NewPeriodicalAnnouncer(
	t tracker.Tracker,
	numWant int,
	minInterval time.Duration,
	getTorrent func() tracker.Torrent,
	completedC chan struct{},
	newPeersC chan []*net.TCPAddr,
) *PeriodicalAnnouncer {
	return &PeriodicalAnnouncer{
		Tracker:        t,
		status:         NotContactedYet,
		numWant:        numWant,
		minInterval:    minInterval,
		completedC:     completedC,
		newPeersC:      newPeersC,
		getTorrent:     getTorrent,
		needMorePeersC: make(chan struct{}, 1),
		responseC:      make(chan *tracker.AnnounceResponse),
		errC:           make(chan error),
		closeC:         make(chan struct{}),
		doneC:          make(chan struct{}),
		statsCommandC:  make(chan statsRequest),
		backoff: &backoff.ExponentialBackOff{
			InitialInterval:     5 * time.Second,
			RandomizationFactor: 0.5,
			Multiplier:          2,
			MaxInterval:         30 * time.Minute,
		},
	}
}

func (a *PeriodicalAnnouncer) Close() {
	close(a.closeC)
	<-a.doneC
}

func (a *PeriodicalAnnouncer) Run() {
	defer close(a.doneC)

	a.backoff.Reset()

	timer := time.NewTimer(math.MaxInt64)
	defer timer.Stop()

	resetTimer := func(interval time.Duration) {
		timer.Reset(interval)
		if interval < 0 {
			a.nextAnnounce = time.Now()
		} else {
			a.nextAnnounce = time.Now().Add(interval)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	// BEP 3: no completed event is sent if the download was already
	// complete when the announcer started.
	select {
	case <-a.completedC:
		a.completedC = nil
	default:
	}

	a.doAnnounce(ctx, tracker.EventStarted, a.numWant)
	for {
		select {
		case <-timer.C:
			if a.status == Contacting {
				break
			}
			a.doAnnounce(ctx, tracker.EventNone, a.numWant)
		case resp := <-a.responseC:
			a.status = Working
			a.seeders = int(resp.Seeders)
			a.leechers = int(resp.Leechers)
			a.warningMsg = resp.WarningMessage
			a.interval = resp.Interval
			if resp.MinInterval > 0 {
				a.minInterval = resp.MinInterval
			}
			a.HasAnnounced = true
			a.lastError = nil
			a.backoff.Reset()
			resetTimer(a.getNextInterval())
			go func() {
				select {
				case a.newPeersC <- resp.Peers:
				case <-a.closeC:
				}
			}()
		case err := <-a.errC:
			a.status = NotWorking
			a.lastError = newAnnounceError(err)
			resetTimer(a.getNextIntervalFromError(a.lastError))
		case <-a.needMorePeersC:
			if a.status == Contacting || a.status == NotWorking {
				break
			}
			resetTimer(time.Until(a.lastAnnounce.Add(a.getNextInterval())))
		case <-a.completedC:
			if a.status == Contacting {
				cancel()
				ctx, cancel = context.WithCancel(context.Background())
			}
			a.doAnnounce(ctx, tracker.EventCompleted, 0)
			a.completedC = nil
		case req := <-a.statsCommandC:
			req.Response <- a.stats()
		case <-a.closeC:
			cancel()
			return
		}
	}
}

func (a *PeriodicalAnnouncer) NeedMorePeers(val bool) {
	a.mNeedMorePeers.Lock()
	a.needMorePeers = val
	a.mNeedMorePeers.Unlock()

	select {
	case a.needMorePeersC <- struct{}{}:
	case <-a.doneC:
	default:
	}
}

func (a *PeriodicalAnnouncer) doAnnounce(ctx context.Context, event tracker.Event, numWant int) {
	go a.announce(ctx, event, numWant)
	a.status = Contacting
	a.lastAnnounce = time.Now()
}

func (a *PeriodicalAnnouncer) announce(ctx context.Context, event tracker.Event, numWant int) {
	announce(ctx, a.Tracker, event, numWant, a.getTorrent(), a.responseC, a.errC)
}

func (a *PeriodicalAnnouncer) getNextInterval() time.Duration {
	a.mNeedMorePeers.RLock()
	need := a.needMorePeers
	a.mNeedMorePeers.RUnlock()

	if need {
		return a.minInterval
	}

	return a.interval
}

func (a *PeriodicalAnnouncer) getNextIntervalFromError(err *AnnounceError) time.Duration {
	if terr, ok := err.Err.(*tracker.Error); ok && terr.RetryIn > 0 {
		return terr.RetryIn
	}

	return a.backoff.NextBackOff()
}

type statsRequest struct {
	Response chan Stats
}

func (a *PeriodicalAnnouncer) Stats() Stats {
	var stats Stats
	req := statsRequest{
		Response: make(chan Stats, 1),
	}

	select {
	case a.statsCommandC <- req:
	case <-a.closeC:
	}

	select {
	case stats = <-req.Response:
	case <-a.closeC:
	}

	return stats
}

type Stats struct {
	Status       Status
	Error        *AnnounceError
	Warning      string
	Seeders      int
	Leechers     int
	LastAnnounce time.Time
	NextAnnounce time.Time
}

func (a *PeriodicalAnnouncer) stats() Stats {
	return Stats{
		Status:       a.status,
		Error:        a.lastError,
		Warning:      a.warningMsg,
		Seeders:      a.seeders,
		Leechers:     a.leechers,
		LastAnnounce: a.lastAnnounce,
		NextAnnounce: a.nextAnnounce,
	}
}
