package cmd

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/avelis/trackwire/internal/announcer"
	"github.com/avelis/trackwire/internal/tracker"
	"github.com/avelis/trackwire/internal/trackermanager"
)

var (
	announceInfoHash string
	announceEvent    string
	announceLeft     int64
	announcePeriodic bool
)

var announceCmd = &cobra.Command{
	Use:   "announce <tracker-url>",
	Short: "Announce to an HTTP tracker and print the returned peers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := tracker.ParseInfoHash(announceInfoHash)
		if err != nil {
			return err
		}

		tm := trackermanager.New(cfg.Tracker, logger)
		trk, err := tm.Get(args[0])
		if err != nil {
			return err
		}
		defer trk.Close()

		torrent := tracker.Torrent{
			InfoHash:  hash,
			PeerID:    tracker.NewPeerID(cfg.PeerIDPrefix),
			Port:      cfg.Port,
			BytesLeft: announceLeft,
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if announcePeriodic {
			return runPeriodic(ctx, trk, torrent)
		}

		event, ok := tracker.ParseEvent(announceEvent)
		if !ok {
			return fmt.Errorf("unknown announce event: %q", announceEvent)
		}

		resp, err := trk.Announce(ctx, tracker.AnnounceRequest{
			Torrent: torrent,
			Event:   event,
			NumWant: cfg.NumWant,
		})
		if err != nil {
			return err
		}

		fmt.Printf("seeders: %d  leechers: %d  interval: %s\n", resp.Seeders, resp.Leechers, resp.Interval)
		if resp.WarningMessage != "" {
			fmt.Printf("warning: %s\n", resp.WarningMessage)
		}
		for _, p := range resp.Peers {
			fmt.Println(p)
		}
		return nil
	},
}

func runPeriodic(ctx context.Context, trk tracker.Tracker, torrent tracker.Torrent) error {
	newPeersC := make(chan []*net.TCPAddr)
	a := announcer.NewPeriodicalAnnouncer(
		trk,
		cfg.NumWant,
		time.Duration(cfg.Tracker.MinInterval)*time.Second,
		func() tracker.Torrent { return torrent },
		make(chan struct{}),
		newPeersC,
	)
	go a.Run()

	for {
		select {
		case peers := <-newPeersC:
			for _, p := range peers {
				fmt.Println(p)
			}
		case <-ctx.Done():
			a.Close()

			resultC := make(chan struct{}, 1)
			stopper := announcer.NewStopAnnouncer(
				[]tracker.Tracker{trk},
				torrent,
				5*time.Second,
				resultC,
			)
			go stopper.Run()
			<-resultC
			return nil
		}
	}
}

func init() {
	announceCmd.Flags().StringVar(&announceInfoHash, "infohash", "", "info hash as a 40-character hex string")
	announceCmd.Flags().StringVar(&announceEvent, "event", "started", "announce event: started, stopped, completed or empty")
	announceCmd.Flags().Int64Var(&announceLeft, "left", 0, "bytes left to download")
	announceCmd.Flags().BoolVar(&announcePeriodic, "periodic", false, "keep announcing on the tracker's interval until interrupted")
	_ = announceCmd.MarkFlagRequired("infohash")
}
