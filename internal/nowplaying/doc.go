// Package nowplaying exposes the blocking wait/cancel protocol over a media
// source.
//
// A Service owns one state.Store and one watcher.Watcher. WaitForMedia arms
// the store, starts the watcher on first use, and blocks until the version
// moves or Halt is called. Accessors read the merged metadata, and return ""
// unless a wait has armed the service since the last Halt.
//
//	svc := nowplaying.New(ctx, src, nowplaying.Options{})
//	for {
//		if err := svc.WaitForMedia(ctx); err != nil {
//			return err
//		}
//		fmt.Println(svc.Title(), "by", svc.Artist())
//	}
//
// By default waits are unbounded, matching the behaviour hosts of the plugin
// interface expect. Options.WaitTimeout opts into a bounded wait that ends
// with ErrWaitTimeout.
package nowplaying
