// ABOUTME: Clock synchronization package
// ABOUTME: Public re-export of internal/sync for external importers
// Package driftsync provides NTP-style clock synchronization against a
// driftsync server.
//
// Uses round-trip time measurement and a rejecting median filter to track
// a remote clock's offset and rate relative to the local monotonic clock.
//
// Example:
//
//	client, err := driftsync.Open(ctx, driftsync.Config{ServerAddr: "drift.example:4318"})
//	if err != nil {
//		// handle error
//	}
//	defer client.Close()
//	t := client.GlobalTime()
package driftsync
