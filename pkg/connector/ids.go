// Copyright 2024-2026 Aiku AI

package connector

import (
	"go.mau.fi/util/exsync"
)

// channelDirectory maps Mattermost channel names to IDs and back. The bot
// addresses channels by name while the API and websocket use IDs.
type channelDirectory struct {
	byName *exsync.Map[string, string]
	byID   *exsync.Map[string, string]
}

func newChannelDirectory() *channelDirectory {
	return &channelDirectory{
		byName: exsync.NewMap[string, string](),
		byID:   exsync.NewMap[string, string](),
	}
}

func (d *channelDirectory) remember(name, channelID string) {
	if name == "" || channelID == "" {
		return
	}
	d.byName.Set(name, channelID)
	d.byID.Set(channelID, name)
}

func (d *channelDirectory) idOf(name string) (string, bool) {
	return d.byName.Get(name)
}

func (d *channelDirectory) nameOf(channelID string) (string, bool) {
	return d.byID.Get(channelID)
}

func (d *channelDirectory) forget(name string) {
	if channelID, ok := d.byName.Pop(name); ok {
		d.byID.Delete(channelID)
	}
}
