// Package catalog provides the filesystem-backed tune catalog.
package catalog

import (
	"io/fs"
)

// TuneEntry is the file name of one playable tune in the tunes directory.
// It carries no attributes beyond the name; whether it still exists is only
// known by asking the filesystem again.
type TuneEntry = string

// SongList is the JSON document returned by the tune listing endpoint.
// Songs appear in directory iteration order, which is not guaranteed to be
// stable across calls.
type SongList struct {
	// Songs holds the names of the tunes found at listing time. It is never
	// nil, so an empty listing serializes as [] rather than null.
	Songs []TuneEntry `json:"songs"`
}

// Options configures a Catalog.
type Options struct {
	// Dir is the directory scanned for tunes.
	Dir string
	// Extension is the tune extension without the leading dot, for example
	// "mp3". It is matched case-sensitively.
	Extension string
	// FS, if non-nil, is read in place of the operating system directory
	// named by Dir. Its root is the tunes directory.
	FS fs.FS
}
