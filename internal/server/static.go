package server

import (
	"io/fs"
	"net/http"
	"path"

	"github.com/pkg/errors"
)

// staticFileSystem returns the file system served under /static/.
func (s *Server) staticFileSystem() http.FileSystem {
	root := http.FS(s.site)
	if s.config.StaticListing {
		return root
	}
	return noListingFileSystem{root}
}

// noListingFileSystem hides directories that have no index page, so that
// http.FileServer answers 404 instead of generating a listing.
type noListingFileSystem struct {
	http.FileSystem
}

// Open implements http.FileSystem.Open. A directory whose index page exists
// but cannot be opened reports that failure, so that an unreadable index is
// forbidden rather than missing.
func (nfs noListingFileSystem) Open(name string) (http.File, error) {
	file, err := nfs.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if !info.IsDir() {
		return file, nil
	}

	index, err := nfs.FileSystem.Open(path.Join(name, "index.html"))
	if err != nil {
		file.Close()
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fs.ErrNotExist
		}
		return nil, err
	}
	index.Close()

	return file, nil
}
