package server

import (
	"encoding/json"
	"io"
	"io/fs"
	"mime"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
)

// audioTypes are registered so that tune responses carry a type derived
// from the extension even where the system MIME tables lack them.
var audioTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
	".opus": "audio/ogg",
	".flac": "audio/flac",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
}

func init() {
	for extension, contentType := range audioTypes {
		mime.AddExtensionType(extension, contentType)
	}
}

// serveHome serves the home page file from the static directory.
func (s *Server) serveHome(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	path := s.config.IndexPath()

	file, err := s.site.Open(s.config.IndexFile)
	if err != nil {
		s.fail(w, r, errors.Wrap(err, "unable to open home page"))
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		s.fail(w, r, errors.Wrap(err, "unable to stat home page"))
		return
	}
	if info.IsDir() {
		s.fail(w, r, errors.Wrapf(fs.ErrNotExist, "%s is a directory", path))
		return
	}
	content, ok := file.(io.ReadSeeker)
	if !ok {
		s.fail(w, r, errors.Errorf("%s does not support seeking", path))
		return
	}

	http.ServeContent(w, r, info.Name(), info.ModTime(), content)
}

// listTunes responds with the JSON listing of the tunes directory.
func (s *Server) listTunes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	list, err := s.catalog.List()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Debugf("Listed %d tunes in %s", len(list.Songs), s.catalog.Dir())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(list); err != nil {
		s.logger.Warn(errors.Wrap(err, "unable to write tune listing"))
	}
}

// serveTune streams a single tune.
func (s *Server) serveTune(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	file, info, err := s.catalog.Open(params.ByName("filename"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer file.Close()

	http.ServeContent(w, r, info.Name(), info.ModTime(), file)
}
