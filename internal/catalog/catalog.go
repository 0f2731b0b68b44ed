package catalog

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// readBatchSize is the number of directory entries requested per read.
const readBatchSize = 64

// ErrInvalidName is returned (wrapped in a *NameError) when a requested tune
// name could address something outside the tunes directory.
var ErrInvalidName = errors.New("invalid tune name")

// ErrListing is matched by every error returned from List.
var ErrListing = errors.New("unable to list tunes")

// NameError records a rejected tune name.
type NameError struct {
	Name string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("%v: %q", ErrInvalidName, e.Name)
}

// Unwrap returns ErrInvalidName.
func (e *NameError) Unwrap() error {
	return ErrInvalidName
}

// ListError records a failure to open or iterate the tunes directory after it
// was found. It matches ErrListing whatever the underlying cause, so a
// permission failure here is a listing failure rather than a forbidden
// resource.
type ListError struct {
	// Op is the operation that failed, either "open" or "read".
	Op string
	// Err is the underlying error.
	Err error
}

func (e *ListError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrListing, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *ListError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrListing.
func (e *ListError) Is(target error) bool {
	return target == ErrListing
}

// Catalog lists and opens tunes stored in a single directory. It holds no
// state besides its options: every call reads the filesystem afresh, so a
// Catalog is safe for concurrent use.
type Catalog struct {
	dir       string
	extension string
	fsys      fs.FS
}

// New creates a catalog over the directory and extension in opts.
func New(opts Options) *Catalog {
	fsys := opts.FS
	if fsys == nil {
		fsys = os.DirFS(opts.Dir)
	}
	return &Catalog{
		dir:       opts.Dir,
		extension: strings.TrimPrefix(opts.Extension, "."),
		fsys:      fsys,
	}
}

// Dir returns the tunes directory.
func (c *Catalog) Dir() string {
	return c.dir
}

// Extension returns the extension of name: the text after its final dot. A
// name whose only dot is its first character (such as ".mp3") has no
// extension.
func Extension(name string) (string, bool) {
	index := strings.LastIndexByte(name, '.')
	if index <= 0 {
		return "", false
	}
	return name[index+1:], true
}

// Match reports whether name is listed as a tune: its extension must equal the
// catalog extension exactly and the name must be valid UTF-8.
func (c *Catalog) Match(name string) bool {
	extension, ok := Extension(name)
	return ok && extension == c.extension && utf8.ValidString(name)
}

// List returns the tunes currently in the directory.
//
// A tunes directory that cannot be stat'ed or is not a directory yields an
// empty list rather than an error. Once the directory has been found, any
// failure to open or iterate it aborts the whole listing with a *ListError.
func (c *Catalog) List() (*SongList, error) {
	list := &SongList{Songs: []TuneEntry{}}

	if info, err := fs.Stat(c.fsys, "."); err != nil || !info.IsDir() {
		return list, nil
	}

	file, err := c.fsys.Open(".")
	if err != nil {
		return nil, errors.WithStack(&ListError{Op: "open", Err: err})
	}
	defer file.Close()

	directory, ok := file.(fs.ReadDirFile)
	if !ok {
		return nil, errors.WithStack(&ListError{Op: "open", Err: errors.New("directory cannot be iterated")})
	}

	for {
		entries, err := directory.ReadDir(readBatchSize)
		for _, entry := range entries {
			if name := entry.Name(); c.Match(name) {
				list.Songs = append(list.Songs, name)
			}
		}
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.WithStack(&ListError{Op: "read", Err: err})
		}
	}

	return list, nil
}

// Resolve maps a requested tune name to a path inside the tunes directory.
// Names that are empty, contain a path separator, or are not local (such as
// ".." or an absolute path) are rejected with a *NameError.
func (c *Catalog) Resolve(name string) (string, error) {
	if strings.ContainsAny(name, `/\`) || !filepath.IsLocal(name) || name == "." {
		return "", errors.WithStack(&NameError{Name: name})
	}
	return filepath.Join(c.dir, name), nil
}

// Tune is an open tune, ready to be streamed.
type Tune interface {
	io.ReadSeekCloser
}

// Open resolves name and opens the tune for reading. A directory in place of
// the tune is reported as fs.ErrNotExist. The caller must close the tune.
func (c *Catalog) Open(name string) (Tune, fs.FileInfo, error) {
	path, err := c.Resolve(name)
	if err != nil {
		return nil, nil, err
	}

	file, err := c.fsys.Open(name)
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to open tune")
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, errors.Wrap(err, "unable to stat tune")
	}
	if info.IsDir() {
		file.Close()
		return nil, nil, errors.Wrapf(fs.ErrNotExist, "%s is a directory", path)
	}

	tune, ok := file.(Tune)
	if !ok {
		file.Close()
		return nil, nil, errors.Errorf("%s does not support seeking", path)
	}

	return tune, info, nil
}
