package mesh

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// Source is where a parser reads its STL bytes from. Open is called once per
// parse attempt and the parser closes what it returns.
type Source interface {
	Name() string
	Open() (io.ReadCloser, error)
}

type fileSource struct {
	path string
}

// FileSource reads from a path, the solid is named after the file's base name
func FileSource(path string) Source {
	return &fileSource{path: path}
}

func (fs *fileSource) Name() string { return filepath.Base(fs.path) }

func (fs *fileSource) Open() (io.ReadCloser, error) {
	return os.Open(fs.path)
}

type bytesSource struct {
	name string
	data []byte
}

// BytesSource serves an in-memory file
func BytesSource(name string, data []byte) Source {
	return &bytesSource{name: name, data: data}
}

func (bs *bytesSource) Name() string { return bs.name }

func (bs *bytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(bs.data)), nil
}
