package xl

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Storage receives the assembled parts of a package, one blob per part name.
type Storage interface {
	WriteBlob(path string, blob []byte) error
}

// DirStorage lays the parts out as plain files under Dir, which makes the
// generated XML easy to inspect.
type DirStorage struct {
	Dir string
}

func NewDirStorage(dir string) *DirStorage {
	return &DirStorage{Dir: dir}
}

// WriteBlob stores one part, creating intermediate directories as needed.
func (ds *DirStorage) WriteBlob(path string, blob []byte) error {
	fn := filepath.Join(ds.Dir, filepath.FromSlash(strings.TrimPrefix(path, "/")))
	if err := os.MkdirAll(filepath.Dir(fn), 0o777); err != nil {
		return err
	}
	return os.WriteFile(fn, blob, 0o666)
}

// ZipStorage packs the parts into a zip archive, i.e. an .xlsx file.
// Close must be called once every part was written.
type ZipStorage struct {
	z *zip.Writer
}

func NewZipStorage(out io.Writer) *ZipStorage {
	return &ZipStorage{z: zip.NewWriter(out)}
}

func (zs *ZipStorage) WriteBlob(path string, blob []byte) error {
	f, err := zs.z.Create(strings.TrimPrefix(path, "/"))
	if err != nil {
		return err
	}
	_, err = f.Write(blob)
	return err
}

// Close writes the zip central directory. It does not close the underlying
// writer.
func (zs *ZipStorage) Close() error {
	return zs.z.Close()
}

// SaveFile writes wb as an .xlsx file. The package goes to a temporary file
// next to filename which is renamed into place once complete; on failure the
// temporary file is removed and filename is left as it was.
func SaveFile(wb *Workbook, filename string) (err error) {
	f, err := os.CreateTemp(filepath.Dir(filename), ".~"+filepath.Base(filename)+"-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	zs := NewZipStorage(f)
	if err = NewWriter(zs).Write(wb); err != nil {
		return err
	}
	if err = zs.Close(); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), filename)
}
