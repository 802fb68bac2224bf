package images

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// allowed upload formats; anything else is rejected before touching the disk
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

var (
	ErrBadFilename = errors.New("missing or invalid image filename")
	ErrBadFormat   = errors.New("unsupported image format")
)

type Storage struct {
	Logger logrus.FieldLogger
	Path   string
}

func New(logger logrus.FieldLogger, path string) (storage Storage, err error) {
	storage.Logger = logger
	logger.Println("initialising images store")

	// attempt to create an images directory if it doesn't exist
	if err = os.MkdirAll(path, 0750); err != nil {
		return storage, err
	}

	storage.Path = path
	return storage, nil
}

// SanitiseFilename strips directory components and whitespace from a client
// supplied filename and verifies its extension, so the result is safe to join
// with the uploads directory.
func SanitiseFilename(filename string) (string, error) {
	var name = filepath.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\") {
		return "", ErrBadFilename
	}
	name = strings.ReplaceAll(name, " ", "_")
	if !allowedExtensions[strings.ToLower(filepath.Ext(name))] {
		return "", ErrBadFormat
	}
	return name, nil
}

// Save streams the uploaded contents to a sanitised filename within the store
// and returns the name under which the image can be later referenced. An
// existing image stored under the same name is overwritten; a failed write
// leaves no partial file behind to be served later.
func (s Storage) Save(filename string, contents io.Reader) (string, error) {
	name, err := SanitiseFilename(filename)
	if err != nil {
		return "", err
	}

	var path = filepath.Join(s.Path, name)
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}

	if _, err = io.Copy(file, contents); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return "", err
	}
	return name, file.Close()
}

// Remove deletes a previously stored image; a missing file isn't an error, as
// recipe deletion must succeed regardless of earlier cleanup.
func (s Storage) Remove(filename string) error {
	name, err := SanitiseFilename(filename)
	if err != nil {
		return err
	}
	if err = os.Remove(filepath.Join(s.Path, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
