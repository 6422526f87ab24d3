package pkgver

import (
	"fmt"
	"net/mail"

	"github.com/go-git/go-billy/v5"
)

// MetadataFiles are the packaged metadata files checked, in order: PKG-INFO
// in source distributions, METADATA in installed wheels.
var MetadataFiles = []string{"PKG-INFO", "METADATA"}

// ReadPackageMetadata returns the Version header of the first readable
// metadata file on fs whose Name header equals packageName. It returns false
// when no such file exists; unreadable or malformed files are skipped.
func ReadPackageMetadata(fs billy.Filesystem, packageName string) (string, bool) {
	for _, name := range MetadataFiles {
		header, err := readMetadataHeader(fs, name)
		if err != nil {
			continue
		}
		if header.Get("Name") != packageName {
			continue
		}
		if version := header.Get("Version"); version != "" {
			return version, true
		}
	}
	return "", false
}

func readMetadataHeader(fs billy.Filesystem, name string) (mail.Header, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	msg, err := mail.ReadMessage(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	return msg.Header, nil
}
