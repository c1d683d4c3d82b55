// Package qti turns IMS QTI content packages into answer-key documents.
package qti

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
)

var ErrNoManifest = errors.New("qti: imsmanifest.xml not found")

const maxItemSize = 2 << 20

type Manifest struct {
	Resources []Resource
}

type Resource struct {
	Identifier string
	Href       string
	Type       string
	Files      []string
}

type imsManifest struct {
	XMLName   xml.Name      `xml:"manifest"`
	Resources []imsResource `xml:"resources>resource"`
}

type imsResource struct {
	Identifier string    `xml:"identifier,attr"`
	Href       string    `xml:"href,attr"`
	Type       string    `xml:"type,attr"`
	Files      []imsFile `xml:"file"`
}

type imsFile struct {
	Href string `xml:"href,attr"`
}

// ParseManifest decodes imsmanifest.xml and returns the item hrefs in
// manifest order.
func ParseManifest(data []byte) (Manifest, []string, error) {
	var mf imsManifest
	if err := xml.Unmarshal(data, &mf); err != nil {
		return Manifest{}, nil, err
	}
	var out Manifest
	var items []string
	for _, r := range mf.Resources {
		res := Resource{Identifier: r.Identifier, Href: r.Href, Type: r.Type}
		for _, f := range r.Files {
			res.Files = append(res.Files, f.Href)
		}
		out.Resources = append(out.Resources, res)
		href := strings.ToLower(r.Href)
		if strings.HasSuffix(href, ".xml") && !strings.Contains(href, "manifest") {
			items = append(items, r.Href)
		}
	}
	return out, items, nil
}

// ReadPackage reads a zipped content package in memory and parses every
// item its manifest lists. Nothing is written to disk.
func ReadPackage(r io.ReaderAt, size int64) ([]Item, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("qti: %w", err)
	}
	mfPath := ""
	for _, f := range zr.File {
		switch strings.ToLower(path.Base(f.Name)) {
		case "imsmanifest.xml", "manifest.xml":
			if mfPath == "" || len(f.Name) < len(mfPath) {
				mfPath = f.Name
			}
		}
	}
	if mfPath == "" {
		return nil, ErrNoManifest
	}
	mfData, err := readLimited(zr, mfPath)
	if err != nil {
		return nil, err
	}
	_, hrefs, err := ParseManifest(mfData)
	if err != nil {
		return nil, fmt.Errorf("qti: manifest: %w", err)
	}

	base := path.Dir(mfPath)
	items := make([]Item, 0, len(hrefs))
	for _, href := range hrefs {
		name := path.Clean(path.Join(base, href))
		if !fs.ValidPath(name) {
			return nil, fmt.Errorf("qti: item path %q escapes the package", href)
		}
		data, err := readLimited(zr, name)
		if err != nil {
			return nil, err
		}
		it, err := ParseItem(data)
		if err != nil {
			return nil, fmt.Errorf("qti: item %s: %w", href, err)
		}
		items = append(items, it)
	}
	return items, nil
}

func readLimited(fsys fs.FS, name string) ([]byte, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("qti: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxItemSize+1))
	if err != nil {
		return nil, fmt.Errorf("qti: %s: %w", name, err)
	}
	if len(data) > maxItemSize {
		return nil, fmt.Errorf("qti: %s exceeds %d bytes", name, maxItemSize)
	}
	return data, nil
}
