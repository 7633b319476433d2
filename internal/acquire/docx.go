package acquire

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
)

// docxDocumentXML is the primary .docx parser: it reads word/document.xml
// from the OOXML archive and emits paragraph text in document order. Explicit
// page breaks become form feeds so downstream segmentation keeps page
// positions.
func (a *Acquirer) docxDocumentXML(_ context.Context, path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer archive.Close()

	for _, file := range archive.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", file.Name, err)
		}
		defer rc.Close()
		return parseDocumentXML(rc)
	}
	return "", fmt.Errorf("word/document.xml not found")
}

func parseDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var b strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			switch t.Name.Local {
			case "tab":
				b.WriteByte(' ')
			case "br":
				if isPageBreak(t) {
					b.WriteByte('\f')
				} else {
					b.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				b.WriteByte('\n')
			}
		}
	}
	return b.String(), nil
}

func isPageBreak(el xml.StartElement) bool {
	for _, attr := range el.Attr {
		if attr.Name.Local == "type" && attr.Value == "page" {
			return true
		}
	}
	return false
}

// docxAllParts is the secondary .docx parser: it scrapes character data from
// every XML part under word/ (headers and footers included), the way docx2txt
// recovers text when the main document part is damaged.
func (a *Acquirer) docxAllParts(_ context.Context, path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer archive.Close()

	var names []string
	byName := map[string]*zip.File{}
	for _, file := range archive.File {
		if !strings.HasPrefix(file.Name, "word/") || !strings.HasSuffix(file.Name, ".xml") {
			continue
		}
		if strings.Contains(file.Name, "fontTable") || strings.Contains(file.Name, "styles") ||
			strings.Contains(file.Name, "settings") || strings.Contains(file.Name, "theme") {
			continue
		}
		names = append(names, file.Name)
		byName[file.Name] = file
	}
	// document.xml first, then headers/footers in name order
	sort.Slice(names, func(i, j int) bool {
		if (names[i] == "word/document.xml") != (names[j] == "word/document.xml") {
			return names[i] == "word/document.xml"
		}
		return names[i] < names[j]
	})

	var b strings.Builder
	for _, name := range names {
		rc, err := byName[name].Open()
		if err != nil {
			continue
		}
		text, perr := parseDocumentXML(rc)
		_ = rc.Close()
		if perr != nil || strings.TrimSpace(text) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(text)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no readable xml parts")
	}
	return b.String(), nil
}
