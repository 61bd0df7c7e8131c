// Package extract turns the raw source material (tagged registration
// markup and tabular renewal rows) into structured records. Parsing is
// tolerant: a malformed file is logged and skipped, never fatal to the run.
package extract

import (
	"encoding/xml"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/baberabb/cce-go/internal/cce"
)

type xmlDate struct {
	Date string `xml:"date,attr"`
	Text string `xml:",chardata"`
}

func (d xmlDate) raw() string {
	if d.Date != "" {
		return d.Date
	}
	return strings.TrimSpace(d.Text)
}

type xmlPubName struct {
	Claimant string `xml:"claimant,attr"`
	Name     string `xml:",chardata"`
}

type xmlPublisher struct {
	Names  []xmlPubName `xml:"pubName"`
	Places []string     `xml:"pubPlace"`
	Dates  []xmlDate    `xml:"pubDate"`
}

type xmlCrossRef struct {
	See struct {
		RID     string   `xml:"rid,attr"`
		Authors []string `xml:"author>authorName"`
	} `xml:"see"`
	Title   string   `xml:"title"`
	Authors []string `xml:"author>authorName"`
}

type xmlEntry struct {
	ID      string   `xml:"id,attr"`
	Regnum  string   `xml:"regnum,attr"`
	Title   string   `xml:"title"`
	Authors []string `xml:"author>authorName"`
	Notes   []string `xml:"note"`
	// Both spellings occur in the source material.
	RegDates      []xmlDate      `xml:"regDate"`
	RegDatesLower []xmlDate      `xml:"regdate"`
	Publishers    []xmlPublisher `xml:"publisher"`
	PrevRegnums   []string       `xml:"prev-regNum"`
	PrevPubs      []string       `xml:"prevPub"`
	NewMatter     []string       `xml:"newMatterClaimed"`
	Children      []xmlEntry     `xml:"additionalEntry"`
}

// RegistrationParser walks a directory tree of registration markup and
// loads every copyright entry into an arena.
type RegistrationParser struct {
	arena *cce.Arena
	xrefs []*cce.Registration
}

// NewRegistrationParser returns a parser feeding a fresh arena.
func NewRegistrationParser() *RegistrationParser {
	return &RegistrationParser{arena: cce.NewArena()}
}

// Arena returns the populated arena.
func (p *RegistrationParser) Arena() *cce.Arena {
	return p.arena
}

// ProcessDirectory parses every .xml file under root.
func (p *RegistrationParser) ProcessDirectory(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// OCR page images live under alto/; skip them.
			if d.Name() == "alto" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".xml") {
			return nil
		}
		if err := p.ProcessFile(path); err != nil {
			slog.Warn("skipping malformed registration file", "path", path, "error", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk registration tree: %w", err)
	}
	slog.Info("parsed registrations", "records", p.arena.Len())
	return nil
}

// ProcessFile parses one markup file, adding every copyrightEntry (and its
// additionalEntry children) to the arena. crossRef tags are collected so
// their title/author fragments can be attached to the records they point
// at once the whole tree is loaded.
func (p *RegistrationParser) ProcessFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return p.parse(f)
}

func (p *RegistrationParser) parse(r io.Reader) error {
	decoder := xml.NewDecoder(r)
	decoder.Strict = false
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("markup error: %w", err)
		}
		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "copyrightEntry":
			var entry xmlEntry
			if err := decoder.DecodeElement(&entry, &start); err != nil {
				return fmt.Errorf("failed to decode copyrightEntry: %w", err)
			}
			p.addEntry(&entry, "")
		case "crossRef":
			var xref xmlCrossRef
			if err := decoder.DecodeElement(&xref, &start); err != nil {
				return fmt.Errorf("failed to decode crossRef: %w", err)
			}
			p.addCrossRef(&xref)
		}
	}
	return nil
}

// addEntry converts one entry tag (and its children, recursively) into
// arena registrations. parentID is empty for top-level entries.
func (p *RegistrationParser) addEntry(entry *xmlEntry, parentID string) string {
	reg := cce.NewRegistration(entry.ID, strings.Fields(entry.Regnum))
	if reg.ID == "" {
		// Entries without an id attribute still need an arena identity.
		reg.ID = uuid.NewString()
	}
	reg.Title = strings.TrimSpace(entry.Title)
	reg.Authors = trimAll(entry.Authors)
	reg.Notes = trimAll(entry.Notes)
	reg.PreviousRegnums = trimAll(entry.PrevRegnums)
	reg.PreviousPublications = trimAll(entry.PrevPubs)
	reg.NewMatterClaimed = trimAll(entry.NewMatter)
	reg.ParentID = parentID

	for _, d := range append(entry.RegDates, entry.RegDatesLower...) {
		if raw := d.raw(); raw != "" {
			reg.RegDates = append(reg.RegDates, &cce.Date{Raw: raw})
		}
	}

	for _, pub := range entry.Publishers {
		publisher := &cce.Publisher{Places: trimAll(pub.Places)}
		for _, d := range pub.Dates {
			if raw := d.raw(); raw != "" {
				publisher.Dates = append(publisher.Dates, &cce.Date{Raw: raw})
			}
		}
		for _, name := range pub.Names {
			trimmed := strings.TrimSpace(name.Name)
			if trimmed == "" {
				continue
			}
			if name.Claimant == "yes" {
				publisher.Claimants = append(publisher.Claimants, trimmed)
			} else {
				publisher.Nonclaimants = append(publisher.Nonclaimants, trimmed)
			}
		}
		reg.Publishers = append(reg.Publishers, publisher)
	}

	p.arena.Add(reg)
	for i := range entry.Children {
		childID := p.addEntry(&entry.Children[i], reg.ID)
		reg.ChildIDs = append(reg.ChildIDs, childID)
	}
	return reg.ID
}

// addCrossRef turns a crossRef tag into a stub registration pointing at
// the record named by its see/@rid.
func (p *RegistrationParser) addCrossRef(xref *xmlCrossRef) {
	title := strings.TrimSpace(xref.Title)
	authors := trimAll(xref.Authors)
	if len(authors) == 0 {
		authors = trimAll(xref.See.Authors)
	}
	if title == "" && len(authors) == 0 {
		return
	}
	stub := cce.NewRegistration(uuid.NewString(), nil)
	stub.Title = title
	stub.Authors = authors
	p.xrefs = append(p.xrefs, &cce.Registration{ID: xref.See.RID, Xrefs: []*cce.Registration{stub}})
}

// AttachCrossRefs hangs each collected crossRef stub on the registration
// it points at. Dangling references are dropped.
func (p *RegistrationParser) AttachCrossRefs() {
	attached := 0
	for _, holder := range p.xrefs {
		target, ok := p.arena.Get(holder.ID)
		if !ok {
			continue
		}
		target.Xrefs = append(target.Xrefs, holder.Xrefs...)
		attached++
	}
	if attached > 0 {
		slog.Debug("attached cross-references", "count", attached)
	}
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}
