package conformance

import "strings"

// Section identifies one recognized Google-style docstring section.
type Section string

const (
	SectionArgs    Section = "Args"
	SectionReturns Section = "Returns"
	SectionYields  Section = "Yields"
	SectionRaises  Section = "Raises"
	SectionWarning Section = "Warning"
	SectionNote    Section = "Note"
)

// sectionAliases maps accepted header spellings to their canonical
// section.
var sectionAliases = map[string]Section{
	"Args":     SectionArgs,
	"Returns":  SectionReturns,
	"Yields":   SectionYields,
	"Raises":   SectionRaises,
	"Warning":  SectionWarning,
	"Warnings": SectionWarning,
	"Note":     SectionNote,
	"Notes":    SectionNote,
}

// Entry is one "name: description" line beneath a section header.
type Entry struct {
	Name string
	Text string
}

// Block is a candidate documentation block parsed into the recognized
// section taxonomy. Ephemeral: it exists for one correction-loop
// iteration unless accepted.
type Block struct {
	// Raw is the unparsed block text.
	Raw string

	// Summary is the free-form text before the first section header.
	Summary string

	// Entries holds the parsed lines of each present section.
	Entries map[Section][]Entry

	present map[Section]bool
}

// Has reports whether the section header is present, even when its
// body is empty.
func (b *Block) Has(s Section) bool {
	if b == nil {
		return false
	}
	return b.present[s]
}

// Section returns the parsed entries of a section.
func (b *Block) Section(s Section) []Entry {
	if b == nil {
		return nil
	}
	return b.Entries[s]
}

// Text returns the block's raw text, empty for a nil block.
func (b *Block) Text() string {
	if b == nil {
		return ""
	}
	return b.Raw
}

// ParseBlock splits docstring text into summary and recognized
// sections. A header is a line whose trimmed content is a known
// section name followed by a colon. Entry lines are "name: text";
// continuation lines extend the previous entry.
func ParseBlock(text string) *Block {
	b := &Block{
		Raw:     text,
		Entries: make(map[Section][]Entry),
		present: make(map[Section]bool),
	}

	var summary []string
	current := Section("")

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		if sec, rest, ok := headerOf(trimmed); ok {
			current = sec
			b.present[sec] = true
			if rest != "" {
				b.addEntryLine(sec, rest)
			}
			continue
		}

		if current == "" {
			summary = append(summary, line)
			continue
		}

		if trimmed == "" {
			continue
		}

		b.addEntryLine(current, trimmed)
	}

	b.Summary = strings.TrimSpace(strings.Join(summary, "\n"))
	return b
}

// addEntryLine parses one line of section content: a "name: text" pair
// becomes a named entry, anything else continues the previous entry or
// opens an unnamed one (free text in Returns, Warning, Note).
func (b *Block) addEntryLine(sec Section, trimmed string) {
	name, rest, found := strings.Cut(trimmed, ":")
	entries := b.Entries[sec]
	if found && isEntryName(name) {
		b.Entries[sec] = append(entries, Entry{
			Name: strings.TrimSpace(name),
			Text: strings.TrimSpace(rest),
		})
		return
	}

	if len(entries) > 0 {
		entries[len(entries)-1].Text = strings.TrimSpace(entries[len(entries)-1].Text + " " + trimmed)
	} else {
		b.Entries[sec] = append(entries, Entry{Text: trimmed})
	}
}

// headerOf recognizes a section header line. Inline form
// ("Returns: the result") counts too: the trailing text becomes the
// section's first entry, matching how models often compress short
// blocks.
func headerOf(trimmed string) (Section, string, bool) {
	name, rest, found := strings.Cut(trimmed, ":")
	if !found {
		return "", "", false
	}
	sec, ok := sectionAliases[strings.TrimSpace(name)]
	if !ok {
		return "", "", false
	}
	return sec, strings.TrimSpace(rest), true
}

// isEntryName accepts identifier-like entry names, including splat
// prefixes (*args, **kwargs) and dotted exception paths.
func isEntryName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == '*', r == '.':
		default:
			return false
		}
	}
	return true
}
