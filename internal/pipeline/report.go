package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"docsmith/internal/correction"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	fileStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	summaryStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)
)

// Report aggregates per-file results for a run. Methods are safe for
// concurrent use; the runner adds files from multiple goroutines.
type Report struct {
	mu      sync.Mutex
	root    string
	files   []*FileResult
	errors  map[string]error
	skipped int
}

func NewReport(root string) *Report {
	return &Report{root: root, errors: make(map[string]error)}
}

func (r *Report) AddFile(res *FileResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files = append(r.files, res)
	r.skipped += res.Skipped
}

func (r *Report) AddError(path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors[path] = err
}

// Counts returns totals per terminal status plus the number of
// declarations skipped because they were already documented.
func (r *Report) Counts() (accepted, exhausted, failed, skipped int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.files {
		for _, o := range f.Outcomes {
			switch o.Status {
			case correction.StatusAccepted:
				accepted++
			case correction.StatusExhausted:
				exhausted++
			case correction.StatusTransportFailed:
				failed++
			}
		}
	}
	return accepted, exhausted, failed, r.skipped
}

// Render produces the styled terminal report.
func (r *Report) Render() string {
	r.mu.Lock()
	files := make([]*FileResult, len(r.files))
	copy(files, r.files)
	errPaths := make([]string, 0, len(r.errors))
	for p := range r.errors {
		errPaths = append(errPaths, p)
	}
	r.mu.Unlock()

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	sort.Strings(errPaths)

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("docsmith: %s", r.root)))
	b.WriteString("\n")

	for _, f := range files {
		if len(f.Outcomes) == 0 {
			continue
		}
		b.WriteString(fileStyle.Render(f.Path))
		b.WriteString("\n")
		for _, o := range f.Outcomes {
			b.WriteString("  ")
			b.WriteString(renderOutcome(o))
			b.WriteString("\n")
		}
	}

	for _, p := range errPaths {
		r.mu.Lock()
		err := r.errors[p]
		r.mu.Unlock()
		b.WriteString(failStyle.Render(fmt.Sprintf("  %s: %v", p, err)))
		b.WriteString("\n")
	}

	accepted, exhausted, failed, skipped := r.Counts()
	b.WriteString(summaryStyle.Render(fmt.Sprintf(
		"%d documented, %d with warnings, %d failed, %d already documented",
		accepted, exhausted, failed, skipped)))
	b.WriteString("\n")
	return b.String()
}

func renderOutcome(o correction.Outcome) string {
	name := o.Declaration.QualifiedName
	switch o.Status {
	case correction.StatusAccepted:
		if o.Corrections > 0 {
			return okStyle.Render(fmt.Sprintf("✓ %s (after %d correction(s))", name, o.Corrections))
		}
		return okStyle.Render("✓ " + name)
	case correction.StatusExhausted:
		return warnStyle.Render(fmt.Sprintf("! %s (%d unresolved issue(s))", name, len(o.RemainingViolations)))
	case correction.StatusTransportFailed:
		return failStyle.Render(fmt.Sprintf("✗ %s (provider error: %v)", name, o.Err))
	default:
		return name
	}
}
