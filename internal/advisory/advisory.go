// Package advisory holds the static description and study suggestions shown
// for each predicted learning style.
package advisory

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gayabelajar-api/internal/common"

	"gopkg.in/yaml.v3"
)

// Learning style labels produced by the shipped classifier.
const (
	LabelFastLearner = "Fast Learner"
	LabelReflective  = "Reflective"
	LabelConsistent  = "Consistent"
)

// Advisory is the text attached to one label.
type Advisory struct {
	Description string   `yaml:"deskripsi" json:"deskripsi"`
	Suggestions []string `yaml:"saran" json:"saran"`
}

// Table maps labels to advisories. It is read-only once built.
type Table struct {
	entries map[string]Advisory
}

// Fallback is returned for labels the table does not know.
var Fallback = Advisory{
	Description: common.FallbackAdvisoryText,
	Suggestions: []string{},
}

// Default returns the built-in table.
func Default() *Table {
	return New(map[string]Advisory{
		LabelFastLearner: {
			Description: "Kamu cepat memahami konsep baru dan belajar dengan efisien.",
			Suggestions: []string{
				"Ambil tantangan coding level Advanced agar tidak bosan setelah menyelesaikan modul.",
				"Luangkan waktu untuk meninjau detail kecil yang mungkin terlewat karena proses belajar yang cepat.",
				"Gunakan sesi belajar singkat sekitar 25 menit untuk menjaga fokus dan konsentrasi.",
			},
		},
		LabelReflective: {
			Description: "Kamu butuh waktu merenung untuk paham mendalam. Kualitas adalah kuncimu.",
			Suggestions: []string{
				"Jangan terburu-buru, pastikan kamu memahami konsepnya sampai benar-benar jelas.",
				"Cobalah menulis rangkuman singkat dari materi yang dipelajari untuk mengecek pemahamanmu.",
				"Diskusikan materi di forum untuk perspektif serta pemahaman baru.",
			},
		},
		LabelConsistent: {
			Description: "Kamu disiplin dan punya rutinitas stabil.",
			Suggestions: []string{
				"Tetap jaga ritme belajarmu, pertahankan, konsistensi berharga.",
				"Tambahkan durasi belajar sekitar 10 menit secara bertahap untuk meningkatkan kapasitasmu.",
				"Sesekali eksplorasi topik baru agar rutinitas belajar tetap terasa segar dan menarik.",
			},
		},
	})
}

// New copies entries into a new table so later changes to the map are not visible.
func New(entries map[string]Advisory) *Table {
	t := &Table{entries: make(map[string]Advisory, len(entries))}
	for label, a := range entries {
		t.entries[label] = cloneAdvisory(a)
	}
	return t
}

// Lookup returns the advisory for label, or Fallback when the label is unknown.
// The returned suggestions slice is a copy.
func (t *Table) Lookup(label string) Advisory {
	if t != nil {
		if a, ok := t.entries[label]; ok {
			return cloneAdvisory(a)
		}
	}
	return cloneAdvisory(Fallback)
}

// Has reports whether label has its own entry.
func (t *Table) Has(label string) bool {
	if t == nil {
		return false
	}
	_, ok := t.entries[label]
	return ok
}

// Labels returns the known labels sorted alphabetically.
func (t *Table) Labels() []string {
	if t == nil {
		return nil
	}
	labels := make([]string, 0, len(t.entries))
	for label := range t.entries {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// LoadFile reads a YAML document of the form
//
//	Fast Learner:
//	  deskripsi: "..."
//	  saran: ["...", "..."]
//
// and returns it as a table.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read advisory file %s: %w", path, err)
	}

	var entries map[string]Advisory
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse advisory file: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("advisory file %s has no entries", path)
	}
	for label, a := range entries {
		if strings.TrimSpace(label) == "" {
			return nil, fmt.Errorf("advisory file %s: empty label", path)
		}
		if strings.TrimSpace(a.Description) == "" {
			return nil, fmt.Errorf("advisory %q: deskripsi is required", label)
		}
	}
	return New(entries), nil
}

func cloneAdvisory(a Advisory) Advisory {
	s := make([]string, len(a.Suggestions))
	copy(s, a.Suggestions)
	return Advisory{Description: a.Description, Suggestions: s}
}
