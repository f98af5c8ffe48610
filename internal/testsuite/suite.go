package testsuite

import (
	"fmt"
	"os"
	"path/filepath"
)

// TestSuite is the ordered, de-duplicated list of TestCases spec.md §4.7
// describes: Add discards a case whose (initial-state, input-sequence)
// key already appears.
type TestSuite struct {
	Cases []*TestCase
	seen  map[string]bool
}

func NewTestSuite() *TestSuite {
	return &TestSuite{seen: map[string]bool{}}
}

// Add appends tc unless an equal-keyed case is already present, reporting
// whether it was actually added.
func (ts *TestSuite) Add(tc *TestCase) bool {
	if ts.seen == nil {
		ts.seen = map[string]bool{}
	}
	key := tc.Key()
	if ts.seen[key] {
		return false
	}
	ts.seen[key] = true
	ts.Cases = append(ts.Cases, tc)
	return true
}

// WriteDir writes one test_case_<i>.xml file per case into dir (spec.md
// §6.2: "A test suite is a directory containing test_case_<i>.xml files").
func (ts *TestSuite) WriteDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for i, tc := range ts.Cases {
		data, err := tc.ToXML()
		if err != nil {
			return err
		}
		path := filepath.Join(dir, fmt.Sprintf("test_case_%d.xml", i))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// ReadDir loads every test_case_*.xml file in dir into a TestSuite, in
// filename order.
func ReadDir(dir string) (*TestSuite, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	ts := NewTestSuite()
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, ent.Name()))
		if err != nil {
			return nil, err
		}
		tc, err := FromXML(data)
		if err != nil {
			return nil, fmt.Errorf("testsuite: parsing %s: %w", ent.Name(), err)
		}
		ts.Add(tc)
	}
	return ts, nil
}
