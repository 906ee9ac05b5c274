package test

import (
	"embed"
	"io/fs"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed cases
var casesFS embed.FS

// Epoch is the time claim offsets are measured from.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type TestCase struct {
	// Description is a simple description for the test case.
	Description string
	// Axioms initializes every institute before the claims are made.
	Axioms bool
	// Claims are appended to the ledger in order.
	Claims []Claim
	// Revisions are universe revisions to check after all claims are made.
	Revisions []Revision
	// History are object claim queries to check after all claims are made.
	History []History
}

type Claim struct {
	// Exists is true for an existence claim and false for a non-existence claim.
	Exists bool
	// Object is the claimed object.
	Object map[string]any
	// At is the made_at time in seconds after Epoch.
	At int
}

type Revision struct {
	// At is the revision time in seconds after Epoch.
	At int
	// Expect are the objects in the revision.
	Expect []map[string]any
}

type History struct {
	// Where is the filter applied to claimed objects.
	Where map[string]any
	// From is the optional start of the period in seconds after Epoch.
	From *int
	// To is the end of the period in seconds after Epoch.
	To int
	// Expect are the made_at offsets of the matching claims in order.
	Expect []int
}

// Time returns the time offset seconds after Epoch.
func Time(offset int) time.Time {
	return Epoch.Add(time.Duration(offset) * time.Second)
}

// TestCasePaths returns a list of all test case file paths.
func TestCasePaths() (paths []string, _ error) {
	return paths, fs.WalkDir(casesFS, "cases", func(path string, d fs.DirEntry, err error) error {
		if filepath.Ext(path) == ".yaml" {
			paths = append(paths, path)
		}
		return err
	})
}

// LoadTestCase loads and parses a test case file.
func LoadTestCase(path string) (*TestCase, error) {
	data, err := fs.ReadFile(casesFS, path)
	if err != nil {
		return nil, err
	}
	var testCase TestCase
	if err := yaml.Unmarshal(data, &testCase); err != nil {
		return nil, err
	}
	return &testCase, nil
}
