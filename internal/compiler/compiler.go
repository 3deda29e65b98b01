package compiler

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Options controls one compilation run (§4.F / cmd/tldc flags).
type Options struct {
	// SourceDir is walked for every "*.ini" rule source file.
	SourceDir string
	Log       logrus.FieldLogger
}

// Result is what a successful compilation produced.
type Result struct {
	Binary   []byte
	RuleDoc  *Document
	NumRules int
	// Offsets maps each rule's dotted name to where it landed in Binary.
	Offsets map[string]DescInfo
}

// CompileDir reads every rule source file under opts.SourceDir (sorted, for
// reproducible diagnostics), parses them into one accumulated Document,
// validates the cross-rule invariants, and emits the binary rule file.
func CompileDir(fsys afero.Fs, opts Options) (*Result, error) {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	files, err := listRuleFiles(fsys, opts.SourceDir)
	if err != nil {
		return nil, errors.Wrap(err, "listing rule source files")
	}
	if len(files) == 0 {
		return nil, errors.Errorf("no *.ini rule sources found under %q", opts.SourceDir)
	}

	parser := NewParser()
	for _, path := range files {
		log.WithField("file", path).Debug("parsing rule source")
		src, err := afero.ReadFile(fsys, path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", path)
		}
		if err := parser.ParseFile(path, src); err != nil {
			return nil, errors.Wrapf(err, "parsing %s", path)
		}
	}

	if err := parser.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating rule set")
	}

	doc := parser.Finish()
	log.WithField("rules", len(doc.Rules)).Info("parsed rule set")

	bin, offsets, err := EmitWithOffsets(doc.Rules)
	if err != nil {
		return nil, errors.Wrap(err, "emitting binary rule file")
	}

	return &Result{Binary: bin, RuleDoc: doc, NumRules: len(doc.Rules), Offsets: offsets}, nil
}

// listRuleFiles walks dir for every "*.ini" file, returning paths in sorted
// order so a compile is deterministic regardless of directory iteration
// order (§9 idempotence).
func listRuleFiles(fsys afero.Fs, dir string) ([]string, error) {
	var out []string
	err := afero.Walk(fsys, dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if filepath.Ext(path) != ".ini" {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// VerifyRoundTrip spot-checks, through lookupFn, that every leaf rule's own
// name still resolves to itself when probed as "host.<name>", catching an
// emitter bug before it ever reaches disk (cmd/tldc's --verify flag).
// Wildcard and exception rules are not probed. It does not load bin itself:
// the caller makes bin the loaded rule set that lookupFn consults.
func VerifyRoundTrip(bin []byte, doc *Document, lookupFn func(domain string) (ok bool, tld string)) error {
	parents := make(map[string]bool)
	for _, r := range doc.Rules {
		if pn, ok := r.ParentName(); ok {
			parents[pn] = true
		}
	}
	for _, r := range doc.Rules {
		if r.IsException() {
			continue
		}
		name := r.Name()
		if r.IsWildcard() {
			continue // a bare wildcard has no domain of its own to probe
		}
		if parents[name] {
			continue // only leaf rules are probed
		}
		ok, suffix := lookupFn("host." + name)
		if !ok {
			return fmt.Errorf("round-trip check failed: %q did not resolve after compiling", name)
		}
		if suffix != name {
			return fmt.Errorf("round-trip check failed: %q resolved to suffix %q", name, suffix)
		}
	}
	return nil
}