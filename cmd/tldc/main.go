// Command tldc compiles human-edited TLD rule source files into the
// compact binary format the tld package loads at runtime.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/globalsign/tldrules/internal/compiler"
	"github.com/globalsign/tldrules/tld"
)

var (
	sourceDir      string
	outPath        string
	verbose        bool
	verify         bool
	outputJSON     bool
	includeOffsets bool
	update         bool
	updateOwner    string
	updateRepo     string
	updatePath     string
)

func main() {
	root := &cobra.Command{
		Use:     "tldc",
		Short:   "Compile TLD rule sources into a binary rule file",
		Version: "0.1.0",
		RunE:    run,
	}
	root.Flags().StringVar(&sourceDir, "source", "", "directory of *.ini rule source files (required)")
	root.Flags().StringVar(&outPath, "output", "", "path to write the compiled .tld file (required)")
	root.Flags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	root.Flags().BoolVar(&verify, "verify", true, "load the emitted file back and spot-check every leaf rule resolves")
	root.Flags().BoolVar(&outputJSON, "output-json", false, "print a JSON compilation summary to stdout")
	root.Flags().BoolVar(&includeOffsets, "include-offsets", false, "include each rule's start_offset, end_offset and tld_string_id in --output-json")
	root.Flags().BoolVar(&update, "update", false, "fetch the latest rule source from GitHub into --source before compiling")
	root.Flags().StringVar(&updateOwner, "update-owner", "publicsuffix", "GitHub owner to fetch the rule source from")
	root.Flags().StringVar(&updateRepo, "update-repo", "list", "GitHub repository to fetch the rule source from")
	root.Flags().StringVar(&updatePath, "update-path", "public_suffix_list.dat", "path within --update-repo to fetch")
	root.MarkFlagRequired("source")
	root.MarkFlagRequired("output")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log := logrus.New()
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	fsys := afero.NewOsFs()

	if update {
		if err := fetchLatestSource(fsys, log); err != nil {
			return fmt.Errorf("update: %w", err)
		}
	}

	result, err := compiler.CompileDir(fsys, compiler.Options{SourceDir: sourceDir, Log: log})
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}

	if len(result.Binary) > tld.MaxFileSize {
		return fmt.Errorf("compiled file is %d bytes, over the %d byte cap", len(result.Binary), tld.MaxFileSize)
	}

	if verify {
		if err := verifyCompiled(result); err != nil {
			return fmt.Errorf("verify: %w", err)
		}
	}

	if err := afero.WriteFile(fsys, outPath, result.Binary, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}

	log.WithField("rules", result.NumRules).
		WithField("bytes", len(result.Binary)).
		WithField("output", outPath).
		Info("compiled rule file")

	if outputJSON {
		return printSummary(result)
	}
	return nil
}

// fetchLatestSource pulls the newest rule source from GitHub and writes it
// into sourceDir under the base name of --update-path. The compile step
// below reads only *.ini files, so it picks the fetched file up only when
// that name ends in ".ini"; the default public_suffix_list.dat is not read.
func fetchLatestSource(fsys afero.Fs, log logrus.FieldLogger) error {
	sr := compiler.NewGitHubSourceRetriever(http.DefaultClient, updateOwner, updateRepo, updatePath)

	tag, err := sr.GetLatestReleaseTag()
	if err != nil {
		return fmt.Errorf("resolving latest release: %w", err)
	}
	log.WithField("release", tag).Info("fetched latest rule source release tag")

	r, err := sr.GetSource(tag)
	if err != nil {
		return fmt.Errorf("fetching release %s: %w", tag, err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading fetched release: %w", err)
	}

	dest := filepath.Join(sourceDir, filepath.Base(updatePath))
	if err := afero.WriteFile(fsys, dest, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}

// ruleRecord is one entry of the --output-json array: one compiled rule,
// with its DESC placement filled in only when --include-offsets is set.
type ruleRecord struct {
	Name     string            `json:"name"`
	Status   string            `json:"status"`
	Category string            `json:"category,omitempty"`
	Country  string            `json:"country,omitempty"`
	Tags     map[string]string `json:"tags,omitempty"`

	StartOffset *uint16 `json:"start_offset,omitempty"`
	EndOffset   *uint16 `json:"end_offset,omitempty"`
	TLDStringID *uint16 `json:"tld_string_id,omitempty"`
}

// summary is the shape printed by --output-json: the overall compile result
// plus one ruleRecord per parsed rule.
type summary struct {
	Rules  int          `json:"rules"`
	Bytes  int          `json:"bytes"`
	Output string       `json:"output"`
	Rule   []ruleRecord `json:"rule"`
}

func printSummary(result *compiler.Result) error {
	s := summary{Rules: result.NumRules, Bytes: len(result.Binary), Output: outPath}
	for _, r := range result.RuleDoc.Rules {
		rec := ruleRecord{Name: r.Name(), Status: tld.StatusToString(r.Status())}
		if v, ok := r.Tag("category"); ok {
			rec.Category = v
		}
		if v, ok := r.Tag("country"); ok {
			rec.Country = v
		}
		if tags := r.Tags(); len(tags) > 0 {
			rec.Tags = make(map[string]string, len(tags))
			for _, name := range tags {
				rec.Tags[name] = r.TagValue(name)
			}
		}
		if includeOffsets {
			if info, ok := result.Offsets[r.Name()]; ok {
				rec.StartOffset, rec.EndOffset, rec.TLDStringID = &info.StartOffset, &info.EndOffset, &info.TLDStringID
			}
		}
		s.Rule = append(s.Rule, rec)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// verifyCompiled loads the just-emitted binary into the process-wide slot
// by round-tripping it through tld.LoadReader, and frees it again once
// done - cmd/tldc must not leave process-wide state behind for a library
// caller that happens to link it in. tldc never has anything loaded before
// this point, so there is nothing to restore.
func verifyCompiled(result *compiler.Result) error {
	defer tld.FreeLoaded()

	if _, err := tld.LoadReader(bytes.NewReader(result.Binary)); err != nil {
		return err
	}

	return compiler.VerifyRoundTrip(result.Binary, result.RuleDoc, func(domain string) (bool, string) {
		lowered, _ := tld.Lowercase(domain)
		res, info := tld.Lookup(lowered)
		return res == tld.Success, info.TLD
	})
}
