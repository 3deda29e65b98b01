// Command tldvalidate checks whether a domain (or a list of domains) has a
// valid public suffix, and optionally validates URIs/email address lists
// against the same loaded rule set.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/globalsign/tldrules/tld"
)

var (
	rulesPath string
	listFile  string
	verbose   bool
	checkURI  bool
	emailList bool
	schemes   string
	asciiOnly bool
	noSpaces  bool
)

func main() {
	root := &cobra.Command{
		Use:   "tldvalidate [domain...]",
		Short: "Validate domains, URIs, or email address lists against a compiled rule file",
		RunE:  run,
	}
	root.Flags().StringVar(&rulesPath, "rules", "", "path to a compiled .tld rule file (default: system/embedded)")
	root.Flags().StringVar(&listFile, "list", "", "read newline-separated inputs from this file instead of argv")
	root.Flags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	root.Flags().BoolVar(&checkURI, "uri", false, "treat each input as a URI, not a bare domain")
	root.Flags().BoolVar(&emailList, "emails", false, "treat each input as an RFC 5322 address list")
	root.Flags().StringVar(&schemes, "schemes", "", "comma-separated scheme whitelist for --uri (empty allows any)")
	root.Flags().BoolVar(&asciiOnly, "ascii-only", false, "with --uri, refuse any non-ASCII byte (raw or percent-encoded)")
	root.Flags().BoolVar(&noSpaces, "no-spaces", false, "with --uri, refuse a space in the path/query/fragment")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log := logrus.New()
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if _, err := tld.Load(rulesPath, true); err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}

	inputs := args
	if listFile != "" {
		f, err := os.Open(listFile)
		if err != nil {
			return fmt.Errorf("opening %s: %w", listFile, err)
		}
		defer f.Close()
		scanner := bufio.NewScanner(f)
		inputs = nil
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				inputs = append(inputs, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return err
		}
	}

	bad := 0
	for _, in := range inputs {
		ok, detail := validateOne(in)
		status := "OK"
		if !ok {
			status = "INVALID"
			bad++
		}
		fmt.Printf("%s\t%s\t%s\n", status, in, detail)
	}
	if bad > 0 {
		return fmt.Errorf("%d of %d inputs invalid", bad, len(inputs))
	}
	return nil
}

func validateOne(in string) (bool, string) {
	switch {
	case emailList:
		res, addrs := tld.LookupEmailList(in)
		return res == tld.Success, fmt.Sprintf("%s (%d addresses)", res, len(addrs))
	case checkURI:
		res, info := tld.LookupURI(in, schemesList(), uriFlags())
		return res == tld.Success, info.TLD
	default:
		lowered, _ := tld.Lowercase(in)
		res, info := tld.Lookup(lowered)
		return res == tld.Success, fmt.Sprintf("status=%s tld=%s", tld.StatusToString(info.Status), info.TLD)
	}
}

func schemesList() []string {
	if schemes == "" {
		return nil
	}
	return strings.Split(schemes, ",")
}

func uriFlags() tld.URIFlags {
	var flags tld.URIFlags
	if asciiOnly {
		flags |= tld.URIASCIIOnly
	}
	if noSpaces {
		flags |= tld.URINoSpaces
	}
	return flags
}