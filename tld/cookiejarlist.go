package tld

import (
	"fmt"
	"net/http/cookiejar"
)

type list struct{}

// List implements cookiejar.PublicSuffixList on top of the loaded rule
// set, so an http.Client's cookie jar can be configured with:
//
//	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: tld.List})
var List cookiejar.PublicSuffixList = list{}

func (list) PublicSuffix(domain string) string {
	ps, _ := PublicSuffix(domain)
	return ps
}

func (list) String() string {
	f := GetLoaded()
	if f == nil {
		return "tld: no rule file loaded"
	}
	return fmt.Sprintf("tld rule file, format version %d.%d", f.header.VersionMajor, f.header.VersionMinor)
}