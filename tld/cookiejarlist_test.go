/*
Copyright 2018 GMO GlobalSign Ltd

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package tld_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/globalsign/tldrules/tld"
)

func TestList_PublicSuffix(t *testing.T) {
	loadTestRules(t)
	for _, tc := range publicSuffixTestCases {
		got := tld.List.PublicSuffix(tc.domain)
		assert.Equal(t, tc.want, got, "domain %q", tc.domain)
	}
}

func TestList_String(t *testing.T) {
	tld.FreeLoaded()
	assert.Equal(t, "tld: no rule file loaded", tld.List.String())

	loadTestRules(t)
	want := fmt.Sprintf("tld rule file, format version %d.%d", tld.VersionMajor, tld.VersionMinor)
	assert.Equal(t, want, tld.List.String())
}
