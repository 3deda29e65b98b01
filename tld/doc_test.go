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

	"github.com/globalsign/tldrules/tld"
)

func Example() {
	// With no compiled rule file on disk, Load falls back to the small
	// rule set built into the library.
	if _, err := tld.Load("", true); err != nil {
		panic(err.Error())
	}
	defer tld.FreeLoaded()

	if tld.HasPublicSuffix("example.co.uk") {
		fmt.Println("example.co.uk has a known public suffix")
	}

	suffix, valid := tld.PublicSuffix("another.example.co.uk")
	fmt.Printf("suffix: %s, valid: %v\n", suffix, valid)

	// Output:
	// example.co.uk has a known public suffix
	// suffix: co.uk, valid: true
}
