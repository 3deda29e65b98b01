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

package compiler

import "io"

// mockSourceRetriever implements SourceRetriever for tests.
type mockSourceRetriever struct {
	Release string
	Source  io.Reader
	Err     error
}

func (m mockSourceRetriever) GetLatestReleaseTag() (string, error) {
	return m.Release, m.Err
}

func (m mockSourceRetriever) GetSource(release string) (io.Reader, error) {
	return m.Source, m.Err
}