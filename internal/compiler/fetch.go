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

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// SourceRetriever is the interface for fetching one rule-source file,
// mirroring the old PSL .dat retriever this is adapted from: a release tag
// plus a reader of the file's raw content.
type SourceRetriever interface {
	GetLatestReleaseTag() (string, error)
	GetSource(release string) (io.Reader, error)
}

// gitHubSourceRetriever fetches one file from a GitHub repository, as it
// stood at the latest commit that touched it, the same shape as the
// upstream publicsuffix.org list update flow. The content is returned raw;
// nothing is unpacked.
type gitHubSourceRetriever struct {
	client  *http.Client
	owner   string
	repo    string
	tarPath string // path within the repo to the rule-source file
}

type releaseInfo struct {
	SHA string `json:"sha"`
}

// NewGitHubSourceRetriever creates a SourceRetriever against owner/repo's
// commit history for tarPath, using client (or http.DefaultClient if nil).
func NewGitHubSourceRetriever(client *http.Client, owner, repo, tarPath string) SourceRetriever {
	return gitHubSourceRetriever{client: client, owner: owner, repo: repo, tarPath: tarPath}
}

func (gh gitHubSourceRetriever) httpClient() *http.Client {
	if gh.client != nil {
		return gh.client
	}
	return http.DefaultClient
}

func (gh gitHubSourceRetriever) GetLatestReleaseTag() (string, error) {
	url := fmt.Sprintf("https://api.github.com/repos/%s/%s/commits?path=%s", gh.owner, gh.repo, gh.tarPath)
	res, err := gh.httpClient().Get(url)
	if err != nil {
		return "", fmt.Errorf("error while retrieving last release information from github: %s", err.Error())
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("error GET %s: status %d", url, res.StatusCode)
	}

	var releases []releaseInfo
	if err := json.NewDecoder(res.Body).Decode(&releases); err != nil {
		return "", fmt.Errorf("error decoding release info: %s", err.Error())
	}
	if len(releases) == 0 || releases[0].SHA == "" {
		return "", errors.New("no release info found from github")
	}
	return releases[0].SHA, nil
}

func (gh gitHubSourceRetriever) GetSource(release string) (io.Reader, error) {
	url := fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/%s", gh.owner, gh.repo, release, gh.tarPath)
	res, err := gh.httpClient().Get(url)
	if err != nil {
		return nil, fmt.Errorf("error while retrieving rule source release %s: %s", release, err.Error())
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error GET %s: status %d", url, res.StatusCode)
	}

	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, res.Body); err != nil {
		return nil, err
	}
	return buf, nil
}