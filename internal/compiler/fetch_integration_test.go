//go:build integration

package compiler

import (
	"net/http"
	"testing"
)

func TestGitHubSourceRetriever(t *testing.T) {
	var client *http.Client = http.DefaultClient
	sr := NewGitHubSourceRetriever(client, "publicsuffix", "list", "public_suffix_list.dat")
	if gh, ok := sr.(gitHubSourceRetriever); !ok || gh.client != client {
		t.Fatalf("didn't get expected github source retriever, got %+#v", sr)
	}

	tag, err := sr.GetLatestReleaseTag()
	if err != nil {
		t.Fatalf("GetLatestReleaseTag() got err %v, want nil", err)
	}

	_, err = sr.GetSource(tag)
	if err != nil {
		t.Fatalf("GetSource(tag) got err %v, want nil", err)
	}
}
