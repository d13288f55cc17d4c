// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestValues_OrderedAndComplete(t *testing.T) {
	t.Parallel()

	values := Values()
	if len(values) != int(ConfigLoadFailedId) {
		t.Fatalf("Values() returned %d issues, want %d", len(values), ConfigLoadFailedId)
	}
	for i, iss := range values {
		if iss.Id() != Id(i+1) {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, iss.Id(), i+1)
		}
		if strings.TrimSpace(string(iss.MarkdownMsg())) == "" {
			t.Errorf("issue %d has no guidance", iss.Id())
		}
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	if Get(EnvFileFormatId) == nil {
		t.Error("Get(EnvFileFormatId) returned nil")
	}
	if Get(0) != nil {
		t.Error("Get(0) should return nil")
	}
	if Get(ConfigLoadFailedId+1) != nil {
		t.Error("Get() past the last id should return nil")
	}
}

func TestIssue_DocLinksIsCopy(t *testing.T) {
	t.Parallel()

	iss := Get(SessionIncompleteId)
	links := iss.DocLinks()
	if len(links) == 0 {
		t.Fatal("SessionIncompleteId should carry a doc link")
	}
	links[0] = "mutated"
	if iss.DocLinks()[0] == "mutated" {
		t.Error("DocLinks() should return a copy")
	}
}

func TestIssue_Render(t *testing.T) {
	t.Parallel()

	for _, iss := range Values() {
		out, err := iss.Render(80)
		if err != nil {
			t.Errorf("issue %d failed to render: %v", iss.Id(), err)
			continue
		}
		if strings.TrimSpace(out) == "" {
			t.Errorf("issue %d rendered empty output", iss.Id())
		}
	}

	out, err := Get(PayloadInvalidId).Render(0)
	if err != nil {
		t.Fatalf("Render(0) error = %v", err)
	}
	if !strings.Contains(out, "configuration-in-snaps") {
		t.Errorf("rendered guidance should list the doc link:\n%s", out)
	}
}
