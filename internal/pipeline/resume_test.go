package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/KATBlackCoder/Translate-AI-sub001/internal/engine"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/files"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/rpgmv"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/session"
)

func partialRun(t *testing.T, root string) Result {
	t.Helper()
	cfg := baseConfig(t, root, &echoClient{prefix: "EN:", failRegister: engine.PromptNote})
	res, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("partial run: %v", err)
	}
	if res.Status != StatusPartialSuccess || res.SessionPath == "" {
		t.Fatalf("partial run result: %+v", res)
	}
	return res
}

func resumeConfig(client *echoClient) ResumeConfig {
	return ResumeConfig{
		Registry: engine.NewRegistry(rpgmv.Builders(files.Disk{})),
		Client:   client,
		NoMemory: true,
	}
}

func TestResumeCompletesFailedUnits(t *testing.T) {
	root := writeFixtureProject(t)
	first := partialRun(t, root)

	client := &echoClient{prefix: "EN:"}
	res, err := Resume(context.Background(), first.SessionPath, resumeConfig(client))
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if res.Status != StatusSuccess {
		t.Fatalf("status = %s", res.Status)
	}
	if res.TotalUnits != 1 {
		t.Errorf("resume should only process the failed unit, got %d", res.TotalUnits)
	}

	// The note is now translated and the earlier successes survive.
	actors := readRecords(t, filepath.Join(first.OutputRoot, "www", "data", "Actors.json"))
	if got := recordField(t, actors, 1, "note"); got != `EN:\V[1]を参照` {
		t.Errorf("note = %q", got)
	}
	if got := recordField(t, actors, 1, "name"); got != "EN:ハロルド" {
		t.Errorf("name = %q", got)
	}

	// Completed sessions clean up their log.
	if _, err := os.Stat(first.SessionPath); !os.IsNotExist(err) {
		t.Errorf("session log should be removed, stat err = %v", err)
	}
}

func TestResumeOnlyDispatchesFailedUnits(t *testing.T) {
	root := writeFixtureProject(t)
	first := partialRun(t, root)

	client := &echoClient{prefix: "EN:"}
	if _, err := Resume(context.Background(), first.SessionPath, resumeConfig(client)); err != nil {
		t.Fatal(err)
	}
	// One failed unit, one register: exactly one provider call.
	if client.callCount() != 1 {
		t.Errorf("provider calls = %d, want 1", client.callCount())
	}
}

func TestResumeRejectsChangedSource(t *testing.T) {
	root := writeFixtureProject(t)
	first := partialRun(t, root)

	// Change the failed unit's source text in the output copy.
	actorsPath := filepath.Join(first.OutputRoot, "www", "data", "Actors.json")
	records := readRecords(t, actorsPath)
	records[1].(map[string]any)["note"] = "書き換えられた"
	var fs files.Disk
	if err := fs.WriteJSON(actorsPath, records); err != nil {
		t.Fatal(err)
	}

	_, err := Resume(context.Background(), first.SessionPath, resumeConfig(&echoClient{prefix: "EN:"}))
	if err == nil {
		t.Fatal("expected checksum mismatch")
	}
}

func TestResumeRejectsMissingUnit(t *testing.T) {
	root := writeFixtureProject(t)
	first := partialRun(t, root)

	// Drop the failed unit's field entirely.
	actorsPath := filepath.Join(first.OutputRoot, "www", "data", "Actors.json")
	records := readRecords(t, actorsPath)
	delete(records[1].(map[string]any), "note")
	var fs files.Disk
	if err := fs.WriteJSON(actorsPath, records); err != nil {
		t.Fatal(err)
	}

	_, err := Resume(context.Background(), first.SessionPath, resumeConfig(&echoClient{prefix: "EN:"}))
	if err == nil {
		t.Fatal("expected missing unit error")
	}
}

func TestResumeKeepsLogWhenUnitsStillFail(t *testing.T) {
	root := writeFixtureProject(t)
	first := partialRun(t, root)

	still := &echoClient{prefix: "EN:", failRegister: engine.PromptNote}
	res, err := Resume(context.Background(), first.SessionPath, resumeConfig(still))
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if res.Status != StatusFailure {
		t.Errorf("status = %s, want Failure (every resumed unit failed again)", res.Status)
	}
	if res.SessionPath != first.SessionPath {
		t.Errorf("session path = %s", res.SessionPath)
	}

	l, err := session.Load(first.SessionPath)
	if err != nil {
		t.Fatalf("reload session log: %v", err)
	}
	if err := l.Validate(); err != nil {
		t.Fatalf("updated log invalid: %v", err)
	}
	if len(l.FailedUnits) != 1 {
		t.Errorf("failed units = %+v", l.FailedUnits)
	}
}

func TestResumeRejectsBogusLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte(`{"log_version":1}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Resume(context.Background(), path, resumeConfig(&echoClient{})); err == nil {
		t.Fatal("expected validation error")
	}
}
