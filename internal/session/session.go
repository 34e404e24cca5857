// Package session persists the state of a partially failed translation run
// so `translate-ai resume` can re-dispatch only the units that failed. A
// session log is tied to one project and one extraction: resuming checks a
// checksum of the re-extracted unit set, because reinjecting against data
// files that changed underneath would corrupt records silently.
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/KATBlackCoder/Translate-AI-sub001/internal/engine"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/files"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/language"
)

const CurrentLogVersion = 1

// UnitRef names one failed unit. File is relative to the project root so
// logs survive a project being moved.
type UnitRef struct {
	File       string `json:"file"`
	ResourceID string `json:"resource_id"`
	Field      string `json:"field"`
}

// Log stores the state of a translation session for later resume.
type Log struct {
	LogVersion    int       `json:"log_version"`
	EngineType    string    `json:"engine_type"`
	ProjectRoot   string    `json:"project_root"`
	OutputRoot    string    `json:"output_root,omitempty"`
	UnitsChecksum string    `json:"units_checksum"`
	SourceLang    string    `json:"source_lang"`
	TargetLang    string    `json:"target_lang"`
	Provider      string    `json:"provider"`
	Model         string    `json:"model"`
	BatchSize     int       `json:"batch_size"`
	Concurrency   int       `json:"concurrency"`
	TotalUnits    int       `json:"total_units"`
	FailedUnits   []UnitRef `json:"failed_units"`
	Status        string    `json:"status"` // "Partial Success" or "Failure"
	StatusReason  string    `json:"status_reason,omitempty"`
}

// Validate checks whether the log is consistent and safe to resume.
func (l *Log) Validate() error {
	if l.LogVersion == 0 {
		l.LogVersion = CurrentLogVersion
	}
	if l.LogVersion != CurrentLogVersion {
		return fmt.Errorf("unsupported log_version: %d", l.LogVersion)
	}
	if l.EngineType == "" {
		return fmt.Errorf("engine_type is empty")
	}
	if l.ProjectRoot == "" {
		return fmt.Errorf("project_root is empty")
	}
	if filepath.IsAbs(l.ProjectRoot) {
		return fmt.Errorf("project_root must be relative, not absolute: %s", l.ProjectRoot)
	}
	if l.OutputRoot != "" {
		if filepath.IsAbs(l.OutputRoot) {
			return fmt.Errorf("output_root must be relative, not absolute: %s", l.OutputRoot)
		}
		if strings.HasPrefix(filepath.Clean(l.OutputRoot), "..") {
			return fmt.Errorf("output_root cannot traverse parent directories: %s", l.OutputRoot)
		}
	}
	if l.UnitsChecksum == "" {
		return fmt.Errorf("units_checksum is empty")
	}
	if !strings.HasPrefix(l.UnitsChecksum, "sha256:") {
		return fmt.Errorf("invalid units_checksum: %s", l.UnitsChecksum)
	}
	if _, ok := language.GetLanguage(l.SourceLang); !ok {
		return fmt.Errorf("unsupported source language: %s", l.SourceLang)
	}
	if _, ok := language.GetLanguage(l.TargetLang); !ok {
		return fmt.Errorf("unsupported target language: %s", l.TargetLang)
	}
	if l.Provider == "" {
		return fmt.Errorf("provider is empty")
	}
	if l.Model == "" && l.Provider != "google" {
		return fmt.Errorf("model name is empty")
	}
	if l.BatchSize <= 0 {
		return fmt.Errorf("invalid batch_size: %d", l.BatchSize)
	}
	if l.Concurrency <= 0 {
		return fmt.Errorf("invalid concurrency: %d", l.Concurrency)
	}
	if l.TotalUnits <= 0 {
		return fmt.Errorf("invalid total_units: %d", l.TotalUnits)
	}
	if len(l.FailedUnits) == 0 {
		return fmt.Errorf("failed_units list is empty")
	}
	for _, ref := range l.FailedUnits {
		if ref.File == "" || ref.ResourceID == "" || ref.Field == "" {
			return fmt.Errorf("incomplete failed unit reference: %+v", ref)
		}
		if filepath.IsAbs(ref.File) {
			return fmt.Errorf("failed unit file must be relative: %s", ref.File)
		}
	}
	if l.Status != "Partial Success" && l.Status != "Failure" {
		return fmt.Errorf("invalid session status: %q", l.Status)
	}
	if l.StatusReason != "" && l.StatusReason != "canceled" {
		return fmt.Errorf("invalid status_reason: %s", l.StatusReason)
	}
	return nil
}

// Save writes the log to a new file; it refuses to clobber an existing one.
func Save(path string, l *Log) error {
	if l.LogVersion == 0 {
		l.LogVersion = CurrentLogVersion
	}
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return err
	}
	return files.AtomicWriteExclusive(path, data, 0600)
}

// Load reads a session log from disk. Callers must Validate before use.
func Load(path string) (*Log, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var l Log
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, err
	}
	if l.LogVersion == 0 {
		l.LogVersion = CurrentLogVersion
	}
	return &l, nil
}

// GeneratePath creates a unique session log filename next to the project.
// Logic:
// 1. translate-ai_session.json
// 2. translate-ai_session_0.json ~ _9.json
// 3. translate-ai_session_[UUIDv7].json
func GeneratePath(projectRoot string) string {
	primary := filepath.Join(projectRoot, "translate-ai_session.json")
	if _, err := os.Stat(primary); os.IsNotExist(err) {
		return primary
	}

	for i := 0; i <= 9; i++ {
		candidate := filepath.Join(projectRoot, fmt.Sprintf("translate-ai_session_%d.json", i))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}

	for i := 0; i < 100; i++ {
		u, err := uuid.NewV7()
		var suffix string
		if err != nil {
			suffix = uuid.NewString()[:8]
		} else {
			suffix = u.String()
		}
		candidate := filepath.Join(projectRoot, fmt.Sprintf("translate-ai_session_%s.json", suffix))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}

	return filepath.Join(projectRoot, fmt.Sprintf("translate-ai_session_final_%d.json", os.Getpid()))
}

// ChecksumUnits fingerprints an extracted unit set: identities plus source
// text, independent of extraction order. File paths enter the hash relative
// to projectRoot, like UnitRef, so the checksum survives the project being
// moved or mirrored to an output root. Targets are excluded so a resumed
// run's partially translated set still matches.
func ChecksumUnits(projectRoot string, units []engine.Unit) string {
	lines := make([]string, 0, len(units))
	for _, u := range units {
		ref := RefFor(projectRoot, u)
		lines = append(lines, ref.File+"\x00"+ref.ResourceID+"\x00"+ref.Field+"\x00"+u.Source)
	}
	sort.Strings(lines)

	h := sha256.New()
	for _, line := range lines {
		h.Write([]byte(line))
		h.Write([]byte{'\n'})
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil))
}

// RefFor builds a UnitRef for a unit, with its file path made relative to
// the project root.
func RefFor(projectRoot string, u engine.Unit) UnitRef {
	file := u.File
	if rel, err := filepath.Rel(projectRoot, u.File); err == nil {
		file = filepath.ToSlash(rel)
	}
	return UnitRef{File: file, ResourceID: u.ResourceID, Field: u.Field}
}

// Matches reports whether the ref addresses the given unit under the given
// project root.
func (r UnitRef) Matches(projectRoot string, u engine.Unit) bool {
	return RefFor(projectRoot, u) == r
}

// ResolveProjectRoot resolves the log's relative project root against the
// log file's location.
func ResolveProjectRoot(logPath, projectRoot string) string {
	if filepath.IsAbs(projectRoot) {
		return projectRoot
	}
	return filepath.Join(filepath.Dir(logPath), projectRoot)
}

// ToRelativeProjectRoot converts an absolute project root to one relative
// to the log file's directory.
func ToRelativeProjectRoot(logPath, projectRoot string) (string, error) {
	absLogDir, err := filepath.Abs(filepath.Dir(logPath))
	if err != nil {
		return "", err
	}
	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return "", err
	}
	return filepath.Rel(absLogDir, absRoot)
}

// CalculateStatus determines the session status from failure counts.
func CalculateStatus(failedCount, totalCount int) string {
	if failedCount == 0 {
		return "Success"
	}
	if failedCount < totalCount {
		return "Partial Success"
	}
	return "Failure"
}
