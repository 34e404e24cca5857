package engine

import "fmt"

// Validation is the outcome of a project structure check. It is data, not an
// error: callers decide whether an invalid project stops a run.
type Validation struct {
	Valid        bool
	Problems     []string
	MissingFiles []string
}

func (v *Validation) addMissing(path string) {
	v.MissingFiles = append(v.MissingFiles, path)
	v.Problems = append(v.Problems, fmt.Sprintf("required file missing: %s", path))
}
