package rpgmv

import "github.com/KATBlackCoder/Translate-AI-sub001/internal/engine"

// Registry keys for the two supported engine generations.
const (
	TypeMV = "rpgmv"
	TypeMZ = "rpgmz"
)

var dataFiles = []string{
	"Actors.json",
	"Classes.json",
	"Skills.json",
	"Items.json",
	"Weapons.json",
	"Armors.json",
	"Enemies.json",
	"States.json",
}

var resourceTypes = []string{
	"actors",
	"classes",
	"skills",
	"items",
	"weapons",
	"armors",
	"enemies",
	"states",
}

// NewMV assembles the RPG Maker MV engine. MV projects keep their data
// under www/data.
func NewMV(fs engine.FS) *engine.Engine {
	return engine.New(engine.Settings{
		Type:          TypeMV,
		Name:          "RPG Maker MV",
		Version:       "1.6",
		DataDir:       "www/data",
		RequiredFiles: dataFiles,
		ResourceTypes: resourceTypes,
	}, newHandlers(), fs)
}

// NewMZ assembles the RPG Maker MZ engine. MZ moved the data directory to
// the project root; the file format is unchanged.
func NewMZ(fs engine.FS) *engine.Engine {
	return engine.New(engine.Settings{
		Type:          TypeMZ,
		Name:          "RPG Maker MZ",
		Version:       "1.8",
		DataDir:       "data",
		RequiredFiles: dataFiles,
		ResourceTypes: resourceTypes,
	}, newHandlers(), fs)
}

// Builders returns the engine builders for this package, keyed by registry
// type. The entry point folds these into the run's registry.
func Builders(fs engine.FS) map[string]engine.Builder {
	return map[string]engine.Builder{
		TypeMV: func() *engine.Engine { return NewMV(fs) },
		TypeMZ: func() *engine.Engine { return NewMZ(fs) },
	}
}
