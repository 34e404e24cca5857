package rpgmv

import "github.com/KATBlackCoder/Translate-AI-sub001/internal/engine"

// Schema tables for the record-array data files. These are declared here
// once and never derived from document contents: a field translates only if
// it is listed, and every entry fixes the context label and prompt register
// its text is translated under.

var actorFields = []engine.FieldSchema{
	{Field: "name", Label: "Actor Name", PromptType: engine.PromptName},
	{Field: "nickname", Label: "Actor Nickname", PromptType: engine.PromptName},
	{Field: "profile", Label: "Actor Profile", PromptType: engine.PromptDialogue},
	{Field: "note", Label: "Actor Note", PromptType: engine.PromptNote},
}

var classFields = []engine.FieldSchema{
	{Field: "name", Label: "Class Name", PromptType: engine.PromptName},
	{Field: "note", Label: "Class Note", PromptType: engine.PromptNote},
}

var skillFields = []engine.FieldSchema{
	{Field: "name", Label: "Skill Name", PromptType: engine.PromptName},
	{Field: "description", Label: "Skill Description", PromptType: engine.PromptDescription},
	{Field: "message1", Label: "Skill Message 1", PromptType: engine.PromptMessage},
	{Field: "message2", Label: "Skill Message 2", PromptType: engine.PromptMessage},
	{Field: "note", Label: "Skill Note", PromptType: engine.PromptNote},
}

var itemFields = []engine.FieldSchema{
	{Field: "name", Label: "Item Name", PromptType: engine.PromptName},
	{Field: "description", Label: "Item Description", PromptType: engine.PromptDescription},
	{Field: "note", Label: "Item Note", PromptType: engine.PromptNote},
}

var weaponFields = []engine.FieldSchema{
	{Field: "name", Label: "Weapon Name", PromptType: engine.PromptName},
	{Field: "description", Label: "Weapon Description", PromptType: engine.PromptDescription},
	{Field: "note", Label: "Weapon Note", PromptType: engine.PromptNote},
}

var armorFields = []engine.FieldSchema{
	{Field: "name", Label: "Armor Name", PromptType: engine.PromptName},
	{Field: "description", Label: "Armor Description", PromptType: engine.PromptDescription},
	{Field: "note", Label: "Armor Note", PromptType: engine.PromptNote},
}

var enemyFields = []engine.FieldSchema{
	{Field: "name", Label: "Enemy Name", PromptType: engine.PromptName},
	{Field: "note", Label: "Enemy Note", PromptType: engine.PromptNote},
}

var stateFields = []engine.FieldSchema{
	{Field: "name", Label: "State Name", PromptType: engine.PromptName},
	{Field: "message1", Label: "State Message 1", PromptType: engine.PromptMessage},
	{Field: "message2", Label: "State Message 2", PromptType: engine.PromptMessage},
	{Field: "message3", Label: "State Message 3", PromptType: engine.PromptMessage},
	{Field: "message4", Label: "State Message 4", PromptType: engine.PromptMessage},
	{Field: "note", Label: "State Note", PromptType: engine.PromptNote},
}

func newHandlers() map[string]engine.Handler {
	return map[string]engine.Handler{
		"actors":  NewRecordHandler(actorFields),
		"classes": NewRecordHandler(classFields),
		"skills":  NewRecordHandler(skillFields),
		"items":   NewRecordHandler(itemFields),
		"weapons": NewRecordHandler(weaponFields),
		"armors":  NewRecordHandler(armorFields),
		"enemies": NewRecordHandler(enemyFields),
		"states":  NewRecordHandler(stateFields),
	}
}
