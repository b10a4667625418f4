package models

// GeneratedQuiz is the JSON payload a generator backend returns for one
// quiz. Type, Difficulty and SourceFile are optional.
type GeneratedQuiz struct {
	Type        string            `json:"type,omitempty" jsonschema:"description=Quiz category"`
	Difficulty  string            `json:"difficulty,omitempty" jsonschema:"enum=easy,enum=medium,enum=hard"`
	Question    string            `json:"question" jsonschema:"required,description=The question text" validate:"required"`
	Options     map[string]string `json:"options" jsonschema:"required,description=Exactly four options keyed 1 to 4" validate:"len=4,dive,keys,oneof=1 2 3 4,endkeys,required"`
	Answer      string            `json:"answer" jsonschema:"required,enum=1,enum=2,enum=3,enum=4" validate:"required,oneof=1 2 3 4"`
	Explanation string            `json:"explanation" jsonschema:"required,description=Why the answer is correct" validate:"required"`
	SourceFile  *string           `json:"source_file,omitempty" jsonschema:"description=Repository path the question is about"`
}
