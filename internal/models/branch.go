// internal/models/branch.go
package models

// Branch is one candidate continuation of the story, produced by the
// story-branches generation endpoint or authored manually by the user
type Branch struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Content string `json:"content"`
}

// BranchHistoryEntry is the snapshot pushed when the user commits to a
// branch. Entries form a linear stack; each one enables exactly one level of
// "go back".
type BranchHistoryEntry struct {
	ScenarioID     string   `json:"scenario_id"`
	ScenarioText   string   `json:"scenario_text"`
	BranchQuestion string   `json:"branch_question"`
	Branches       []Branch `json:"branches"`
}
