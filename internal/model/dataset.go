package model

// Dataset lifecycle states for the two-phase delete. A row stuck in
// StateIndexDeleted marks a delete that lost its vector index but still has
// its registry row; the reaper job finishes those off.
const (
	DatasetStateActive       = "active"
	DatasetStateIndexDeleted = "index_deleted"
)

type Dataset struct {
	Name         string `json:"name"`
	IndexName    string `json:"index_name"`
	SystemPrompt string `json:"system_prompt"`
	State        string `json:"state"`
	CreatedAt    int64  `json:"created_at"`
}
