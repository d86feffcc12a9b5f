// ABOUTME: Pipeline stage taxonomy shared by every board surface
// ABOUTME: Fixed ordered list of stages with display names and colours
package models

// Stage keys. The order of Stages() is the column order of the board.
const (
	StageLead        = "lead"
	StageQualified   = "qualified"
	StageProposal    = "proposal"
	StageNegotiation = "negotiation"
	StageClosedWon   = "closed-won"
	StageClosedLost  = "closed-lost"
)

// Stage is one column of the pipeline.
type Stage struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Closed reports whether deals in this stage have left the active pipeline.
func (s Stage) Closed() bool {
	return s.ID == StageClosedWon || s.ID == StageClosedLost
}

var stages = []Stage{
	{ID: StageLead, Name: "Lead", Color: "gray"},
	{ID: StageQualified, Name: "Qualified", Color: "blue"},
	{ID: StageProposal, Name: "Proposal", Color: "yellow"},
	{ID: StageNegotiation, Name: "Negotiation", Color: "orange"},
	{ID: StageClosedWon, Name: "Closed Won", Color: "green"},
	{ID: StageClosedLost, Name: "Closed Lost", Color: "red"},
}

// Stages returns a copy of the taxonomy in presentation order.
func Stages() []Stage {
	out := make([]Stage, len(stages))
	copy(out, stages)
	return out
}

// StageIDs returns the stage keys in presentation order.
func StageIDs() []string {
	ids := make([]string, len(stages))
	for i, s := range stages {
		ids[i] = s.ID
	}
	return ids
}

// LookupStage finds a stage by key.
func LookupStage(id string) (Stage, bool) {
	for _, s := range stages {
		if s.ID == id {
			return s, true
		}
	}
	return Stage{}, false
}

func IsValidStage(id string) bool {
	_, ok := LookupStage(id)
	return ok
}

// StageIndex returns the column position of a stage, or -1.
func StageIndex(id string) int {
	for i, s := range stages {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// IsClosedStage reports whether the key names a won or lost stage.
func IsClosedStage(id string) bool {
	return id == StageClosedWon || id == StageClosedLost
}
