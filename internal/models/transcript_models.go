package models

type Transcript struct {
	Raw     string `json:"raw"`
	Cleaned string `json:"cleaned"`
	// Cleansed is false when Cleaned fell back to Raw.
	Cleansed bool `json:"cleansed"`
}
