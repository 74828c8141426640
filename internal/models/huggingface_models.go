package models

type ClassificationRequest struct {
	Inputs []string `json:"inputs"`
}

// ClassificationLabel is one candidate label for a single input.
type ClassificationLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ClassificationResponse holds the candidate labels for each input, in input
// order.
type ClassificationResponse [][]ClassificationLabel
