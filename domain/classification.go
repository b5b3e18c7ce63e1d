package domain

// IntentClassification is derived purely from a Question and never persisted.
type IntentClassification struct {
	Domain                   Domain       `json:"domain"`
	SpecialistID             SpecialistID `json:"specialist_id"`
	Confidence               float64      `json:"confidence"`
	Reasoning                string       `json:"reasoning"`
	RequiresMultiPerspective bool         `json:"requires_multi_perspective"`
	IsWorkRelated            bool         `json:"is_work_related"`
	// Language is the ISO 639-1 code, empty when detection was unreliable.
	Language string `json:"language,omitempty"`
}

type TaskType string

const (
	TaskClassification TaskType = "classification"
	TaskSpecialist     TaskType = "specialist-response"
	TaskPerspective    TaskType = "perspective-generation"
	TaskSynthesis      TaskType = "synthesis"
	TaskGuardrail      TaskType = "guardrail-check"
)
