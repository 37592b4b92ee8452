package templates

// FieldSpec describes one custom field a template demands of its tasks.
type FieldSpec struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// TaskTemplate defines a reusable task shape with a custom field schema.
type TaskTemplate struct {
	ID           int64
	Name         string
	Description  string
	FieldsSchema []FieldSpec
}
