package assets

// DefaultTemplateName is the name of the built-in invoice template.
const DefaultTemplateName = "invoice"

// TemplateLoader defines the contract for loading DOCX templates.
// Returned bytes are shared and must be treated as read-only.
type TemplateLoader interface {
	// LoadTemplate loads a template by name (without .docx extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadTemplate(name string) ([]byte, error)
}
