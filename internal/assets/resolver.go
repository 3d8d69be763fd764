package assets

import "errors"

// TemplateResolver combines custom and embedded loaders with fallback logic.
// When a custom loader is configured, it tries custom first, then falls back
// to embedded if the template is not found in the custom location.
type TemplateResolver struct {
	custom   TemplateLoader // nil if no custom path configured
	embedded TemplateLoader
}

// NewTemplateResolver creates a TemplateResolver.
// If customBasePath is empty, only embedded templates are used.
// Returns error if customBasePath is set but invalid.
func NewTemplateResolver(customBasePath string) (*TemplateResolver, error) {
	resolver := &TemplateResolver{
		embedded: NewEmbeddedLoader(),
	}

	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		resolver.custom = fsLoader
	}

	return resolver, nil
}

// LoadTemplate loads a template, trying the custom loader first if available.
// Only not-found errors fall back; validation and I/O errors are returned.
func (r *TemplateResolver) LoadTemplate(name string) ([]byte, error) {
	if r.custom == nil {
		return r.embedded.LoadTemplate(name)
	}

	data, err := r.custom.LoadTemplate(name)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, ErrTemplateNotFound) {
		return nil, err
	}
	return r.embedded.LoadTemplate(name)
}

// HasCustomLoader returns true if a custom template directory is configured.
func (r *TemplateResolver) HasCustomLoader() bool {
	return r.custom != nil
}

// Compile-time interface check.
var _ TemplateLoader = (*TemplateResolver)(nil)
