// Package assets provides the DOCX invoice templates.
//
// # Loader Architecture
//
// The package implements a layered loading system:
//
//	TemplateLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in template, assembled from embedded XML parts
//	    ├── FilesystemLoader  - {name}.docx files from a directory on disk
//	    └── TemplateResolver  - combines both with custom-first fallback
//
// The built-in template is stored as plain XML parts so it stays reviewable
// in version control. EmbeddedLoader zips them into a DOCX package once and
// serves the same immutable bytes to every caller.
//
// FilesystemLoader re-reads the file on every call, so template edits apply
// without a restart.
//
// # Security
//
// Template names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
//
// # Template Contract
//
// ValidateTemplate checks the structure the renderer relies on: the first
// body table has at least a header and a style row over four columns, and
// the second has at least four rows.
package assets
