package storage

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"orggov-backend/internal/domain"

	"github.com/gabriel-vasile/mimetype"
)

const (
	MaxDocumentSize = 10 << 20
	MaxPictureSize  = 5 << 20
)

// FileRules maps each allowed extension to the sniffed MIME types its
// content may have, plus a size ceiling.
type FileRules struct {
	Name    string
	Types   map[string][]string
	MaxSize int64
}

// Extensions returns the allowed extensions in a stable order.
func (r FileRules) Extensions() []string {
	exts := make([]string, 0, len(r.Types))
	for ext := range r.Types {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

var (
	// A .docx is a zip container; mimetype reports plain zip when the
	// word/ part is not among the first entries.
	DocumentRules = FileRules{
		Name: "document",
		Types: map[string][]string{
			".pdf":  {"application/pdf"},
			".doc":  {"application/msword", "application/x-ole-storage"},
			".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
		},
		MaxSize: MaxDocumentSize,
	}

	PictureRules = FileRules{
		Name: "picture",
		Types: map[string][]string{
			".jpg":  {"image/jpeg"},
			".jpeg": {"image/jpeg"},
			".png":  {"image/png"},
		},
		MaxSize: MaxPictureSize,
	}
)

// ValidationResult reports each check separately. MimeOK means the sniffed
// content matches the file's extension.
type ValidationResult struct {
	ExtensionOK bool
	MimeOK      bool
	SizeOK      bool
	Detected    string
}

func (r ValidationResult) OK() bool {
	return r.ExtensionOK && r.MimeOK && r.SizeOK
}

// FileValidator checks uploads against a set of rules
type FileValidator struct {
	rules FileRules
}

func NewFileValidator(rules FileRules) *FileValidator {
	return &FileValidator{rules: rules}
}

func (v *FileValidator) Validate(file domain.Upload) ValidationResult {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	mtype := mimetype.Detect(file.Data)

	allowed, known := v.rules.Types[ext]
	res := ValidationResult{
		ExtensionOK: known,
		SizeOK:      file.Size() > 0 && file.Size() <= v.rules.MaxSize,
		Detected:    mtype.String(),
	}
	// Exact match only: parents such as zip or OLE would admit any container.
	for _, m := range allowed {
		if mtype.Is(m) {
			res.MimeOK = true
			break
		}
	}
	return res
}

// Check validates file and returns a validation error naming every failed
// check.
func (v *FileValidator) Check(file domain.Upload) error {
	res := v.Validate(file)
	if res.OK() {
		return nil
	}
	var problems []string
	if !res.ExtensionOK {
		problems = append(problems, "extension must be one of "+strings.Join(v.rules.Extensions(), ", "))
	} else if !res.MimeOK {
		problems = append(problems, "content type "+res.Detected+" does not match the "+strings.ToLower(filepath.Ext(file.Filename))+" extension")
	}
	if !res.SizeOK {
		if file.Size() == 0 {
			problems = append(problems, "file is empty")
		} else {
			problems = append(problems, "file exceeds the "+humanSize(v.rules.MaxSize)+" limit")
		}
	}
	return domain.ValidationError("%s %q rejected: %s", v.rules.Name, file.Filename, strings.Join(problems, "; "))
}

func humanSize(n int64) string {
	return fmt.Sprintf("%d MB", n>>20)
}
