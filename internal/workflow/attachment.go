package workflow

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// AllowedExtensions are the scenario file types accepted as attachments.
var AllowedExtensions = []string{".txt", ".md", ".py", ".java", ".json", ".xml"}

// maxAttachmentBytes caps how much of a file is read. Content longer than
// MaxInputChars is rejected at submission, so this only bounds memory.
const maxAttachmentBytes = 1 << 20

var ErrUnsupportedFile = errors.New("unsupported file type, use .txt, .md, .py, .java, .json or .xml")

// Attachment is a scenario file whose content replaces the description.
type Attachment struct {
	Name    string
	Content string
}

// Size returns the content length in bytes.
func (a Attachment) Size() int {
	return len(a.Content)
}

// LoadAttachment reads a scenario file from disk.
func LoadAttachment(path string) (Attachment, error) {
	if !allowedExtension(path) {
		return Attachment{}, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFile)
	}
	f, err := os.Open(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("open attachment: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxAttachmentBytes))
	if err != nil {
		return Attachment{}, fmt.Errorf("read attachment: %w", err)
	}
	return Attachment{Name: filepath.Base(path), Content: string(data)}, nil
}

func allowedExtension(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range AllowedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
