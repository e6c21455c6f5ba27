package sweep

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// OutputFolder joins the path prefix with the folder segment of a sweep.
// The segment must be a single path element so that sweeps sharing a prefix cannot
// write into each other's folders.
func OutputFolder(prefix string, segment string) (string, error) {
	if prefix == "" {
		return "", errors.WithStack(&ErrConfiguration{Name: "pathPrefix", Message: "must not be empty"})
	}
	if err := validatePathElement("outputFolder", segment); err != nil {
		return "", err
	}
	return filepath.Join(prefix, segment), nil
}

func validatePathElement(name string, element string) error {
	switch {
	case element == "":
		return errors.WithStack(&ErrConfiguration{Name: name, Message: "must not be empty"})
	case element == "." || element == "..":
		return errors.WithStack(&ErrConfiguration{Name: name, Value: element, Message: "must not be a relative directory reference"})
	case strings.ContainsAny(element, `/\`) || strings.ContainsRune(element, filepath.Separator):
		return errors.WithStack(&ErrConfiguration{Name: name, Value: element, Message: "must be a single path element"})
	case isTempName(element):
		return errors.WithStack(&ErrConfiguration{Name: name, Value: element, Message: "names starting with '.' and ending in '.tmp' are reserved"})
	}
	return nil
}

func isTempName(name string) bool {
	return strings.HasPrefix(name, ".") && strings.HasSuffix(name, tempSuffix)
}
