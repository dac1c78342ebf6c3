package yaml

import (
	"errors"
	"io"

	"github.com/goccy/go-yaml"
)

// ErrEmptyDocument is returned when the input is empty.
var ErrEmptyDocument = errors.New("empty document")

// Decoder decodes a YAML document, converting parser errors into [*Error]s
// that keep the failing token. Duplicate mapping keys are rejected, so a
// profile defined twice is reported instead of silently replaced.
type Decoder struct {
	d *yaml.Decoder
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		d: yaml.NewDecoder(r),
	}
}

func (d *Decoder) Decode(v any) error {
	err := d.d.Decode(v)
	if err == nil {
		return nil
	}

	if errors.Is(err, io.EOF) {
		return &Error{Err: ErrEmptyDocument}
	}

	var yamlErr yaml.Error
	if errors.As(err, &yamlErr) {
		return &Error{
			Err:   errors.New(yamlErr.GetMessage()),
			Token: yamlErr.GetToken(),
		}
	}

	//nolint:wrapcheck // Return the original error if it's not a [yaml.Error].
	return err
}
