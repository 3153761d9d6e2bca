package rewrite

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/srcmap-tools/srcmap/pkg/shared/config"
)

// relativeToValue is a flag accepting only the known frames of reference.
type relativeToValue string

var _ pflag.Value = (*relativeToValue)(nil)

func (v *relativeToValue) String() string { return string(*v) }

func (v *relativeToValue) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	if err := config.ValidateRelativeTo(s); err != nil {
		return err
	}
	*v = relativeToValue(s)
	return nil
}

func (v *relativeToValue) Type() string { return "cwd|map" }
