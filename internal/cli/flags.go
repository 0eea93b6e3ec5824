package cli

import (
	"strconv"

	"github.com/doridoridoriand/pingtap/internal/probe"
)

// OptionalString records a string flag and whether it was set.
type OptionalString struct {
	value string
	set   bool
}

func (o *OptionalString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

func (o *OptionalString) String() string {
	if !o.set {
		return ""
	}
	return o.value
}

func (o *OptionalString) Value() (string, bool) {
	return o.value, o.set
}

// Ptr returns nil when the flag was not given.
func (o *OptionalString) Ptr() *string {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}

// OptionalBool records a bool flag and whether it was set.
type OptionalBool struct {
	value bool
	set   bool
}

func (o *OptionalBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	o.value = v
	o.set = true
	return nil
}

func (o *OptionalBool) String() string {
	if !o.set {
		return ""
	}
	return strconv.FormatBool(o.value)
}

func (o *OptionalBool) IsBoolFlag() bool {
	return true
}

func (o *OptionalBool) Value() (bool, bool) {
	return o.value, o.set
}

func (o *OptionalBool) Ptr() *bool {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}

// OptionalVariant records a probe variant flag and whether it was set.
type OptionalVariant struct {
	value probe.Variant
	set   bool
}

func (o *OptionalVariant) Set(s string) error {
	v, err := probe.ParseVariant(s)
	if err != nil {
		return err
	}
	o.value = v
	o.set = true
	return nil
}

func (o *OptionalVariant) String() string {
	if !o.set {
		return ""
	}
	return string(o.value)
}

func (o *OptionalVariant) Value() (probe.Variant, bool) {
	return o.value, o.set
}

func (o *OptionalVariant) Ptr() *probe.Variant {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}
