package gstkit

import "fmt"

// CapsDesc is the concrete Caps implementation tasks build and pass to
// Element.SetCaps. It is a plain value type deliberately independent of
// go-gst so that AttachSource and friends stay testable without cgo; the
// cgo-backed Element implementation translates a CapsDesc into a real
// GstCaps when SetCaps is called.
type CapsDesc struct {
	MimeType string
	Fields   map[string]any
}

// NewCaps returns an empty CapsDesc for the given MIME type.
func NewCaps(mimeType string) *CapsDesc {
	return &CapsDesc{MimeType: mimeType, Fields: map[string]any{}}
}

// With sets a single caps field and returns the receiver for chaining.
func (c *CapsDesc) With(field string, value any) *CapsDesc {
	c.Fields[field] = value
	return c
}

func (c *CapsDesc) String() string {
	return fmt.Sprintf("%s,%v", c.MimeType, c.Fields)
}

// Equal reports whether two caps descriptors are equivalent: same MIME type
// and same field values. Used by AttachSource's hot-swap equality check
// (spec.md §4.B, §8 law 6).
func (c *CapsDesc) Equal(other *CapsDesc) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.MimeType != other.MimeType {
		return false
	}
	if len(c.Fields) != len(other.Fields) {
		return false
	}
	for k, v := range c.Fields {
		ov, ok := other.Fields[k]
		if !ok || fmt.Sprint(v) != fmt.Sprint(ov) {
			return false
		}
	}
	return true
}
