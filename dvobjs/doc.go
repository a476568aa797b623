package dvobjs

import (
	"github.com/hvml/purc"
	"github.com/hvml/purc/variant"
)

// Document is the contract a document implementation exposes to the doc
// dvobj. The DOM itself lives in an external collaborator.
type Document interface {
	// Property resolves a named property of the document (doctype,
	// base, title and friends) to a variant.
	Property(name string) (*variant.Variant, error)
	// Close releases the document's resources.
	Close() error
}

// NewDoc wraps a document as a native variant. The variant OWNS the
// document: unref'ing the last reference closes it. Callers that need to
// keep the document alive past the variant must not hand it over here.
func NewDoc(doc Document) (*variant.Variant, error) {
	if doc == nil {
		return nil, purc.NewError(purc.ErrArgumentMissed)
	}
	ops := &variant.NativeOps{
		PropertyGetter: docPropertyGetter,
		OnRelease: func(entity any) {
			_ = entity.(Document).Close()
		},
	}
	return variant.MakeNative(doc, ops)
}

func docPropertyGetter(entity any, name string) variant.NativeMethod {
	doc, ok := entity.(Document)
	if !ok {
		return nil
	}
	return func(_ any, args []*variant.Variant, silently bool) (*variant.Variant, error) {
		v, err := doc.Property(name)
		if err != nil {
			if silently && purc.CodeOf(err) != purc.ErrOutOfMemory {
				return variant.MakeNull(), err
			}
			return nil, err
		}
		return v, nil
	}
}
