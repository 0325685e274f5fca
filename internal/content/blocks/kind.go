package blocks

import "fmt"

// Kind is the closed set of block types. Each implementation carries the
// variant; the unexported accept method seals the set so a new kind must be
// added to Visitor, which breaks every visitor until it handles it.
type Kind interface {
	Type() Type
	BlockVariant() Variant
	accept(v Visitor) error
}

// Visitor handles every Kind.
type Visitor interface {
	VisitText(k Text) error
	VisitStatement(k Statement) error
	VisitQuote(k Quote) error
	VisitImage(k Image) error
	VisitVideo(k Video) error
	VisitAudio(k Audio) error
	VisitYouTube(k YouTube) error
	VisitLink(k Link) error
	VisitPDF(k PDF) error
	VisitList(k List) error
	VisitTables(k Tables) error
	VisitInteractive(k Interactive) error
	VisitDivider(k Divider) error
}

// Visit dispatches k to the matching method of v.
func Visit(k Kind, v Visitor) error {
	if k == nil {
		return fmt.Errorf("%w: nil kind", ErrUnknownType)
	}
	return k.accept(v)
}

type Text struct{ Variant Variant }
type Statement struct{ Variant Variant }
type Quote struct{ Variant Variant }
type Image struct{ Variant Variant }
type Video struct{}
type Audio struct{}
type YouTube struct{}
type Link struct{}
type PDF struct{}
type List struct{ Variant Variant }
type Tables struct{ Variant Variant }
type Interactive struct{ Variant Variant }
type Divider struct{ Variant Variant }

func (Text) Type() Type        { return TypeText }
func (Statement) Type() Type   { return TypeStatement }
func (Quote) Type() Type       { return TypeQuote }
func (Image) Type() Type       { return TypeImage }
func (Video) Type() Type       { return TypeVideo }
func (Audio) Type() Type       { return TypeAudio }
func (YouTube) Type() Type     { return TypeYouTube }
func (Link) Type() Type        { return TypeLink }
func (PDF) Type() Type         { return TypePDF }
func (List) Type() Type        { return TypeList }
func (Tables) Type() Type      { return TypeTables }
func (Interactive) Type() Type { return TypeInteractive }
func (Divider) Type() Type     { return TypeDivider }

func (k Text) BlockVariant() Variant        { return k.Variant }
func (k Statement) BlockVariant() Variant   { return k.Variant }
func (k Quote) BlockVariant() Variant       { return k.Variant }
func (k Image) BlockVariant() Variant       { return k.Variant }
func (Video) BlockVariant() Variant         { return VariantVideo }
func (Audio) BlockVariant() Variant         { return VariantAudio }
func (YouTube) BlockVariant() Variant       { return VariantYouTube }
func (Link) BlockVariant() Variant          { return VariantLink }
func (PDF) BlockVariant() Variant           { return VariantPDF }
func (k List) BlockVariant() Variant        { return k.Variant }
func (k Tables) BlockVariant() Variant      { return k.Variant }
func (k Interactive) BlockVariant() Variant { return k.Variant }
func (k Divider) BlockVariant() Variant     { return k.Variant }

func (k Text) accept(v Visitor) error        { return v.VisitText(k) }
func (k Statement) accept(v Visitor) error   { return v.VisitStatement(k) }
func (k Quote) accept(v Visitor) error       { return v.VisitQuote(k) }
func (k Image) accept(v Visitor) error       { return v.VisitImage(k) }
func (k Video) accept(v Visitor) error       { return v.VisitVideo(k) }
func (k Audio) accept(v Visitor) error       { return v.VisitAudio(k) }
func (k YouTube) accept(v Visitor) error     { return v.VisitYouTube(k) }
func (k Link) accept(v Visitor) error        { return v.VisitLink(k) }
func (k PDF) accept(v Visitor) error         { return v.VisitPDF(k) }
func (k List) accept(v Visitor) error        { return v.VisitList(k) }
func (k Tables) accept(v Visitor) error      { return v.VisitTables(k) }
func (k Interactive) accept(v Visitor) error { return v.VisitInteractive(k) }
func (k Divider) accept(v Visitor) error     { return v.VisitDivider(k) }

// NewKind builds the Kind for a type/variant pair. An empty variant selects
// the type's default.
func NewKind(t Type, v Variant) (Kind, error) {
	v, err := ResolveVariant(t, v)
	if err != nil {
		return nil, err
	}
	switch t {
	case TypeText:
		return Text{Variant: v}, nil
	case TypeStatement:
		return Statement{Variant: v}, nil
	case TypeQuote:
		return Quote{Variant: v}, nil
	case TypeImage:
		return Image{Variant: v}, nil
	case TypeVideo:
		return Video{}, nil
	case TypeAudio:
		return Audio{}, nil
	case TypeYouTube:
		return YouTube{}, nil
	case TypeLink:
		return Link{}, nil
	case TypePDF:
		return PDF{}, nil
	case TypeList:
		return List{Variant: v}, nil
	case TypeTables:
		return Tables{Variant: v}, nil
	case TypeInteractive:
		return Interactive{Variant: v}, nil
	case TypeDivider:
		return Divider{Variant: v}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
}

// MustKind is NewKind for compile-time constant pairs.
func MustKind(t Type, v Variant) Kind {
	k, err := NewKind(t, v)
	if err != nil {
		panic(err)
	}
	return k
}
