package cbor

// TaggedItem is the generic fallback representation of a major-6 tag whose
// number has no dedicated processor in the active TagRegistry (or whose
// processor chose to pass the content through unchanged, as tag 61/CWT
// does): the tag number and its single child item, carried together.
type TaggedItem struct {
	itemBase
	Tag   Number
	Child Item
}

func NewTaggedItem(tag Number, child Item) *TaggedItem {
	return &TaggedItem{Tag: tag, Child: child}
}

func (t *TaggedItem) MajorType() MajorType { return MajorTag }
