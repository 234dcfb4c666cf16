package paint

// Chunk is one paint chunk (§3, §4.6): a single leaf DisplayItem together
// with the ordered list of ancestor effect items it was painted under, from
// outermost to innermost. The compositor groups and layers chunks by their
// composited-ancestor-index; it never looks past the leaf/ancestor split
// this type encodes.
type Chunk struct {
	Leaf     *Item
	Ancestors []*Item
}

// IsLeaf reports whether it is a leaf DisplayItem (no children, drawn
// directly) as opposed to an effect item that wraps other items.
func (it *Item) IsLeaf() bool {
	switch it.Kind {
	case KindDrawRect, KindDrawRRect, KindDrawText, KindDrawLine:
		return true
	default:
		return false
	}
}

// Flatten walks a display list (the root items produced by painting the
// layout tree) depth-first and appends one Chunk per leaf item, in document
// order, recording the chain of ancestor effect items above each leaf
// (§4.6 "display_list_to_paint_chunks"). ancestorEffects is the chain
// inherited from the caller; pass nil at the top level.
func Flatten(displayList []*Item, ancestorEffects []*Item, chunks []Chunk) []Chunk {
	for _, item := range displayList {
		if !item.IsLeaf() {
			next := make([]*Item, len(ancestorEffects), len(ancestorEffects)+1)
			copy(next, ancestorEffects)
			next = append(next, item)
			chunks = Flatten(item.Children, next, chunks)
		} else {
			chunks = append(chunks, Chunk{Leaf: item, Ancestors: ancestorEffects})
		}
	}
	return chunks
}

// CompositedAncestorIndex returns the highest index in ancestorEffects
// (searched from the end) whose item needs compositing, or -1 if none does
// (§4.6 "composited_ancestor_index").
func CompositedAncestorIndex(ancestorEffects []*Item) int {
	for i := len(ancestorEffects) - 1; i >= 0; i-- {
		if ancestorEffects[i].NeedsCompositing() {
			return i
		}
	}
	return -1
}
