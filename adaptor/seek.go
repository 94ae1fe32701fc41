package adaptor

import "github.com/grailbio/jst/seqtree"

// Seekable adds the seek(position) operation (spec.md §4.E Seek) to an
// adaptor pipeline by pairing a CoreNode with the underlying
// *seqtree.Tree it was built from.
type Seekable struct {
	CoreNode
	Tree *seqtree.Tree
}

// WithSeek wraps root (built from tree) with seek support.
func WithSeek(tree *seqtree.Tree, root CoreNode) Seekable {
	return Seekable{CoreNode: root, Tree: tree}
}

// Seek reconstructs the node at d as a bare Leaf over the same tree.
// Adaptors layered above the seek point (merge, trim, ...) are not
// replayed: seek always returns to the underlying tree's own node,
// matching spec.md §4.F's requirement that adaptors change shape, not
// identity.
func (s Seekable) Seek(d seqtree.Descriptor) (CoreNode, error) {
	n, err := s.Tree.Seek(d)
	if err != nil {
		return nil, err
	}
	return Leaf(n), nil
}
