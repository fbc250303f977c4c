package treestore

import (
	"sort"
	"sync"
)

type NodeType string

const (
	NodeTypeFile   NodeType = "file"
	NodeTypeFolder NodeType = "folder"
	NodeTypeLink   NodeType = "link"
)

// RootTarget is the sentinel drop target for the container root.
const RootTarget = "root"

// Node is the client-side view of a file, folder or link. IsStaged
// marks nodes created locally that the server has not confirmed yet;
// they are discarded on the next authoritative snapshot.
type Node struct {
	ID       string
	Name     string
	Type     NodeType
	ParentID *string
	IsStaged bool
}

// MoveRequest is the server call a legal drop translates into. Multi
// item drags produce one batched request rather than one call per node.
type MoveRequest struct {
	NodeIDs  []string
	TargetID string
	Batched  bool
}

// Store holds the interactive tree state: expansion, selection, drag
// and per-node loading flags. It is an explicit state container meant
// to be constructed once and injected, not a package-level singleton.
// All mutations are optimistic in responsiveness only; the tree is
// replaced wholesale by PopulateFromSnapshot after every successful
// server mutation.
type Store struct {
	mu sync.Mutex

	nodes    map[string]Node
	expanded map[string]struct{}
	selected map[string]struct{}
	loading  map[string]struct{}

	draggedIDs []string
	dragOverID string
	isDragging bool
}

func NewStore() *Store {
	return &Store{
		nodes:    map[string]Node{},
		expanded: map[string]struct{}{},
		selected: map[string]struct{}{},
		loading:  map[string]struct{}{},
	}
}

// PopulateFromSnapshot replaces every node with the authoritative server
// state. Selection, expansion and loading flags for ids that no longer
// exist are dropped; no merging of deltas is attempted.
func (s *Store) PopulateFromSnapshot(nodes []Node) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = make(map[string]Node, len(nodes))
	for _, n := range nodes {
		n.IsStaged = false
		s.nodes[n.ID] = n
	}

	for id := range s.expanded {
		if _, ok := s.nodes[id]; !ok {
			delete(s.expanded, id)
		}
	}
	for id := range s.selected {
		if _, ok := s.nodes[id]; !ok {
			delete(s.selected, id)
		}
	}
	for id := range s.loading {
		if _, ok := s.nodes[id]; !ok {
			delete(s.loading, id)
		}
	}
}

// StageNode inserts a locally created node that the server has not
// confirmed yet.
func (s *Store) StageNode(node Node) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node.IsStaged = true
	s.nodes[node.ID] = node
}

func (s *Store) Node(id string) (Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	return n, ok
}

// Children returns the child nodes of parentID (or root when nil),
// sorted by name for stable rendering.
func (s *Store) Children(parentID *string) []Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	var children []Node
	for _, n := range s.nodes {
		if parentID == nil {
			if n.ParentID == nil {
				children = append(children, n)
			}
		} else if n.ParentID != nil && *n.ParentID == *parentID {
			children = append(children, n)
		}
	}

	sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
	return children
}

// --- expansion ---

func (s *Store) Expand(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expanded[id] = struct{}{}
}

func (s *Store) Collapse(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.expanded, id)
}

func (s *Store) ToggleExpanded(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.expanded[id]; ok {
		delete(s.expanded, id)
	} else {
		s.expanded[id] = struct{}{}
	}
}

func (s *Store) IsExpanded(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.expanded[id]
	return ok
}

// --- selection ---

// Select is single-select: it clears the selection, then adds id.
func (s *Store) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = map[string]struct{}{id: {}}
}

// ToggleSelect is multi-select: it toggles membership of id.
func (s *Store) ToggleSelect(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
	} else {
		s.selected[id] = struct{}{}
	}
}

func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = map[string]struct{}{}
}

func (s *Store) IsSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.selected[id]
	return ok
}

func (s *Store) SelectedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return sortedKeys(s.selected)
}

// --- loading ---

func (s *Store) SetLoading(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading[id] = struct{}{}
}

func (s *Store) ClearLoading(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.loading, id)
}

func (s *Store) IsLoading(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.loading[id]
	return ok
}

// --- drag and drop ---

// BeginDrag starts a drag from originID. If the origin is already part
// of the selection the whole selection is dragged; otherwise only the
// origin moves and it becomes the new selection.
func (s *Store) BeginDrag(originID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[originID]; !ok {
		return nil
	}

	if _, selected := s.selected[originID]; selected {
		s.draggedIDs = sortedKeys(s.selected)
	} else {
		s.selected = map[string]struct{}{originID: {}}
		s.draggedIDs = []string{originID}
	}

	s.isDragging = true
	s.dragOverID = ""

	return append([]string(nil), s.draggedIDs...)
}

func (s *Store) DragOver(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isDragging {
		s.dragOverID = id
	}
}

func (s *Store) DragOverNode() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.dragOverID, s.dragOverID != ""
}

func (s *Store) IsDragging() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.isDragging
}

func (s *Store) EndDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draggedIDs = nil
	s.dragOverID = ""
	s.isDragging = false
}

// CanDrop reports whether the current drag may land on targetID. Legal
// targets are folder nodes or the root sentinel, never a dragged node
// itself and never a descendant of one.
func (s *Store) CanDrop(targetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.canDropLocked(targetID)
}

func (s *Store) canDropLocked(targetID string) bool {
	if !s.isDragging || len(s.draggedIDs) == 0 {
		return false
	}

	if targetID == RootTarget {
		return true
	}

	target, ok := s.nodes[targetID]
	if !ok || target.Type != NodeTypeFolder {
		return false
	}

	dragged := map[string]struct{}{}
	for _, id := range s.draggedIDs {
		if id == targetID {
			return false
		}
		dragged[id] = struct{}{}
	}

	// Walk the target's ancestor chain; hitting a dragged node means
	// the drop would create a cycle.
	current := target.ParentID
	for current != nil {
		if _, hit := dragged[*current]; hit {
			return false
		}

		parent, ok := s.nodes[*current]
		if !ok {
			break
		}
		current = parent.ParentID
	}

	return true
}

// Drop validates the target and, if legal, returns the move request and
// resets drag state. An illegal drop returns ok == false and mutates
// nothing beyond ending the drag.
func (s *Store) Drop(targetID string) (MoveRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.canDropLocked(targetID) {
		s.draggedIDs = nil
		s.dragOverID = ""
		s.isDragging = false
		return MoveRequest{}, false
	}

	req := MoveRequest{
		NodeIDs:  append([]string(nil), s.draggedIDs...),
		TargetID: targetID,
		Batched:  len(s.draggedIDs) > 1,
	}

	s.draggedIDs = nil
	s.dragOverID = ""
	s.isDragging = false

	return req, true
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
