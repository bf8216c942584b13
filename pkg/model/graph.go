package model

// NodeID identifies a node within one mind map.
type NodeID int

// NoParent marks a node without a parent edge.
const NoParent NodeID = -1

type NodeType string

const (
	NodeTypeQuery     NodeType = "query"
	NodeTypeReasoning NodeType = "reasoning"
)

// maxLabelRunes is the display length limit for node labels.
const maxLabelRunes = 50

// Node is one vertex of the mind map payload. Field names follow the
// 3d-force-graph JSON convention.
type Node struct {
	ID    NodeID   `json:"id"`
	Label string   `json:"label"`
	Type  NodeType `json:"type"`
	Group int      `json:"group"`
}

// Edge links a reasoning step to its predecessor.
type Edge struct {
	Source NodeID `json:"source"`
	Target NodeID `json:"target"`
}

// GraphPayload is the serialized form consumed by the graph renderer.
type GraphPayload struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"links"`
}

// MindMap accumulates the reasoning graph for one session. Node ids
// are assigned monotonically and survive Clear, so a renderer never
// sees the same id for two different nodes.
type MindMap struct {
	nodes  []*Node
	edges  []*Edge
	nextID NodeID
}

// NewMindMap creates an empty mind map.
func NewMindMap() *MindMap {
	return &MindMap{}
}

// AddNode appends a node and, when parentID is not NoParent, an edge
// from the parent. Labels longer than the display limit are truncated.
func (m *MindMap) AddNode(label string, nodeType NodeType, parentID NodeID) NodeID {
	id := m.nextID
	m.nextID++

	m.nodes = append(m.nodes, &Node{
		ID:    id,
		Label: truncateLabel(label),
		Type:  nodeType,
		Group: len(m.nodes) % 5,
	})

	if parentID != NoParent {
		m.edges = append(m.edges, &Edge{
			Source: parentID,
			Target: id,
		})
	}

	return id
}

// NodeCount returns the number of nodes.
func (m *MindMap) NodeCount() int {
	return len(m.nodes)
}

// EdgeCount returns the number of edges.
func (m *MindMap) EdgeCount() int {
	return len(m.edges)
}

// Payload returns the JSON payload for the graph renderer. The nodes
// and links are never nil so the payload marshals as empty arrays.
func (m *MindMap) Payload() *GraphPayload {
	nodes := make([]*Node, len(m.nodes))
	copy(nodes, m.nodes)
	edges := make([]*Edge, len(m.edges))
	copy(edges, m.edges)
	return &GraphPayload{Nodes: nodes, Edges: edges}
}

// Clear discards all nodes and edges without resetting id assignment.
func (m *MindMap) Clear() {
	m.nodes = nil
	m.edges = nil
}

func truncateLabel(label string) string {
	runes := []rune(label)
	if len(runes) <= maxLabelRunes {
		return label
	}
	return string(runes[:maxLabelRunes]) + "..."
}
