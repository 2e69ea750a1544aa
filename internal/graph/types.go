package graph

// NodeKind classifies a control-flow node.
type NodeKind string

const (
	NodeEntry      NodeKind = "entry"
	NodeExit       NodeKind = "exit"
	NodeFunction   NodeKind = "function"
	NodeCondition  NodeKind = "condition"
	NodeBlock      NodeKind = "block"
	NodeLoopHeader NodeKind = "loop_header"
	NodeLoopBody   NodeKind = "loop_body"
	NodeTry        NodeKind = "try"
	NodeExcept     NodeKind = "except"
	NodeReturn     NodeKind = "return"
	NodeStatement  NodeKind = "statement"
)

// EdgeKind classifies a control-flow edge.
type EdgeKind string

const (
	EdgeNormal      EdgeKind = "normal"
	EdgeTrueBranch  EdgeKind = "true_branch"
	EdgeFalseBranch EdgeKind = "false_branch"
	EdgeException   EdgeKind = "exception"
	EdgeBack        EdgeKind = "back"
)

// Node is one basic execution unit of the graph.
type Node struct {
	ID    string   `json:"id"`
	Kind  NodeKind `json:"type"`
	Label string   `json:"label"`
	// SourceIndex is the preorder position of the originating AST node,
	// or -1 for synthesized nodes such as entry and exit.
	SourceIndex int  `json:"-"`
	IsEntry     bool `json:"is_entry"`
	IsExit      bool `json:"is_exit"`
}

// Edge is a directed transfer of control between two nodes.
type Edge struct {
	Source    string
	Target    string
	Condition string
	Kind      EdgeKind
}
