package graph

import (
	"strconv"

	"behave/internal/ast"
)

// Builder turns a canonical AST into a control-flow graph. All per-build
// state lives in a buildContext, so one Builder may be shared across
// goroutines.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// Build constructs the graph for root. Every rule returns the exit points of
// its subtree. A return ends its statement list; its node becomes an exit of
// the enclosing function, or of the whole graph outside any function. All
// remaining exit points are joined into a single synthesized exit node.
func (b *Builder) Build(root *ast.Node) *ControlFlowGraph {
	ctx := newBuildContext(root)

	entry := ctx.addNode(NodeEntry, "Entry", nil)
	entry.IsEntry = true

	tails := ctx.process(root, []string{entry.ID})

	exit := ctx.addNode(NodeExit, "Exit", nil)
	exit.IsExit = true
	for _, id := range tails {
		ctx.addEdge(id, exit.ID, "", EdgeNormal)
	}
	for _, id := range ctx.returns[0] {
		ctx.addEdge(id, exit.ID, "", EdgeNormal)
	}

	return newControlFlowGraph(ctx.nodes, ctx.edges, entry.ID, []string{exit.ID})
}

type buildContext struct {
	counter int
	nodes   []*Node
	edges   []Edge
	source  map[*ast.Node]int
	// return nodes per open function scope; index 0 is the top level
	returns [][]string
}

func newBuildContext(root *ast.Node) *buildContext {
	return &buildContext{
		source:  ast.Index(root),
		returns: [][]string{nil},
	}
}

func (c *buildContext) addNode(kind NodeKind, label string, src *ast.Node) *Node {
	c.counter++
	idx := -1
	if i, ok := c.source[src]; ok && src != nil {
		idx = i
	}
	n := &Node{
		ID:          "n" + strconv.Itoa(c.counter),
		Kind:        kind,
		Label:       label,
		SourceIndex: idx,
	}
	c.nodes = append(c.nodes, n)
	return n
}

func (c *buildContext) addEdge(source, target, condition string, kind EdgeKind) {
	c.edges = append(c.edges, Edge{Source: source, Target: target, Condition: condition, Kind: kind})
}

// link creates n and a normal edge into it from every predecessor.
func (c *buildContext) link(preds []string, kind NodeKind, label string, src *ast.Node) *Node {
	n := c.addNode(kind, label, src)
	for _, p := range preds {
		c.addEdge(p, n.ID, "", EdgeNormal)
	}
	return n
}

// process dispatches on the node kind. A subtree with no predecessors is
// unreachable (it follows a return) and produces nothing.
func (c *buildContext) process(n *ast.Node, preds []string) []string {
	if n == nil {
		return preds
	}
	if len(preds) == 0 {
		return nil
	}

	switch n.Kind {
	case ast.KindModule:
		return c.sequence(n.Children, preds)
	case ast.KindFunction:
		return c.processFunction(n, preds)
	case ast.KindIf:
		return c.processIf(n, preds)
	case ast.KindFor:
		return c.processLoop(n, preds, "for", "iterate", "done")
	case ast.KindWhile:
		return c.processLoop(n, preds, "while", "True", "False")
	case ast.KindTry:
		return c.processTry(n, preds)
	case ast.KindReturn:
		return c.processReturn(n, preds)
	default:
		return c.processStatement(n, preds)
	}
}

// sequence threads exit points through a statement list; each child's exits
// fan in to the next child.
func (c *buildContext) sequence(children []*ast.Node, preds []string) []string {
	exits := preds
	for _, child := range children {
		exits = c.process(child, exits)
	}
	return exits
}

func (c *buildContext) processFunction(n *ast.Node, preds []string) []string {
	name := n.Name
	if name == "" {
		name = "anonymous"
	}
	fn := c.link(preds, NodeFunction, "def "+name, n)

	c.returns = append(c.returns, nil)
	exits := c.sequence(n.Children, []string{fn.ID})
	top := len(c.returns) - 1
	rets := c.returns[top]
	c.returns = c.returns[:top]

	out := make([]string, 0, len(exits)+len(rets))
	out = append(out, exits...)
	return append(out, rets...)
}

// processIf treats the first child as the condition expression and the rest
// as the then-branch. The else block is always synthesized; a missing else
// is modeled as fallthrough.
func (c *buildContext) processIf(n *ast.Node, preds []string) []string {
	cond := c.link(preds, NodeCondition, "if condition", n)

	then := c.addNode(NodeBlock, "then", n)
	c.addEdge(cond.ID, then.ID, "True", EdgeTrueBranch)

	var body []*ast.Node
	if len(n.Children) > 1 {
		body = n.Children[1:]
	}
	exits := c.sequence(body, []string{then.ID})

	elseBlock := c.addNode(NodeBlock, "else", n)
	c.addEdge(cond.ID, elseBlock.ID, "False", EdgeFalseBranch)

	out := make([]string, 0, len(exits)+1)
	out = append(out, exits...)
	return append(out, elseBlock.ID)
}

func (c *buildContext) processLoop(n *ast.Node, preds []string, label, enter, leave string) []string {
	header := c.link(preds, NodeLoopHeader, label, n)

	body := c.addNode(NodeLoopBody, "loop body", n)
	c.addEdge(header.ID, body.ID, enter, EdgeTrueBranch)

	for _, id := range c.sequence(n.Children, []string{body.ID}) {
		c.addEdge(id, header.ID, "", EdgeBack)
	}

	exit := c.addNode(NodeBlock, "loop exit", n)
	c.addEdge(header.ID, exit.ID, leave, EdgeFalseBranch)
	return []string{exit.ID}
}

// processTry over-approximates: any point of the body may raise, so the
// handler hangs off the try node and its exit joins the body's exits.
func (c *buildContext) processTry(n *ast.Node, preds []string) []string {
	try := c.link(preds, NodeTry, "try", n)

	exits := c.sequence(n.Children, []string{try.ID})

	except := c.addNode(NodeExcept, "except", n)
	c.addEdge(try.ID, except.ID, "exception", EdgeException)

	out := make([]string, 0, len(exits)+1)
	out = append(out, exits...)
	return append(out, except.ID)
}

func (c *buildContext) processReturn(n *ast.Node, preds []string) []string {
	ret := c.link(preds, NodeReturn, "return", n)
	top := len(c.returns) - 1
	c.returns[top] = append(c.returns[top], ret.ID)
	return []string{}
}

func (c *buildContext) processStatement(n *ast.Node, preds []string) []string {
	label := n.Name
	if label == "" {
		label = string(n.Kind)
	}
	stmt := c.link(preds, NodeStatement, label, n)
	return []string{stmt.ID}
}
