package graph

import "fmt"

// Shape describes the dimensions of a tensor value. A nil or empty Shape is
// a scalar. Values are stored flat in row-major order.
type Shape []int

// Size returns the number of elements a value of this shape holds.
func (s Shape) Size() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// Equal reports whether two shapes have identical dimensions.
func (s Shape) Equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for i, d := range s {
		if d != o[i] {
			return false
		}
	}
	return true
}

// ScalarShape returns the shape of a scalar value.
func ScalarShape() Shape { return Shape{} }

type opKind int

const (
	opConst opKind = iota
	opVariable
	opPlaceholder
	opAdd
	opSub
	opMul
	opNeg
	opExp
	opLog
	opSquare
	opSum
	opMatMul
	opTranspose
	opCumSum
)

func (k opKind) String() string {
	switch k {
	case opConst:
		return "const"
	case opVariable:
		return "variable"
	case opPlaceholder:
		return "placeholder"
	case opAdd:
		return "add"
	case opSub:
		return "sub"
	case opMul:
		return "mul"
	case opNeg:
		return "neg"
	case opExp:
		return "exp"
	case opLog:
		return "log"
	case opSquare:
		return "square"
	case opSum:
		return "sum"
	case opMatMul:
		return "matmul"
	case opTranspose:
		return "transpose"
	case opCumSum:
		return "cumsum"
	default:
		return "unknown"
	}
}

// Node is a single operation in a computation graph. Nodes are created
// through Graph constructors and the package-level op builders and are
// immutable after creation, except for variable values which the optimizer
// updates in place between evaluations.
type Node struct {
	id     int
	g      *Graph
	op     opKind
	name   string
	shape  Shape
	inputs []*Node
	value  []float64 // constants: fixed; variables: current value
}

// Name returns the node's name. Op nodes have a generated name.
func (n *Node) Name() string { return n.name }

// Shape returns the node's output shape.
func (n *Node) Shape() Shape { return n.shape }

// Value returns the current value of a constant or variable node, nil for
// any other kind. The returned slice is the live backing store.
func (n *Node) Value() []float64 { return n.value }

// Graph owns an append-only set of nodes. Node ids are assigned in creation
// order, so every node's inputs always have smaller ids; evaluation and
// gradient passes rely on this ordering. A Graph is not safe for concurrent
// mutation.
type Graph struct {
	nodes        []*Node
	variables    []*Node
	placeholders []*Node
}

// New creates an empty computation graph.
func New() *Graph { return &Graph{} }

func (g *Graph) add(op opKind, name string, shape Shape, inputs []*Node, value []float64) *Node {
	n := &Node{
		id:     len(g.nodes),
		g:      g,
		op:     op,
		name:   name,
		shape:  shape,
		inputs: inputs,
		value:  value,
	}
	g.nodes = append(g.nodes, n)
	return n
}

// Const adds a fixed-value node. The value is copied; its length must match
// the shape's size.
func (g *Graph) Const(name string, shape Shape, value []float64) *Node {
	if len(value) != shape.Size() {
		panic(fmt.Sprintf("graph: const %q value length %d does not match shape size %d", name, len(value), shape.Size()))
	}
	if name == "" {
		name = fmt.Sprintf("const_%d", len(g.nodes))
	}
	v := make([]float64, len(value))
	copy(v, value)
	return g.add(opConst, name, shape, nil, v)
}

// Scalar adds an anonymous scalar constant.
func (g *Graph) Scalar(v float64) *Node {
	return g.Const("", ScalarShape(), []float64{v})
}

// Variable adds a trainable node initialized to init (copied). Variables are
// updated in place by an optimizer and report their current value between
// evaluations.
func (g *Graph) Variable(name string, shape Shape, init []float64) *Node {
	if len(init) != shape.Size() {
		panic(fmt.Sprintf("graph: variable %q init length %d does not match shape size %d", name, len(init), shape.Size()))
	}
	v := make([]float64, len(init))
	copy(v, init)
	n := g.add(opVariable, name, shape, nil, v)
	g.variables = append(g.variables, n)
	return n
}

// Placeholder adds a node whose value must be supplied through a Feed at
// evaluation time. Placeholders carry the base randomness of stochastic
// samples.
func (g *Graph) Placeholder(name string, shape Shape) *Node {
	n := g.add(opPlaceholder, name, shape, nil, nil)
	g.placeholders = append(g.placeholders, n)
	return n
}

// Variables returns the trainable nodes of the graph in creation order.
func (g *Graph) Variables() []*Node {
	out := make([]*Node, len(g.variables))
	copy(out, g.variables)
	return out
}

// broadcastShape resolves the output shape of an elementwise binary op.
// Operands must have equal shapes, or one of them must be a single element
// (broadcast across the other).
func broadcastShape(op opKind, a, b *Node) Shape {
	switch {
	case a.shape.Equal(b.shape):
		return a.shape
	case a.shape.Size() == 1:
		return b.shape
	case b.shape.Size() == 1:
		return a.shape
	default:
		panic(fmt.Sprintf("graph: %s: incompatible shapes %v and %v", op, a.shape, b.shape))
	}
}

func binary(op opKind, a, b *Node) *Node {
	shape := broadcastShape(op, a, b)
	return a.g.add(op, fmt.Sprintf("%s_%d", op, len(a.g.nodes)), shape, []*Node{a, b}, nil)
}

func unary(op opKind, a *Node, shape Shape) *Node {
	return a.g.add(op, fmt.Sprintf("%s_%d", op, len(a.g.nodes)), shape, []*Node{a}, nil)
}

// Add returns the elementwise sum a + b, broadcasting a single-element
// operand across the other.
func Add(a, b *Node) *Node { return binary(opAdd, a, b) }

// Sub returns the elementwise difference a - b with broadcasting.
func Sub(a, b *Node) *Node { return binary(opSub, a, b) }

// Mul returns the elementwise product a * b with broadcasting.
func Mul(a, b *Node) *Node { return binary(opMul, a, b) }

// Neg returns -a.
func Neg(a *Node) *Node { return unary(opNeg, a, a.shape) }

// Exp returns the elementwise exponential of a.
func Exp(a *Node) *Node { return unary(opExp, a, a.shape) }

// Log returns the elementwise natural logarithm of a.
func Log(a *Node) *Node { return unary(opLog, a, a.shape) }

// Square returns the elementwise square of a.
func Square(a *Node) *Node { return unary(opSquare, a, a.shape) }

// Sum reduces a to a scalar by summing all elements.
func Sum(a *Node) *Node { return unary(opSum, a, ScalarShape()) }

// AddN sums one or more nodes of identical shape.
func AddN(nodes ...*Node) *Node {
	if len(nodes) == 0 {
		panic("graph: AddN requires at least one node")
	}
	out := nodes[0]
	for _, n := range nodes[1:] {
		if !n.shape.Equal(out.shape) {
			panic(fmt.Sprintf("graph: AddN: incompatible shapes %v and %v", out.shape, n.shape))
		}
		out = Add(out, n)
	}
	return out
}

// MatMul returns the matrix product of a (m,k) and b (k,n).
func MatMul(a, b *Node) *Node {
	if len(a.shape) != 2 || len(b.shape) != 2 {
		panic(fmt.Sprintf("graph: matmul requires matrices, got %v and %v", a.shape, b.shape))
	}
	if a.shape[1] != b.shape[0] {
		panic(fmt.Sprintf("graph: matmul: inner dimensions disagree, %v vs %v", a.shape, b.shape))
	}
	shape := Shape{a.shape[0], b.shape[1]}
	return a.g.add(opMatMul, fmt.Sprintf("matmul_%d", len(a.g.nodes)), shape, []*Node{a, b}, nil)
}

// Transpose returns the transpose of matrix a.
func Transpose(a *Node) *Node {
	if len(a.shape) != 2 {
		panic(fmt.Sprintf("graph: transpose requires a matrix, got %v", a.shape))
	}
	return unary(opTranspose, a, Shape{a.shape[1], a.shape[0]})
}

// CumSum returns the cumulative sum of a along its first axis: a running
// total for vectors, and per-column running totals down the rows for
// matrices.
func CumSum(a *Node) *Node {
	if len(a.shape) != 1 && len(a.shape) != 2 {
		panic(fmt.Sprintf("graph: cumsum requires a vector or matrix, got %v", a.shape))
	}
	return unary(opCumSum, a, a.shape)
}
