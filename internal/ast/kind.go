package ast

// Kind is the closed set of node kinds a behavioral AST may carry.
type Kind string

const (
	KindModule     Kind = "module"
	KindFunction   Kind = "function"
	KindClass      Kind = "class"
	KindAssignment Kind = "assignment"
	KindIf         Kind = "if"
	KindFor        Kind = "for"
	KindWhile      Kind = "while"
	KindReturn     Kind = "return"
	KindCall       Kind = "call"
	KindImport     Kind = "import"
	KindExpression Kind = "expression"
	KindConstant   Kind = "constant"
	KindName       Kind = "name"
	KindAttribute  Kind = "attribute"
	KindBinaryOp   Kind = "binary_op"
	KindCompare    Kind = "compare"
	KindSubscript  Kind = "subscript"
	KindList       Kind = "list"
	KindDict       Kind = "dict"
	KindTuple      Kind = "tuple"
	KindTry        Kind = "try"
	KindRaise      Kind = "raise"
	KindAssert     Kind = "assert"
	KindWith       Kind = "with"
	KindUnknown    Kind = "unknown"
)

var knownKinds = map[Kind]struct{}{
	KindModule: {}, KindFunction: {}, KindClass: {}, KindAssignment: {},
	KindIf: {}, KindFor: {}, KindWhile: {}, KindReturn: {}, KindCall: {},
	KindImport: {}, KindExpression: {}, KindConstant: {}, KindName: {},
	KindAttribute: {}, KindBinaryOp: {}, KindCompare: {}, KindSubscript: {},
	KindList: {}, KindDict: {}, KindTuple: {}, KindTry: {}, KindRaise: {},
	KindAssert: {}, KindWith: {}, KindUnknown: {},
}

// ParseKind maps a serialized kind onto the enumeration.
// Anything outside the enumeration becomes KindUnknown.
func ParseKind(s string) Kind {
	k := Kind(s)
	if _, ok := knownKinds[k]; ok {
		return k
	}
	return KindUnknown
}

// Known reports whether s is a member of the enumeration, "unknown" included.
func Known(s string) bool {
	k := ParseKind(s)
	return k != KindUnknown || s == string(KindUnknown)
}

func (k Kind) String() string {
	return string(k)
}

// IsControlFlow reports whether k opens a control-flow construct.
func (k Kind) IsControlFlow() bool {
	switch k {
	case KindIf, KindFor, KindWhile, KindTry, KindWith:
		return true
	}
	return false
}
