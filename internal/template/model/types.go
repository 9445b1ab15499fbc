package model

// MainOutputKey is the writer key used for output outside any @output block.
const MainOutputKey = "_main_"

// Kind identifies the variant of a directive node.
type Kind int

const (
	// KindBody is the root of the directive tree.
	KindBody Kind = iota
	// KindStaticText is literal output text.
	KindStaticText
	// KindDynamicText is a literal line of host code inside a code block.
	KindDynamicText
	// KindEvaluation is an inline @( expr ) whose value is written out.
	KindEvaluation
	// KindMultiLineEvaluation is an @= expression re-indented line by line.
	KindMultiLineEvaluation
	// KindExecution is an @! statement inserted verbatim.
	KindExecution
	// KindCode is an @code ... @end_code block.
	KindCode
	// KindText is an @text ... @end_text block nested in a code block.
	KindText
	// KindBetween is an inline @{ ... @} block opened at the end of a text line.
	KindBetween
	// KindOutput is an @output key ... @end_output block.
	KindOutput
	// KindSectionReference is an @+ Name(args) invocation.
	KindSectionReference
	// KindSectionDefinition is an @section Name(params) ... @end_section block.
	KindSectionDefinition
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindBody:
		return "body"
	case KindStaticText:
		return "static text"
	case KindDynamicText:
		return "dynamic text"
	case KindEvaluation:
		return "evaluation"
	case KindMultiLineEvaluation:
		return "multiline evaluation"
	case KindExecution:
		return "execution"
	case KindCode:
		return "code"
	case KindText:
		return "text"
	case KindBetween:
		return "between"
	case KindOutput:
		return "output"
	case KindSectionReference:
		return "section reference"
	case KindSectionDefinition:
		return "section definition"
	default:
		return "unknown"
	}
}

// IsContainer reports whether nodes of this kind own children.
func (k Kind) IsContainer() bool {
	switch k {
	case KindBody, KindCode, KindText, KindBetween, KindOutput, KindSectionDefinition:
		return true
	default:
		return false
	}
}

// IsIndentBoundary reports whether indentation reconstruction stops at this kind.
func (k Kind) IsIndentBoundary() bool {
	return k == KindBody || k == KindOutput || k == KindSectionDefinition
}

// ContributesIndent reports whether a node of this kind adds its captured
// indentation to the text of its descendants.
func (k Kind) ContributesIndent() bool {
	return k == KindCode
}

// SectionParam is one typed parameter of a section definition.
type SectionParam struct {
	// Name is the parameter identifier.
	Name string
	// Type is the host language type text, passed through verbatim.
	Type string
}

// Parameter is a template parameter declared with @param.
type Parameter struct {
	// Name is the parameter identifier.
	Name string
	// Type is the host language type text.
	Type string
	// Line is the 1-indexed source line of the declaration (0 if unknown).
	Line int
}

// NodeID addresses a node inside a Template arena.
type NodeID int

// NoNode is the parent of the body node.
const NoNode NodeID = -1

// Node is a single directive. The payload fields in use depend on Kind:
//
//	StaticText           Text, Line, StartOfLine, NewLine
//	DynamicText          Text, Line
//	Evaluation           Text (expression), Line
//	MultiLineEvaluation  Text (expression), Indent, Line
//	Execution            Text (statement), Line
//	Code, Text           Indent
//	Output               Key, Indent, Line
//	SectionReference     Name, Args, Indent, Line
//	SectionDefinition    Name, Params, Line
type Node struct {
	Kind        Kind
	Line        int
	Text        string
	Indent      string
	Key         string
	Name        string
	Args        string
	Params      []SectionParam
	StartOfLine bool
	NewLine     bool

	parent   NodeID
	children []NodeID
}

// Parent returns the id of the owning node, or NoNode for the body.
func (n *Node) Parent() NodeID {
	return n.parent
}
