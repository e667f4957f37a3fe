// Package tmpl implements the minimal substitution language used by homepage
// section templates: {{var}}, {{#each list}}...{{/each}} with {{this}},
// {{@index}}, {{#if @first}} and {{#if @last}}, and nestable
// {{#if cond}}...{{/if}} blocks. Templates are parsed once into an AST and
// evaluated against a flat data record; rendered output never contains
// residual directive syntax.
package tmpl

import (
	"strings"
)

// node is one element of a parsed template.
type node interface {
	isNode()
}

// literalNode is raw template text emitted verbatim.
type literalNode struct {
	text string
}

// varNode is a {{name}} reference, including {{this}} and {{@index}}.
type varNode struct {
	name string
}

// eachNode is a {{#each name}}...{{/each}} block.
type eachNode struct {
	name string
	body []node
}

// ifNode is a {{#if cond}}...{{/if}} block. cond may be a data key or the
// loop pseudo-variables @first / @last.
type ifNode struct {
	cond string
	body []node
}

func (literalNode) isNode() {}
func (varNode) isNode()     {}
func (eachNode) isNode()    {}
func (ifNode) isNode()      {}

// Template is a parsed, reusable template.
type Template struct {
	name  string
	nodes []node
}

// Name returns the name the template was parsed under.
func (t *Template) Name() string {
	return t.name
}

// Parse parses template source into an AST. Parsing never fails: malformed or
// unknown directives become empty output, matching the cleanup contract.
func Parse(name, src string) *Template {
	p := &parser{src: src}
	nodes := p.parse("")
	return &Template{name: name, nodes: nodes}
}

type parser struct {
	src string
	pos int
}

// parse consumes nodes until the closing tag named by until ("each" or "if")
// is found, or until end of input. An empty until means parse to the end.
func (p *parser) parse(until string) []node {
	var nodes []node
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			nodes = append(nodes, literalNode{text: lit.String()})
			lit.Reset()
		}
	}

	for p.pos < len(p.src) {
		open := strings.Index(p.src[p.pos:], "{{")
		if open < 0 {
			lit.WriteString(p.src[p.pos:])
			p.pos = len(p.src)
			break
		}

		lit.WriteString(p.src[p.pos : p.pos+open])
		p.pos += open

		close := strings.Index(p.src[p.pos:], "}}")
		if close < 0 {
			// Truncated trailing {{... fragment: stripped, never emitted.
			p.pos = len(p.src)
			break
		}

		tag := strings.TrimSpace(p.src[p.pos+2 : p.pos+close])
		p.pos += close + 2

		switch {
		case strings.HasPrefix(tag, "#each "):
			flush()
			name := strings.TrimSpace(strings.TrimPrefix(tag, "#each "))
			body := p.parse("each")
			nodes = append(nodes, eachNode{name: name, body: body})

		case strings.HasPrefix(tag, "#if "):
			flush()
			cond := strings.TrimSpace(strings.TrimPrefix(tag, "#if "))
			body := p.parse("if")
			nodes = append(nodes, ifNode{cond: cond, body: body})

		case tag == "/each", tag == "/if":
			flush()
			if until != "" && tag == "/"+until {
				return nodes
			}
			// Unmatched closing tag: stripped.

		case tag == "" || strings.HasPrefix(tag, "#") || strings.HasPrefix(tag, "/"):
			// Unknown directive: stripped.
			flush()

		default:
			flush()
			nodes = append(nodes, varNode{name: tag})
		}
	}

	flush()
	return nodes
}
