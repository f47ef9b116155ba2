// Package scenario runs scripted mark operations from YAML files and
// checks the resulting order and positions.
//
// A file holds one or more YAML documents, each a scenario:
//
//	name: point joins both views
//	text: "abcdef"
//	steps:
//	  - {op: view, name: left}
//	  - {op: view, name: right}
//	  - {op: mark, name: a, view: left, offset: 1}
//	  - {op: mark, name: b, view: right, offset: 2}
//	  - {op: point, name: p}
//	  - {op: move, mark: p, to: b}
//	  - {op: expect_order, view: left, marks: [a, p]}
//	  - {op: expect_pos, mark: p, offset: 2}
//	  - {op: check}
//
// Operation steps stop the scenario on error unless expect_error is set.
// Expectation steps record a failure and continue. An expect_order
// mismatch carries a line diff of expected against actual names.
package scenario
