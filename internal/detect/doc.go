// Package detect infers agent lifecycle states from the free-form text the
// crew process prints.
//
// The crew's output is only loosely structured: tree blocks with
// "Task:" / "Assigned to:" / "Status:" lines, "Agent: X, Status: Y"
// directives, and prose. The same checkmark can arrive as a proper glyph or
// as a mis-decoded byte sequence. This package isolates all of that behind
// two seams:
//
//   - [Normalize] maps raw marker variants to a [Label]
//     ([LabelNone], [LabelWorking], [LabelCompleted]).
//   - [Classifier] runs an ordered table of [Strategy] values over a line and
//     returns one [Match] per agent it could attribute.
//
// # Strategy Priority
//
// Strategies are evaluated from most to least specific. For a given agent,
// the first strategy that matches a line wins; a single line may still yield
// matches for several agents.
//
//  1. exact-name: a canonical agent name with an explicit status marker
//  2. task-block: "Task:" + "Assigned to: <name>" + status marker
//  3. agent-declaration: "Agent: <name>" + status marker
//  4. task-assignment: "Assigned to:"/"Agent:" + "Task:" with no marker (working)
//
// Two further nets run over the whole snapshot text rather than single lines
// (see [Classifier.ClassifySnapshot]): a proximity search pairing agent names
// with nearby completion markers, and a researcher-specific completion phrase.
//
// # Name Resolution
//
// Extracted names are resolved to canonical agent names by [Resolve]:
// direct substring, case-insensitive equality, an alias table, significant
// word overlap, and finally role keywords. Text that resolves to nothing is
// dropped.
package detect
