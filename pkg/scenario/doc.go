// Package scenario builds and runs scenario executions.
//
// A declaration (Suite.Define) names a scenario, its variation axes and an
// ordered list of step definitions. Building expands the axes into option
// combinations (package variant), resolves step definitions into a tree of
// execution nodes for each combination, and registers the surviving
// executions with the World. Running walks each tree in order and derives
// group status from the children.
//
// Build phase:
//   - Static conditions decide inclusion. Steps whose condition does not
//     match the combination metadata are never built.
//   - Shared step names are resolved through the Registry. A missing name
//     drops the combination and is reported as a build error.
//   - Teardown and cleanup steps are moved behind their siblings, keeping
//     declared relative order.
//
// Run phase:
//   - Dynamic conditions decide applicability. A node whose condition does
//     not match is marked ignored together with its whole subtree.
//   - After a setup or action step fails, the remaining non-teardown
//     siblings are skipped. Teardown siblings still run.
//   - Step errors and panics are captured on the step and never escape the
//     execution.
//
// Everything runs on the caller's goroutine, one execution at a time.
package scenario
