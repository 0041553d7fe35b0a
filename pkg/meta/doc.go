// Package meta defines the read-only metadata tree the renderer interprets.
// A Document holds named top-level nodes; every node has a closed Kind and
// carries only the fields that kind uses. Nodes are addressed with a Path of
// segments (`<root>/items/<index>/...`) that may embed `.` (self) and `..`
// (parent) tokens. Documents are decoded once from JSON or YAML and never
// mutated afterwards.
package meta
