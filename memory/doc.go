// Package memory mirrors the memory configuration of a sign.
//
// A sign stores files in a memory layout that is rewritten as a whole by
// every allocation. Table keeps the layout that was last sent so writes and
// run sequences can be checked locally, before anything reaches the wire.
//
// Allocation is split in two steps: Plan validates objects against the
// current table without changing it, and Commit publishes the planned
// layout once the ALLOCATE command has been delivered. Readers always see a
// complete layout.
package memory
