// Package harness runs production-floor scenarios against the engine.
//
// A scenario is a YAML file naming a work order, the quantity plans to
// import, and a flow of operator steps (start, set_qty, split, confirm,
// delete and so on). Steps refer to records by alias; aliases are bound
// when a step creates a record. Each step may carry an expect clause, and
// assertions check progress and record state once the flow has run.
//
// Every scenario runs in a fresh in-memory store with sequential record
// ids, sequential job ids and a frozen clock, so the transcript of a run is
// byte-for-byte reproducible and can be compared against a golden file.
//
// Plan aliases: importing binds each plan id to its source record and
// "<plan id>/cut" to the cut source paired with a print plan. A split bound
// to alias X also binds "X/cut" to the cut stub it opened.
package harness
