// Package pileup is the data-fetch layer behind the widgets: it decodes
// pileup files into [matrixops.Matrix] values, keeps the matrix each widget
// displays, and watches the data directory for changes.
//
// Two file layouts are understood. The pandas layout produced by
// DataFrame.to_json has parallel "variable" (row), "group" (column) and
// "value" maps keyed by record index:
//
//	{"variable":{"0":0,"1":0,"2":1},"group":{"0":0,"1":1,"2":0},"value":{"0":1.5,"1":null,"2":0.2}}
//
// The dense layout stores the flattened matrix directly:
//
//	{"data":[1.5,null,0.2,null],"shape":[2,2]}
//
// In both, null marks a missing entry.
package pileup
