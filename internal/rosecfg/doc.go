// Package rosecfg reads and writes Rose INI-style configuration files.
//
// The format is section based. Sections are bracketed headers, settings are
// key=value lines, and both may carry an ignore marker:
//
//	# comment attached to the section below
//	[section]
//	key=value
//	!ignored=value
//	!!trigger-ignored=value
//
// Multi-line values are written with continuation lines that begin with "=":
//
//	key=first line
//	    =second line
//
// A configuration is represented as a tree of Node values. Each Node is
// either a leaf holding a string value or an interior node holding ordered
// child nodes. Every node carries a state tag (normal, ignored or
// trigger-ignored) and a list of comment lines.
//
// LoadTree layers a complete configuration: the base file, then any optional
// fragment files from the opt/ sub-directory selected by the merged option
// keys, then command-line defines. NewDiff computes a structural diff between
// two trees which can be replayed onto a node with ApplyTo.
package rosecfg
