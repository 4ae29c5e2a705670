// Package validation checks dataset files, output directories and table
// schemas before the indicator operations run on them.
package validation
