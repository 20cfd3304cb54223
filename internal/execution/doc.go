// Package execution maps records end to end: run the generated program,
// serialize the output and validate it. A Runner handles one record at a
// time; a Pool fans a record stream out to several workers.
package execution
