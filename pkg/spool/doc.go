// Package spool watches a drop directory for run record JSON files produced
// by external measurement harnesses and governs each one as it settles,
// producing an evidence bundle per record.
package spool
