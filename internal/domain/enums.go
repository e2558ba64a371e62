package domain

// Convention identifies which on-disk annotation layout a file follows.
type Convention string

const (
	ConventionJSON                Convention = "JSON"
	ConventionGenericText         Convention = "GENERIC_TEXT"
	ConventionBNatureTestList     Convention = "BNATURE_TEST_LIST"
	ConventionBNLITTestAnnotation Convention = "BNLIT_TEST_ANNOTATION"
	ConventionIrrelevant          Convention = "IRRELEVANT"
)

func (c Convention) String() string { return string(c) }

func (c Convention) IsValid() bool {
	switch c {
	case ConventionJSON, ConventionGenericText, ConventionBNatureTestList,
		ConventionBNLITTestAnnotation, ConventionIrrelevant:
		return true
	}
	return false
}
