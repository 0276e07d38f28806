/*
Package rules holds the compiled description of how one entity type is built from input.

A RuleSet is produced once (usually by package dsl or the YAML adapter) and is read-only
afterwards, so a single RuleSet can serve any number of concurrent builds. Rule inheritance is
a value copy: Clone returns a RuleSet that shares no mutable state with its parent.
*/
package rules
