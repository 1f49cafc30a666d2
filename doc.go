// Package cqm provides a temporal cohort-membership and measure-satisfaction
// engine for recurring population-health screening measures.
//
// Given one subject and one reporting period, the engine decides whether the
// subject belongs to the measure's initial population, whether any layered
// exclusion removes them from the denominator, whether up-to-date qualifying
// evidence satisfies the numerator, and when the next action becomes due.
//
// # Quick Start
//
//	import (
//	    "github.com/gofhir/cqm"
//	    "github.com/gofhir/cqm/engine"
//	    "github.com/gofhir/cqm/measure"
//	    "github.com/gofhir/cqm/timeframe"
//	    "github.com/gofhir/cqm/valueset"
//	)
//
//	eval, err := engine.New(measure.BreastCancerScreening(), gw, resolver, valueset.Builtin())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tf, _ := timeframe.New(start, end)
//	result, err := eval.EvaluateSubject(ctx, "patient-1", tf)
//	if result.Status == cqm.StatusDue {
//	    fmt.Println(result.Narrative)
//	}
//
// # Design
//
// Evaluation is a pure, synchronous, read-only computation. The only I/O is
// through the gateway interfaces in package gateway and the override store in
// package override; both are consumed as read-only collaborators and every
// call takes a context.Context for caller-side cancellation. Given the same
// subject snapshot, timeframe, and record set, the engine produces
// bit-identical results, so batch evaluation (package worker) is
// embarrassingly parallel.
//
// Measures are data, not code: package measure describes a measure as age
// bounds, a required sex, a lookback policy, age strata, and value-set
// bindings by role. The breast-cancer-screening measure shipped here is one
// such definition; further CMS-style measures reuse the same engine.
//
// # Error Handling
//
// Exclusion and population checks fail closed: an error during a gateway
// sub-query aborts the evaluation for that subject rather than silently
// resolving to "not excluded". Transient gateway failures
// (gateway.UnavailableError) pass through unchanged; the engine never
// retries, preserving determinism. Malformed cadence overrides are the one
// deliberate local recovery: they are treated as absent, never raised.
package cqm
