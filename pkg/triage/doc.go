// Package triage houses the decision logic of the pipeline: the priority
// scorer, the SLA deadline calculation, and the heuristic text classifiers
// for questions, action items, and previews. Everything here is a pure
// function of its inputs plus an immutable ScoringConfig.
package triage
