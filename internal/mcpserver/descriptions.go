package mcpserver

// Tool descriptions with interpretation guidance for LLMs.
// Each description explains what the tool does, when to use it,
// how to interpret results, and key thresholds.

func describeCode() string {
	return `Runs the selected Python analyzers and combines their findings into one report with a prioritized summary.

USE WHEN:
- Getting a first overview of a Python codebase's quality
- Deciding what to refactor before a review
- Checking a change for new cycles, complex functions or naming slips

INTERPRETING RESULTS:
- Only analyzers with findings contribute a section
- "## Summary" ends the report: either a clean bill of health or a numbered recommendation list
- Recommendations follow analyzer order: complexity, architecture, naming, duplication
- focus narrows the run to one analyzer

METRICS RETURNED:
- Analyzed file count
- Spliced complexity, architecture, naming and duplication sections
- Numbered recommendations`
}

func describeComplexity() string {
	return `Scores every Python function by cyclomatic complexity, length, nesting depth and parameter count.

USE WHEN:
- Identifying functions that are hard to test or maintain
- Finding refactoring candidates before code reviews
- Prioritizing technical debt remediation

INTERPRETING RESULTS:
- Score = cyclomatic + (lines-20)/10 + (depth-3)*2 + (params-4)*2, each term floored at zero
- High (score >= 10): refactor as a priority
- Medium (score 5-9): worth simplifying
- Low (score < 5): listed only when the threshold is below 5
- Targets: cyclomatic <= 10, lines <= 20, nesting <= 3, parameters <= 4

METRICS RETURNED:
- Per-function: name, file, line, score and the targets it exceeds
- Recommendations derived from which targets were exceeded`
}

func describeArchitecture() string {
	return `Builds the module import graph of a Python codebase and reports circular imports and clean-architecture layer violations.

USE WHEN:
- Untangling circular imports
- Checking that domain code does not depend on infrastructure
- Understanding which modules depend on which

INTERPRETING RESULTS:
- Modules are keyed by file name without extension; same-named files merge
- Each cycle is listed once per distinct set of modules
- Layers by directory: domain/core (0), application/services (1), interface/adapters (2), infrastructure (3)
- A violation is an import from an inner layer to an outer one

METRICS RETURNED:
- Circular dependencies as "a → b → a"
- Layer violations with both layers named
- Dependency graph adjacency
- Structured formats add strongly connected components and PageRank centrality`
}

func describeNaming() string {
	return `Checks Python function names against naming conventions.

USE WHEN:
- Reviewing code written by people new to Python conventions
- Cleaning up names before publishing an API

INTERPRETING RESULTS:
- Single-letter names (other than "_") are too short to be descriptive
- camelCase names should be snake_case; a suggestion is given
- Dunder methods are exempt

METRICS RETURNED:
- Issues grouped by kind with file, line and suggestion`
}

func describeDuplication() string {
	return `Finds Python functions whose bodies are identical across files, and same-named functions whose bodies differ.

USE WHEN:
- Consolidating copy-pasted helpers into a shared module
- Spotting ambiguous function names across modules

INTERPRETING RESULTS:
- Bodies are compared by structure, ignoring docstrings, comments and formatting
- Renamed variables make bodies differ
- Repeats within a single file are not reported
- A name already covered by a duplicate group is not repeated as a same-name group

METRICS RETURNED:
- Duplicate groups with a short hash and every location
- Same-name groups with location and length of each definition`
}
