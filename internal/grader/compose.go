package grader

import (
	"regexp"
	"strings"
)

// composeStyle selects the language-specific program layout.
type composeStyle int

const (
	// styleScript appends the harness after the student's code; the
	// interpreter runs top to bottom (python, javascript).
	styleScript composeStyle = iota
	// styleWrapped wraps bare functions in a class before appending the
	// harness (java).
	styleWrapped
	// styleUnit concatenates source and harness into one compilation unit
	// and falls back to a prototype declaration when the student's code
	// does not define the expected entry point (c, cpp).
	styleUnit
)

// entryPoint is the function name a styleUnit harness calls into.
const entryPoint = "solve"

// solutionSlot lets a harness template position the student's code
// explicitly instead of relying on the default layout.
const solutionSlot = "{{solution}}"

type languageTarget struct {
	id    int
	style composeStyle
}

// languageTargets maps the question's stored language identifier to a
// Judge0 language id and a composition style.
var languageTargets = map[string]languageTarget{
	"python":     {id: 71, style: styleScript},
	"javascript": {id: 63, style: styleScript},
	"java":       {id: 62, style: styleWrapped},
	"c":          {id: 50, style: styleUnit},
	"cpp":        {id: 54, style: styleUnit},
}

// accessModifierRe matches Java-style access modifiers. Early question data
// for the C track was authored against a Java harness, so student code may
// carry modifiers that are not valid C.
var accessModifierRe = regexp.MustCompile(`\b(public|private|protected)\s+`)

// languageByName resolves a stored language identifier, case-insensitively.
func languageByName(name string) (languageTarget, bool) {
	target, ok := languageTargets[strings.ToLower(strings.TrimSpace(name))]
	return target, ok
}

// normalizeSource applies the legacy compatibility shim: access-modifier
// keywords are stripped from C sources only. This is not a general
// sanitization pass.
func normalizeSource(language, source string) string {
	if strings.ToLower(strings.TrimSpace(language)) != "c" {
		return source
	}
	return accessModifierRe.ReplaceAllString(source, "")
}

// composeProgram embeds the student's code and the per-question harness into
// one runnable program. Test-case input is fed via stdin, not embedded.
func composeProgram(target languageTarget, source, harness string) string {
	if strings.Contains(harness, solutionSlot) {
		return strings.ReplaceAll(harness, solutionSlot, source)
	}

	switch target.style {
	case styleWrapped:
		if !strings.Contains(source, "class ") {
			source = "public class Solution {\n" + source + "\n}"
		}
		return source + "\n" + harness + "\n"

	case styleUnit:
		program := source + "\n" + harness + "\n"
		if !strings.Contains(source, entryPoint) {
			// Declare the entry point so the compiler reports a link
			// error instead of an implicit declaration.
			program = "int " + entryPoint + "();\n" + program
		}
		return program

	default: // styleScript
		return source + "\n" + harness + "\n"
	}
}
