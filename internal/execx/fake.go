package execx

// FakeRunner is a scripted Runner for tests. Responses are keyed by the full
// command line; anything not scripted returns Default. Every invocation is
// recorded in Calls in order, so tests can assert on exact command sequences.
type FakeRunner struct {
	Responses map[string]Result
	Errors    map[string]error
	Default   Result
	Calls     []string
}

// NewFakeRunner returns a FakeRunner whose unscripted commands all succeed
// with empty output.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Responses: make(map[string]Result),
		Errors:    make(map[string]error),
	}
}

// Script registers a canned result for an exact command line.
func (f *FakeRunner) Script(line string, res Result) {
	f.Responses[line] = res
}

// ScriptError registers a start failure (binary missing) for a command line.
func (f *FakeRunner) ScriptError(line string, err error) {
	f.Errors[line] = err
}

// Run records the call and returns the scripted result, or Default.
func (f *FakeRunner) Run(name string, args ...string) (Result, error) {
	line := CommandLine(name, args)
	f.Calls = append(f.Calls, line)
	if err, ok := f.Errors[line]; ok {
		return Result{ExitCode: -1}, err
	}
	if res, ok := f.Responses[line]; ok {
		return res, nil
	}
	return f.Default, nil
}

// CallCount returns how many times the given command line was run.
func (f *FakeRunner) CallCount(line string) int {
	n := 0
	for _, c := range f.Calls {
		if c == line {
			n++
		}
	}
	return n
}
