package generator

// runtimeSource is appended to every generated unit. It routes output to the
// caller's writers by key and re-indents multi-line values.
const runtimeSource = `// dcgWriter routes template output to the writers passed to Generate.
type dcgWriter struct {
	writers map[string]io.Writer
	newline string
}

func newDcgWriter(writers map[string]io.Writer, newline string) *dcgWriter {
	return &dcgWriter{writers: writers, newline: newline}
}

// Print writes v to the main output.
func (w *dcgWriter) Print(v interface{}) {
	w.PrintTo("_main_", v)
}

// PrintTo writes v to the output registered under key.
func (w *dcgWriter) PrintTo(key string, v interface{}) {
	if key == "" {
		panic(fmt.Errorf("dcg: empty writer key"))
	}
	out, ok := w.writers[key]
	if !ok || out == nil {
		panic(fmt.Errorf("dcg: unknown writer key %q", key))
	}
	if _, err := fmt.Fprint(out, v); err != nil {
		panic(fmt.Errorf("dcg: write to %q: %w", key, err))
	}
}

// printLines writes every line of v prefixed with indent.
func (w *dcgWriter) printLines(indent string, key string, v interface{}) {
	text := strings.ReplaceAll(fmt.Sprint(v), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for _, line := range lines {
		w.PrintTo(key, indent+line+w.newline)
	}
}

func (w *dcgWriter) flush() error {
	for key, out := range w.writers {
		if f, ok := out.(interface{ Flush() error }); ok {
			if err := f.Flush(); err != nil {
				return fmt.Errorf("dcg: flush %q: %w", key, err)
			}
		}
	}
	return nil
}
`
