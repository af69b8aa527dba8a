package index

// Boundary validation for collaborator responses. Backends and bridges run
// their raw results through these before handing them to the engine, so a
// malformed response degrades to fewer results instead of propagating
// opaque data into the graph.

// CleanSearchHits drops structurally invalid hits and normalizes the rest.
func CleanSearchHits(hits []SearchHit) []SearchHit {
	out := hits[:0]
	for _, h := range hits {
		if h.Name == "" || h.File == "" {
			continue
		}
		if h.Line < 0 {
			h.Line = 0
		}
		if h.Type == "" {
			h.Type = "file"
		}
		out = append(out, h)
	}
	return out
}

// CleanUsages drops invalid usages and clamps confidence into [0,1].
func CleanUsages(usages []Usage) []Usage {
	out := usages[:0]
	for _, u := range usages {
		if u.File == "" {
			continue
		}
		if u.Line < 0 {
			u.Line = 0
		}
		if u.Confidence < 0 {
			u.Confidence = 0
		}
		if u.Confidence > 1 {
			u.Confidence = 1
		}
		out = append(out, u)
	}
	return out
}

// CleanImportTrace drops files without a path and imports without a module.
func CleanImportTrace(trace *ImportTrace) *ImportTrace {
	if trace == nil {
		return &ImportTrace{}
	}
	files := trace.Files[:0]
	for _, f := range trace.Files {
		if f.File == "" {
			continue
		}
		imports := f.Imports[:0]
		for _, imp := range f.Imports {
			if imp.Module == "" {
				continue
			}
			imports = append(imports, imp)
		}
		f.Imports = imports
		files = append(files, f)
	}
	trace.Files = files
	return trace
}
