package resolver

import "impactscan/internal/engine/resolver/drivers"

type JavaScriptResolver = drivers.JavaScriptResolver
type PythonResolver = drivers.PythonResolver
type FileProber = drivers.FileProber

func NewJavaScriptResolver(root string, extensions, indexFiles []string, aliases map[string]string, fs FileProber) *JavaScriptResolver {
	return drivers.NewJavaScriptResolver(root, extensions, indexFiles, aliases, fs)
}

func NewPythonResolver(roots []string, fs FileProber) *PythonResolver {
	return drivers.NewPythonResolver(roots, fs)
}

func NormalizeSpecifier(specifier string) string {
	return drivers.NormalizeSpecifier(specifier)
}
