package bundler

// Either a *Module or an *ExternalModule. Code that walks the module graph
// uses a type switch to tell them apart.
type ModuleRecord interface {
	isModuleRecord()
}

func (*Module) isModuleRecord()         {}
func (*ExternalModule) isModuleRecord() {}

// A module that the resolver declined to resolve. Nothing about it is known
// except its specifier. Imports of it are passed through to the output.
type ExternalModule struct {
	Specifier string

	// The import bindings of included code that refer to this module, in the
	// order they were registered
	importSites []*importBinding

	// Maps an imported name ("default", "*" or an identifier) to the name
	// it goes by in the output. Names are assigned by the renamer.
	canonicalNames map[string]string
	importedNames  []string

	// Set when this module is imported purely for its side effects
	isSideEffectImport bool
}

func newExternalModule(specifier string) *ExternalModule {
	return &ExternalModule{
		Specifier:      specifier,
		canonicalNames: make(map[string]string),
	}
}

func (e *ExternalModule) registerImportSite(binding *importBinding) {
	e.importSites = append(e.importSites, binding)
	for _, name := range e.importedNames {
		if name == binding.Imported {
			return
		}
	}
	e.importedNames = append(e.importedNames, binding.Imported)
}

func (e *ExternalModule) canonicalName(imported string) string {
	if name, ok := e.canonicalNames[imported]; ok {
		return name
	}
	panic("Internal error")
}
