package config

const DefaultFormat = "es6"

// Options for rendering a bundle once the module graph has been built
type Options struct {
	// Selects the finalizer that turns the generated statements into the
	// final output. Only "es6" is built in.
	Format string

	// The path the output will be written to. Source paths in the source map
	// are made relative to its directory.
	Dest string

	// Embed the original sources in the source map's "sourcesContent"
	IncludeContent bool
}

func (options Options) WithDefaults() Options {
	if options.Format == "" {
		options.Format = DefaultFormat
	}
	return options
}
